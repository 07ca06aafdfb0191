package domain

import "math"

// TileSize is the pixel size of one Web Mercator tile at zoom 0, as used by
// Mapbox GL vector tiles.
const TileSize = 512

// MaxMercatorLat is the latitude at which Web Mercator becomes square.
const MaxMercatorLat = 85.05112878

// MercatorWorld projects ll to world pixel coordinates at zoom.
func MercatorWorld(ll LatLng, zoom float64) Point {
	scale := TileSize * math.Pow(2, zoom)
	lat := math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, ll.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	return Point{
		X: (ll.Lng + 180) / 360 * scale,
		Y: (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale,
	}
}

// Viewport is a map camera: a center, a zoom level and a pixel size.
type Viewport struct {
	Center LatLng  `json:"center"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport frames Loudoun County's data center corridor.
var DefaultViewport = Viewport{
	Center: LatLng{Lat: 39.01, Lng: -77.43},
	Zoom:   10.5,
	Width:  1280,
	Height: 800,
}

// ToScreen returns the screen position of ll, with the viewport center at
// (Width/2, Height/2).
func (v Viewport) ToScreen(ll LatLng) Point {
	c := MercatorWorld(v.Center, v.Zoom)
	p := MercatorWorld(ll, v.Zoom)
	return Point{X: p.X - c.X + v.Width/2, Y: p.Y - c.Y + v.Height/2}
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// BoundsOf returns the box enclosing every located entity. ok is false when
// none has a location.
func BoundsOf(entities []DataCenter) (b Bounds, ok bool) {
	for _, dc := range entities {
		if dc.Location.IsZero() {
			continue
		}
		if !ok {
			b = Bounds{SouthWest: dc.Location, NorthEast: dc.Location}
			ok = true
			continue
		}
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, dc.Location.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, dc.Location.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, dc.Location.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, dc.Location.Lng)
	}
	return b, ok
}

// Center is the midpoint of the box.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}
