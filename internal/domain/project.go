package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// LinearScale maps [DomainMin, DomainMax] linearly onto [RangeMin, RangeMax].
// RangeMin may exceed RangeMax to flip an axis.
type LinearScale struct {
	DomainMin float64
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// Map projects v. A zero-width domain maps everything to RangeMin.
func (s LinearScale) Map(v float64) float64 {
	width := s.DomainMax - s.DomainMin
	if width == 0 {
		return s.RangeMin
	}
	return s.RangeMin + (v-s.DomainMin)/width*(s.RangeMax-s.RangeMin)
}

// Polyline connects points with straight segments and leaves the path open.
func Polyline(points []Point) Path {
	var p Path
	for i, pt := range points {
		if i == 0 {
			p.MoveTo(pt)
			continue
		}
		p.LineTo(pt)
	}
	return p
}

// --- stacked area ---

// StackPoint is one year of two additively layered series.
type StackPoint struct {
	Year   int     `json:"year"`
	Base   float64 `json:"base" validate:"gte=0"`
	Second float64 `json:"second" validate:"gte=0"`
}

// ChartFrame is the plotting area of an area chart.
type ChartFrame struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Years  YearRange `json:"years"`
}

// DefaultChartFrame matches a 400x140 chart with 60/20 horizontal and 10/40
// vertical padding.
var DefaultChartFrame = ChartFrame{Width: 320, Height: 90, Years: DefaultYearRange}

// StackedArea is the geometry of a two-band area chart.
type StackedArea struct {
	Base     Path        `json:"base"`
	Stacked  Path        `json:"stacked"`
	MaxValue float64     `json:"max_value"`
	XScale   LinearScale `json:"-"`
	YScale   LinearScale `json:"-"`
}

// ProjectStackedArea builds two closed polygons over year-ordered points. The
// base band runs along Base and drops to the baseline at both ends; the
// stacked band runs along Base+Second and returns along Base in reverse. The
// Y domain is [0, max(Base+Second)] over the given points.
func ProjectStackedArea(points []StackPoint, frame ChartFrame) StackedArea {
	years := frame.Years.Normalized()
	area := StackedArea{
		XScale: LinearScale{DomainMin: float64(years.Min), DomainMax: float64(years.Max), RangeMin: 0, RangeMax: frame.Width},
	}
	for _, p := range points {
		area.MaxValue = math.Max(area.MaxValue, p.Base+p.Second)
	}
	area.YScale = LinearScale{DomainMin: 0, DomainMax: area.MaxValue, RangeMin: frame.Height, RangeMax: 0}

	if len(points) == 0 {
		return area
	}

	x := func(p StackPoint) float64 { return area.XScale.Map(float64(p.Year)) }
	first, last := points[0], points[len(points)-1]

	for i, p := range points {
		pt := Point{X: x(p), Y: area.YScale.Map(p.Base)}
		if i == 0 {
			area.Base.MoveTo(pt)
		} else {
			area.Base.LineTo(pt)
		}
	}
	area.Base.LineTo(Point{X: x(last), Y: frame.Height})
	area.Base.LineTo(Point{X: x(first), Y: frame.Height})
	area.Base.Close()

	for i, p := range points {
		pt := Point{X: x(p), Y: area.YScale.Map(p.Base + p.Second)}
		if i == 0 {
			area.Stacked.MoveTo(pt)
		} else {
			area.Stacked.LineTo(pt)
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		area.Stacked.LineTo(Point{X: x(points[i]), Y: area.YScale.Map(points[i].Base)})
	}
	area.Stacked.Close()

	return area
}

// --- radar glyph ---

// RadarStyle selects how radar vertices are joined.
type RadarStyle string

const (
	RadarLinear    RadarStyle = "linear"    // straight-edged polygon
	RadarQuadratic RadarStyle = "quadratic" // concave quadratic edges
	RadarCardinal  RadarStyle = "cardinal"  // cardinal spline through the vertices
)

// ParseRadarStyle defaults to RadarLinear for an empty string.
func ParseRadarStyle(s string) (RadarStyle, error) {
	switch RadarStyle(s) {
	case "", RadarLinear:
		return RadarLinear, nil
	case RadarQuadratic, RadarCardinal:
		return RadarStyle(s), nil
	default:
		return "", fmt.Errorf("%w: radar style %q", ErrInvalidPathRequest, s)
	}
}

// RadarFrame positions a radar glyph.
type RadarFrame struct {
	Center    Point   `json:"center"`
	MaxRadius float64 `json:"max_radius"`
	// Concavity pulls quadratic control points from the edge midpoint
	// towards the center: 0 draws straight edges, 1 puts them on the center.
	Concavity float64 `json:"concavity"`
	// Tension tightens the cardinal spline: 0 is Catmull-Rom, 1 is straight.
	Tension float64 `json:"tension"`
}

// DefaultRadarFrame fits a 60x60 marker.
var DefaultRadarFrame = RadarFrame{Center: Point{X: 30, Y: 30}, MaxRadius: 25, Concavity: 0.35, Tension: 0}

// RadarAngle is the angle of axis i of n, starting straight up and going clockwise.
func RadarAngle(i, n int) float64 {
	return -math.Pi/2 + float64(i)*2*math.Pi/float64(n)
}

// RadarPoints places one vertex per value at value*MaxRadius along its axis.
func RadarPoints(values []float64, frame RadarFrame) []Point {
	n := len(values)
	points := make([]Point, n)
	for i, v := range values {
		a := RadarAngle(i, n)
		r := v * frame.MaxRadius
		points[i] = Point{
			X: frame.Center.X + math.Cos(a)*r,
			Y: frame.Center.Y + math.Sin(a)*r,
		}
	}
	return points
}

// ProjectRadar builds the closed radar path for normalized values.
func ProjectRadar(values []float64, frame RadarFrame, style RadarStyle) Path {
	pts := RadarPoints(values, frame)
	var p Path
	if len(pts) == 0 {
		return p
	}
	p.MoveTo(pts[0])

	n := len(pts)
	switch style {
	case RadarQuadratic:
		for i := 1; i <= n; i++ {
			prev, curr := pts[i-1], pts[i%n]
			mid := midpoint(prev, curr)
			ctrl := lerp(mid, frame.Center, frame.Concavity)
			p.QuadTo(ctrl, curr)
		}
	case RadarCardinal:
		k := (1 - frame.Tension) / 6
		for i := 0; i < n; i++ {
			p0, p1 := pts[(i-1+n)%n], pts[i]
			p2, p3 := pts[(i+1)%n], pts[(i+2)%n]
			c1 := Point{X: p1.X + (p2.X-p0.X)*k, Y: p1.Y + (p2.Y-p0.Y)*k}
			c2 := Point{X: p2.X - (p3.X-p1.X)*k, Y: p2.Y - (p3.Y-p1.Y)*k}
			p.CubicTo(c1, c2, p2)
		}
	default:
		for _, pt := range pts[1:] {
			p.LineTo(pt)
		}
	}
	p.Close()
	return p
}

// --- mirrored band (timeline overlay layer) ---

// BandFrame sizes a vertical, mirrored timeline layer.
type BandFrame struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Padding  float64 `json:"padding"`
	MaxValue float64 `json:"max_value"` // value that spans the full inner width
}

// DefaultBandFrame is the resting size of a timeline overlay.
var DefaultBandFrame = BandFrame{Width: 60, Height: 150, Padding: 10, MaxValue: 100}

// ProjectMirroredBand lays values top to bottom, one row each, and draws a
// shape symmetric around the vertical center line: down the left edge, back
// up the right edge, joined by quadratic curves and closed.
func ProjectMirroredBand(values []float64, frame BandFrame) Path {
	var p Path
	n := len(values)
	if n == 0 {
		return p
	}

	rowHeight := (frame.Height - 2*frame.Padding) / float64(n)
	halfWidth := (frame.Width - 2*frame.Padding) / 2
	centerX := frame.Width / 2

	offset := func(v float64) float64 {
		return SafeDivide(v, frame.MaxValue, ZeroFallback) * halfWidth
	}

	points := make([]Point, 0, 2*n)
	for i, v := range values {
		points = append(points, Point{X: centerX - offset(v), Y: frame.Padding + float64(i)*rowHeight})
	}
	for i := n - 1; i >= 0; i-- {
		points = append(points, Point{X: centerX + offset(values[i]), Y: frame.Padding + float64(i)*rowHeight})
	}

	p.MoveTo(points[0])
	for i := 1; i < len(points); i++ {
		p.QuadTo(midpoint(points[i-1], points[i]), points[i])
	}
	p.Close()
	return p
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// --- dispatch ---

// PathKind names a geometry ProjectPath can build.
type PathKind string

const (
	PathRadar    PathKind = "radar"
	PathStacked  PathKind = "stacked"
	PathBand     PathKind = "band"
	PathPolyline PathKind = "polyline"
)

// PathRequest is the input of ProjectPath. Values feed radar and band kinds,
// Stack feeds stacked, Points feeds polyline.
type PathRequest struct {
	Kind   PathKind     `json:"kind" validate:"required,oneof=radar stacked band polyline"`
	Style  RadarStyle   `json:"style,omitempty" validate:"omitempty,oneof=linear quadratic cardinal"`
	Values []float64    `json:"values,omitempty" validate:"omitempty,dive,gte=0"`
	Stack  []StackPoint `json:"stack,omitempty" validate:"omitempty,dive"`
	Points []Point      `json:"points,omitempty"`
}

// Frames bundles the fixed geometry configuration ProjectPath draws into.
type Frames struct {
	Radar RadarFrame
	Chart ChartFrame
	Band  BandFrame
}

// DefaultFrames returns the default frame of every kind.
func DefaultFrames() Frames {
	return Frames{Radar: DefaultRadarFrame, Chart: DefaultChartFrame, Band: DefaultBandFrame}
}

// ProjectPath builds the geometry named by req.Kind. For stacked requests it
// returns the upper band; its lower boundary is the base series. Stack points
// are projected in year order regardless of request order.
func ProjectPath(req PathRequest, frames Frames) (Path, error) {
	switch req.Kind {
	case PathRadar:
		if n := len(req.Values); n < 3 || n > 4 {
			return Path{}, fmt.Errorf("%w: radar needs 3 or 4 values, got %d", ErrInvalidPathRequest, n)
		}
		style, err := ParseRadarStyle(string(req.Style))
		if err != nil {
			return Path{}, err
		}
		return ProjectRadar(req.Values, frames.Radar, style), nil
	case PathStacked:
		if len(req.Stack) == 0 {
			return Path{}, fmt.Errorf("%w: stacked needs at least one point", ErrInvalidPathRequest)
		}
		stack := slices.Clone(req.Stack)
		slices.SortStableFunc(stack, func(a, b StackPoint) int { return cmp.Compare(a.Year, b.Year) })
		return ProjectStackedArea(stack, frames.Chart).Stacked, nil
	case PathBand:
		if len(req.Values) == 0 {
			return Path{}, fmt.Errorf("%w: band needs at least one value", ErrInvalidPathRequest)
		}
		return ProjectMirroredBand(req.Values, frames.Band), nil
	case PathPolyline:
		if len(req.Points) < 2 {
			return Path{}, fmt.Errorf("%w: polyline needs at least two points", ErrInvalidPathRequest)
		}
		return Polyline(req.Points), nil
	default:
		return Path{}, fmt.Errorf("%w: %q", ErrUnknownPathKind, req.Kind)
	}
}
