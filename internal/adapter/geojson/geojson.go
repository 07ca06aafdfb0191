// Package geojson converts data centers and snapshot markers into GeoJSON
// feature collections for map layers.
package geojson

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// FromDataCenters returns one point feature per entity. Entities without a
// location are skipped.
func FromDataCenters(entities []domain.DataCenter) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, dc := range entities {
		if dc.Location.IsZero() {
			continue
		}
		f := geojson.NewPointFeature([]float64{dc.Location.Lng, dc.Location.Lat})
		f.ID = dc.ID
		f.SetProperty("name", dc.Name)
		f.SetProperty("year_operational", dc.YearOperational)
		f.SetProperty("category", string(dc.Category))
		for _, m := range domain.Metrics {
			f.SetProperty(string(m), dc.Value(m))
		}
		if dc.Address != "" {
			f.SetProperty("address", dc.Address)
		}
		fc.AddFeature(f)
	}
	return fc
}

// FromMarkers returns the features drawn for one snapshot year, carrying the
// marker colour and radar path so a map layer can style them directly.
func FromMarkers(markers []domain.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		if m.Location.IsZero() {
			continue
		}
		f := geojson.NewPointFeature([]float64{m.Location.Lng, m.Location.Lat})
		f.ID = m.ID
		f.SetProperty("name", m.Name)
		f.SetProperty("year_operational", m.YearOperational)
		f.SetProperty("category", string(m.Category))
		f.SetProperty("color", m.Color)
		f.SetProperty("category_color", m.CategoryColor)
		f.SetProperty("radar", m.Radar.String())
		for _, metric := range domain.Metrics {
			f.SetProperty(string(metric), m.Values[metric])
			f.SetProperty(string(metric)+"_normalized", m.Normalized[metric])
		}
		fc.AddFeature(f)
	}
	return fc
}
