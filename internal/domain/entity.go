package domain

import (
	"fmt"
	"strings"
)

// Metric identifies one consumption dimension of a data center.
type Metric string

const (
	MetricEnergy Metric = "energy" // MWh
	MetricWater  Metric = "water"  // litres
	MetricNoise  Metric = "noise"  // dB
	MetricArea   Metric = "area"   // sqft
)

// Metrics lists every metric in radar axis order, clockwise from the top.
var Metrics = []Metric{MetricEnergy, MetricWater, MetricNoise, MetricArea}

// ParseMetric accepts a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MetricEnergy, MetricWater, MetricNoise, MetricArea:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Category is the authored classification of a data center.
type Category string

const (
	CategoryOperational     Category = "operational"
	CategoryHighConsumption Category = "high-consumption"
)

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Lng float64 `json:"lng" yaml:"lng" validate:"longitude"`
}

// IsZero reports whether the coordinate was never set.
func (ll LatLng) IsZero() bool {
	return ll.Lat == 0 && ll.Lng == 0
}

// DataCenter is one immutable entity of the seed dataset.
type DataCenter struct {
	ID                int      `json:"id" yaml:"id" validate:"required,gt=0"`
	Name              string   `json:"name" yaml:"name" validate:"required"`
	Location          LatLng   `json:"location" yaml:"location"`
	YearOperational   int      `json:"year_operational" yaml:"year_operational" validate:"required,gte=1900,lte=2100"`
	EnergyConsumption float64  `json:"energy_consumption" yaml:"energy_consumption" validate:"gte=0"` // MWh
	WaterConsumption  float64  `json:"water_consumption" yaml:"water_consumption" validate:"gte=0"`   // L
	NoiseLevel        float64  `json:"noise_level" yaml:"noise_level" validate:"gte=0"`               // dB
	BuildingArea      float64  `json:"building_area" yaml:"building_area" validate:"gte=0"`           // sqft
	Category          Category `json:"category" yaml:"category" validate:"required,oneof=operational high-consumption"`
	Address           string   `json:"address,omitempty" yaml:"address,omitempty"`

	// GeoSource records how Location/Address were resolved:
	// "forward", "reverse", "original" or "failed". Empty when geocoding is off.
	GeoSource string `json:"geo_source,omitempty" yaml:"-"`
}

// Value returns the raw magnitude of m for this data center.
func (dc DataCenter) Value(m Metric) float64 {
	switch m {
	case MetricEnergy:
		return dc.EnergyConsumption
	case MetricWater:
		return dc.WaterConsumption
	case MetricNoise:
		return dc.NoiseLevel
	case MetricArea:
		return dc.BuildingArea
	default:
		return 0
	}
}

// DefaultHighConsumptionMWh is the authoring-time threshold separating
// operational from high-consumption centers.
const DefaultHighConsumptionMWh = 55.0

// ClassifyCategory applies the static threshold rule: energy at or above
// thresholdMWh is high-consumption.
func ClassifyCategory(dc DataCenter, thresholdMWh float64) Category {
	if dc.EnergyConsumption >= thresholdMWh {
		return CategoryHighConsumption
	}
	return CategoryOperational
}
