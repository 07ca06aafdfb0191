package domain

import "fmt"

// FormatValue renders an axis label for a consumption family: energy in
// K/M MWh, water in M/B gallons. Other metrics print as integers.
func FormatValue(m Metric, v float64) string {
	switch m {
	case MetricEnergy:
		if v >= 1e6 {
			return fmt.Sprintf("%.1fM", v/1e6)
		}
		return fmt.Sprintf("%.0fK", v/1e3)
	case MetricWater:
		if v >= 1e9 {
			return fmt.Sprintf("%.1fB", v/1e9)
		}
		return fmt.Sprintf("%.0fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// Tick is one labelled gridline of a chart axis.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Y     float64 `json:"y"`
}

var tickFractions = []float64{0, 0.25, 0.5, 0.75, 1}

// AxisTicks places five ticks at 0, 25, 50, 75 and 100 percent of maxValue.
func AxisTicks(m Metric, maxValue float64, y LinearScale) []Tick {
	ticks := make([]Tick, len(tickFractions))
	for i, f := range tickFractions {
		v := f * maxValue
		ticks[i] = Tick{Value: v, Label: FormatValue(m, v), Y: y.Map(v)}
	}
	return ticks
}
