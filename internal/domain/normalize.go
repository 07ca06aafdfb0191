package domain

import "math"

// ZeroDivisionPolicy is the value a ratio takes when its denominator is zero.
type ZeroDivisionPolicy float64

const (
	// ZeroFallback is used for normalization and means over empty cohorts.
	ZeroFallback ZeroDivisionPolicy = 0
	// EvenSplitFallback is used for percentage splits with a zero total.
	EvenSplitFallback ZeroDivisionPolicy = 50
)

// SafeDivide returns num/den, or the policy value when den is zero or NaN.
func SafeDivide(num, den float64, policy ZeroDivisionPolicy) float64 {
	if den == 0 || math.IsNaN(den) {
		return float64(policy)
	}
	return num / den
}

// Normalize maps value into [0, ~1] relative to datasetMax. The result is not
// clamped: a value above datasetMax yields a ratio above 1.
func Normalize(value, datasetMax float64) float64 {
	if datasetMax <= 0 {
		return 0
	}
	return value / datasetMax
}

// PercentSplit returns a and b as percentages of a+b. A zero total splits 50/50.
func PercentSplit(a, b float64) (aPct, bPct float64) {
	total := a + b
	if total == 0 {
		return float64(EvenSplitFallback), float64(EvenSplitFallback)
	}
	return a / total * 100, b / total * 100
}

// Normalizer holds per-metric maxima scanned once from the full dataset.
// The maxima do not depend on the selected year.
type Normalizer struct {
	maxima map[Metric]float64
}

// NewNormalizer scans entities for the maximum of every metric.
func NewNormalizer(entities []DataCenter) *Normalizer {
	maxima := make(map[Metric]float64, len(Metrics))
	for _, m := range Metrics {
		maxima[m] = 0
	}
	for _, dc := range entities {
		for _, m := range Metrics {
			if v := dc.Value(m); v > maxima[m] {
				maxima[m] = v
			}
		}
	}
	return &Normalizer{maxima: maxima}
}

// Max returns the dataset maximum for m.
func (n *Normalizer) Max(m Metric) float64 {
	return n.maxima[m]
}

// Maxima returns a copy of all maxima.
func (n *Normalizer) Maxima() map[Metric]float64 {
	out := make(map[Metric]float64, len(n.maxima))
	for k, v := range n.maxima {
		out[k] = v
	}
	return out
}

// Normalize maps raw against the dataset maximum of m.
func (n *Normalizer) Normalize(m Metric, raw float64) float64 {
	return Normalize(raw, n.maxima[m])
}

// Values returns the normalized magnitudes of dc in the order of axes.
func (n *Normalizer) Values(dc DataCenter, axes []Metric) []float64 {
	out := make([]float64, len(axes))
	for i, m := range axes {
		out[i] = n.Normalize(m, dc.Value(m))
	}
	return out
}
