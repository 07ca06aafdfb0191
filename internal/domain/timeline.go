package domain

import (
	"math"
	"slices"
)

// YearAtPosition converts a horizontal slider position into a year: x/width is
// clamped to [0, 1] and rounded to the nearest year index. An undefined ratio
// (NaN) selects the first year.
func YearAtPosition(x, width float64, years YearRange) int {
	years = years.Normalized()
	pct := SafeDivide(x, width, ZeroFallback)
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Max(0, math.Min(1, pct))
	return years.Min + int(math.Round(pct*float64(years.Len()-1)))
}

// PositionOfYear is the inverse of YearAtPosition, as a fraction of the
// slider width.
func PositionOfYear(year int, years YearRange) float64 {
	years = years.Normalized()
	return SafeDivide(float64(years.Clamp(year)-years.Min), float64(years.Len()-1), ZeroFallback)
}

// HighlightYears returns the years labelled on the timeline in ascending
// order: the first year of every colour band plus the selected year.
func HighlightYears(selected int, years YearRange) []int {
	years = years.Normalized()
	out := []int{years.Clamp(selected)}
	for y := years.Min; y <= years.Max; y += ColorBandYears {
		out = append(out, y)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
