package domain

import "sort"

// YearRange is a closed, contiguous range of years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultYearRange covers the timeline drawn by the map.
var DefaultYearRange = YearRange{Min: 2001, Max: 2025}

// Normalized returns r with Min and Max swapped if they are reversed.
func (r YearRange) Normalized() YearRange {
	if r.Min > r.Max {
		return YearRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Len is the number of years in the range.
func (r YearRange) Len() int {
	return r.Max - r.Min + 1
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Clamp moves year to the nearest bound when it lies outside the range.
func (r YearRange) Clamp(year int) int {
	switch {
	case year < r.Min:
		return r.Min
	case year > r.Max:
		return r.Max
	default:
		return year
	}
}

// Years lists every year in ascending order.
func (r YearRange) Years() []int {
	years := make([]int, 0, r.Len())
	for y := r.Min; y <= r.Max; y++ {
		years = append(years, y)
	}
	return years
}

// YearlyAggregate holds cumulative and mean statistics for every metric over
// the entities operational by Year.
type YearlyAggregate struct {
	Year       int                `json:"year"`
	Count      int                `json:"count"`
	Cumulative map[Metric]float64 `json:"cumulative"`
	Mean       map[Metric]float64 `json:"mean"`
}

// Aggregator computes YearlyAggregates from an immutable entity set.
type Aggregator struct {
	entities []DataCenter // sorted by YearOperational, then ID
	years    YearRange
}

// NewAggregator copies and orders entities so that repeated calls sum in the
// same order and return bit-identical results.
func NewAggregator(entities []DataCenter, years YearRange) *Aggregator {
	sorted := make([]DataCenter, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].YearOperational != sorted[j].YearOperational {
			return sorted[i].YearOperational < sorted[j].YearOperational
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &Aggregator{entities: sorted, years: years.Normalized()}
}

// Range returns the year range the aggregator clamps to.
func (a *Aggregator) Range() YearRange {
	return a.years
}

// AggregatesForYear sums every metric over entities with YearOperational <= year.
// Years outside the range are clamped to the nearest bound.
func (a *Aggregator) AggregatesForYear(year int) YearlyAggregate {
	year = a.years.Clamp(year)

	agg := YearlyAggregate{
		Year:       year,
		Cumulative: make(map[Metric]float64, len(Metrics)),
		Mean:       make(map[Metric]float64, len(Metrics)),
	}
	for _, m := range Metrics {
		agg.Cumulative[m] = 0
	}

	for _, dc := range a.entities {
		if dc.YearOperational > year {
			break
		}
		agg.Count++
		for _, m := range Metrics {
			agg.Cumulative[m] += dc.Value(m)
		}
	}

	for _, m := range Metrics {
		agg.Mean[m] = SafeDivide(agg.Cumulative[m], float64(agg.Count), ZeroFallback)
	}
	return agg
}

// Series returns one aggregate per year of the range.
func (a *Aggregator) Series() []YearlyAggregate {
	out := make([]YearlyAggregate, 0, a.years.Len())
	for _, y := range a.years.Years() {
		out = append(out, a.AggregatesForYear(y))
	}
	return out
}

// Visible returns the entities operational by year (after clamping), in
// dataset order by operational year.
func (a *Aggregator) Visible(year int) []DataCenter {
	year = a.years.Clamp(year)
	out := make([]DataCenter, 0, len(a.entities))
	for _, dc := range a.entities {
		if dc.YearOperational > year {
			break
		}
		out = append(out, dc)
	}
	return out
}
