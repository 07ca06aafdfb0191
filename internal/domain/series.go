package domain

import "sort"

// DaysPerYear annualises the per-day data-center column.
const DaysPerYear = 365

// Per-capita fallbacks used before the first CSV year that carries one.
const (
	DefaultEnergyPerCapitaMWh    = 10.0
	DefaultWaterPerCapitaGallons = 100000.0
)

// ConsumptionPoint is one year of a consumption series.
type ConsumptionPoint struct {
	Year      int     `json:"year"`
	DC        float64 `json:"dc"`         // cumulative annual data-center consumption
	People    float64 `json:"people"`     // population baseline
	PerCapita float64 `json:"per_capita"` // rate the baseline was computed with
}

// Total is the stacked height of the point.
func (p ConsumptionPoint) Total() float64 {
	return p.DC + p.People
}

// Stack converts the point for ProjectStackedArea.
func (p ConsumptionPoint) Stack() StackPoint {
	return StackPoint{Year: p.Year, Base: p.DC, Second: p.People}
}

// SeriesOptions configures BuildConsumptionSeries.
type SeriesOptions struct {
	Years            YearRange
	Population       PopulationModel
	DefaultPerCapita float64
}

type yearBucket struct {
	dc           float64
	perCapitaSum float64
	n            int
}

// BuildConsumptionSeries merges parsed records into one point per year of
// opts.Years. Data-center values for a year are summed, annualised and added
// to a running total, so DC never decreases. Per-capita rates for a year are
// averaged and carried forward to years without data. Records after the range
// are ignored, but records dated before it are not dropped: their
// consumption is folded into the starting total of the first year, so a
// corridor built out before Years.Min does not start the chart at zero.
func BuildConsumptionSeries(records []ConsumptionRecord, opts SeriesOptions) []ConsumptionPoint {
	years := opts.Years.Normalized()

	buckets := make(map[int]*yearBucket)
	for _, r := range records {
		if r.Year > years.Max {
			continue
		}
		b, ok := buckets[r.Year]
		if !ok {
			b = &yearBucket{}
			buckets[r.Year] = b
		}
		b.dc += r.DCMetric
		b.perCapitaSum += r.PerCapita
		b.n++
	}

	cumulative := 0.0
	perCapita := opts.DefaultPerCapita

	var early []int
	for y := range buckets {
		if y < years.Min {
			early = append(early, y)
		}
	}
	sort.Ints(early)
	for _, y := range early {
		b := buckets[y]
		cumulative += b.dc * DaysPerYear
		perCapita = b.perCapitaSum / float64(b.n)
	}

	points := make([]ConsumptionPoint, 0, years.Len())
	for _, y := range years.Years() {
		if b, ok := buckets[y]; ok {
			cumulative += b.dc * DaysPerYear
			perCapita = b.perCapitaSum / float64(b.n)
		}
		points = append(points, ConsumptionPoint{
			Year:      y,
			DC:        cumulative,
			People:    opts.Population.At(y) * perCapita,
			PerCapita: perCapita,
		})
	}
	return points
}

// PointsUpTo returns the prefix of a year-ordered series with Year <= year.
func PointsUpTo(points []ConsumptionPoint, year int) []ConsumptionPoint {
	i := sort.Search(len(points), func(i int) bool { return points[i].Year > year })
	return points[:i]
}
