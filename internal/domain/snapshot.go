package domain

import "time"

// Marker is one visible data center as the map draws it.
type Marker struct {
	ID              int                `json:"id"`
	Name            string             `json:"name"`
	Location        LatLng             `json:"location"`
	Screen          Point              `json:"screen"`
	YearOperational int                `json:"year_operational"`
	Category        Category           `json:"category"`
	Color           string             `json:"color"`
	CategoryColor   string             `json:"category_color"`
	Values          map[Metric]float64 `json:"values"`
	Normalized      map[Metric]float64 `json:"normalized"`
	Radar           Path               `json:"radar"`
	Address         string             `json:"address,omitempty"`
}

// Chart is one stacked area chart: data-center consumption over the
// population baseline, up to the selected year.
type Chart struct {
	Metric        Metric             `json:"metric"`
	Points        []ConsumptionPoint `json:"points"`
	Base          Path               `json:"base"`
	Stacked       Path               `json:"stacked"`
	MaxValue      float64            `json:"max_value"`
	DCPercent     float64            `json:"dc_percent"`
	PeoplePercent float64            `json:"people_percent"`
	Ticks         []Tick             `json:"ticks"`
}

// Snapshot is everything the presentation layer draws for one selected year.
type Snapshot struct {
	Year           int             `json:"year"`
	DatasetVersion string          `json:"dataset_version"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Aggregate      YearlyAggregate `json:"aggregate"`
	Markers        []Marker        `json:"markers"`
	Energy         Chart           `json:"energy"`
	Water          Chart           `json:"water"`
	SliderPosition float64         `json:"slider_position"`
	Color          string          `json:"color"`
	Highlights     []int           `json:"highlights"`
}

// SnapshotInput carries the precomputed, dataset-wide state BuildSnapshot reads.
type SnapshotInput struct {
	Year           int
	DatasetVersion string
	Aggregator     *Aggregator
	Normalizer     *Normalizer
	EnergySeries   []ConsumptionPoint
	WaterSeries    []ConsumptionPoint
	Viewport       Viewport
	Frames         Frames
	RadarStyle     RadarStyle
}

// BuildSnapshot assembles the snapshot for in.Year (clamped to the
// aggregator's range). It is a pure function of its input and the clock.
func BuildSnapshot(in SnapshotInput) Snapshot {
	years := in.Aggregator.Range()
	year := years.Clamp(in.Year)

	frame := in.Frames.Chart
	frame.Years = years

	visible := in.Aggregator.Visible(year)
	markers := make([]Marker, 0, len(visible))
	for _, dc := range visible {
		markers = append(markers, buildMarker(dc, in, years))
	}

	return Snapshot{
		Year:           year,
		DatasetVersion: in.DatasetVersion,
		GeneratedAt:    clock.Now().UTC(),
		Aggregate:      in.Aggregator.AggregatesForYear(year),
		Markers:        markers,
		Energy:         BuildChart(MetricEnergy, PointsUpTo(in.EnergySeries, year), frame),
		Water:          BuildChart(MetricWater, PointsUpTo(in.WaterSeries, year), frame),
		SliderPosition: PositionOfYear(year, years),
		Color:          YearColor(year, years, TimelinePalette),
		Highlights:     HighlightYears(year, years),
	}
}

func buildMarker(dc DataCenter, in SnapshotInput, years YearRange) Marker {
	values := make(map[Metric]float64, len(Metrics))
	normalized := make(map[Metric]float64, len(Metrics))
	for _, m := range Metrics {
		values[m] = dc.Value(m)
		normalized[m] = in.Normalizer.Normalize(m, dc.Value(m))
	}
	return Marker{
		ID:              dc.ID,
		Name:            dc.Name,
		Location:        dc.Location,
		Screen:          in.Viewport.ToScreen(dc.Location),
		YearOperational: dc.YearOperational,
		Category:        dc.Category,
		Color:           YearColor(dc.YearOperational, years, MarkerPalette),
		CategoryColor:   CategoryColors[dc.Category],
		Values:          values,
		Normalized:      normalized,
		Radar:           ProjectRadar(in.Normalizer.Values(dc, Metrics), in.Frames.Radar, in.RadarStyle),
		Address:         dc.Address,
	}
}

// BuildChart projects a consumption series. The percent split is taken from
// the last point, i.e. the selected year.
func BuildChart(m Metric, points []ConsumptionPoint, frame ChartFrame) Chart {
	stack := make([]StackPoint, len(points))
	for i, p := range points {
		stack[i] = p.Stack()
	}
	area := ProjectStackedArea(stack, frame)

	c := Chart{
		Metric:        m,
		Points:        points,
		Base:          area.Base,
		Stacked:       area.Stacked,
		MaxValue:      area.MaxValue,
		DCPercent:     float64(EvenSplitFallback),
		PeoplePercent: float64(EvenSplitFallback),
		Ticks:         AxisTicks(m, area.MaxValue, area.YScale),
	}
	if n := len(points); n > 0 {
		c.DCPercent, c.PeoplePercent = PercentSplit(points[n-1].DC, points[n-1].People)
	}
	return c
}
