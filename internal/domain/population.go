package domain

import "sort"

// PopulationAnchor is one known (year, population) estimate.
type PopulationAnchor struct {
	Year       int     `json:"year" yaml:"year" validate:"required"`
	Population float64 `json:"population" yaml:"population" validate:"gte=0"`
}

// PopulationModel interpolates population between sparse anchors.
type PopulationModel struct {
	anchors []PopulationAnchor
}

// DefaultPopulationAnchors are rough Loudoun County estimates. They are
// heuristics carried as data, not derived figures.
var DefaultPopulationAnchors = []PopulationAnchor{
	{Year: 2001, Population: 200000},
	{Year: 2005, Population: 250000},
	{Year: 2010, Population: 312000},
	{Year: 2015, Population: 370000},
	{Year: 2020, Population: 420000},
	{Year: 2025, Population: 450000},
}

// NewPopulationModel sorts anchors by year. When a year repeats, the last
// anchor given for it wins.
func NewPopulationModel(anchors ...PopulationAnchor) PopulationModel {
	byYear := make(map[int]float64, len(anchors))
	for _, a := range anchors {
		byYear[a.Year] = a.Population
	}
	sorted := make([]PopulationAnchor, 0, len(byYear))
	for y, p := range byYear {
		sorted = append(sorted, PopulationAnchor{Year: y, Population: p})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return PopulationModel{anchors: sorted}
}

// At returns the population for year: linear between the surrounding anchors,
// clamped to the first or last anchor outside them, and 0 with no anchors.
func (p PopulationModel) At(year int) float64 {
	n := len(p.anchors)
	if n == 0 {
		return 0
	}
	if year <= p.anchors[0].Year {
		return p.anchors[0].Population
	}
	if year >= p.anchors[n-1].Year {
		return p.anchors[n-1].Population
	}

	// First anchor strictly after year; the one before it is <= year.
	i := sort.Search(n, func(i int) bool { return p.anchors[i].Year > year })
	lo, hi := p.anchors[i-1], p.anchors[i]
	t := float64(year-lo.Year) / float64(hi.Year-lo.Year)
	return lo.Population + t*(hi.Population-lo.Population)
}
