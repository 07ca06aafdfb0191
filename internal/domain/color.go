package domain

// ColorBandYears is the width of one colour band on the timeline.
const ColorBandYears = 5

// MarkerPalette colours map markers by operational-year band.
var MarkerPalette = []string{
	"hsl(210 80% 60%)",
	"hsl(30 85% 65%)",
	"hsl(280 70% 65%)",
	"hsl(160 75% 55%)",
	"hsl(350 75% 65%)",
}

// TimelinePalette colours the timeline legend bands.
var TimelinePalette = []string{
	"hsl(358 95% 85%)",
	"hsl(0 85% 93%)",
	"hsl(40 40% 92%)",
	"hsl(46 100% 82%)",
	"hsl(48 97% 61%)",
}

// CategoryColors are the fixed fills for each category.
var CategoryColors = map[Category]string{
	CategoryOperational:     "hsl(217 91% 60%)",
	CategoryHighConsumption: "hsl(6 78% 68%)",
}

// YearColor returns the palette entry for the band year falls in, counting
// ColorBandYears-wide bands from the start of years. Years outside the range
// are clamped and the last entry repeats when the palette runs out.
func YearColor(year int, years YearRange, palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	years = years.Normalized()
	band := (years.Clamp(year) - years.Min) / ColorBandYears
	return palette[min(band, len(palette)-1)]
}
