package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearScale_Map(t *testing.T) {
	s := LinearScale{DomainMin: 2001, DomainMax: 2025, RangeMin: 0, RangeMax: 240}
	assert.Equal(t, 0.0, s.Map(2001))
	assert.Equal(t, 120.0, s.Map(2013))
	assert.Equal(t, 240.0, s.Map(2025))

	inverted := LinearScale{DomainMin: 0, DomainMax: 100, RangeMin: 90, RangeMax: 0}
	assert.Equal(t, 90.0, inverted.Map(0))
	assert.Equal(t, 0.0, inverted.Map(100))

	flat := LinearScale{DomainMin: 5, DomainMax: 5, RangeMin: 0, RangeMax: 100}
	assert.Equal(t, 0.0, flat.Map(5), "zero-width domain maps to the start of the range")
	assert.False(t, math.IsNaN(flat.Map(7)))
}

func TestPath_String(t *testing.T) {
	var p Path
	p.MoveTo(Point{X: 1, Y: 2}).
		LineTo(Point{X: 3.14159, Y: -0.001}).
		QuadTo(Point{X: 4, Y: 5}, Point{X: 6, Y: 7}).
		CubicTo(Point{X: 1, Y: 1}, Point{X: 2, Y: 2}, Point{X: 3, Y: 3}).
		Close()

	assert.Equal(t, "M 1 2 L 3.14 0 Q 4 5 6 7 C 1 1 2 2 3 3 Z", p.String())
	assert.True(t, p.Closed())
	start, ok := p.start()
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2}, start)
	assert.Equal(t, []Point{{1, 2}, {3.14159, -0.001}, {6, 7}, {3, 3}}, p.vertices())

	text, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, p.String(), string(text))
}

func TestPath_Empty(t *testing.T) {
	var p Path
	assert.True(t, p.IsEmpty())
	assert.False(t, p.Closed())
	assert.Equal(t, "", p.String())
	_, ok := p.start()
	assert.False(t, ok)
}

func TestProjectStackedArea(t *testing.T) {
	frame := ChartFrame{Width: 100, Height: 50, Years: YearRange{Min: 2000, Max: 2010}}
	points := []StackPoint{
		{Year: 2000, Base: 10, Second: 10},
		{Year: 2005, Base: 20, Second: 30},
		{Year: 2010, Base: 25, Second: 25},
	}

	area := ProjectStackedArea(points, frame)

	assert.Equal(t, 50.0, area.MaxValue)
	assert.Equal(t, "M 0 40 L 50 30 L 100 25 L 100 50 L 0 50 Z", area.Base.String())
	assert.Equal(t, "M 0 30 L 50 0 L 100 0 L 100 25 L 50 30 L 0 40 Z", area.Stacked.String())
	assert.True(t, area.Base.Closed())
	assert.True(t, area.Stacked.Closed())
}

func TestProjectStackedArea_UpperBoundAboveLower(t *testing.T) {
	frame := DefaultChartFrame
	points := []StackPoint{{Year: 2001, Base: 1, Second: 3}, {Year: 2002, Base: 2, Second: 0}, {Year: 2003, Base: 5, Second: 5}}

	area := ProjectStackedArea(points, frame)

	for _, p := range points {
		assert.LessOrEqual(t, area.YScale.Map(p.Base+p.Second), area.YScale.Map(p.Base), "year %d", p.Year)
	}
}

func TestProjectStackedArea_Degenerate(t *testing.T) {
	area := ProjectStackedArea(nil, DefaultChartFrame)
	assert.True(t, area.Base.IsEmpty())
	assert.True(t, area.Stacked.IsEmpty())

	zeros := ProjectStackedArea([]StackPoint{{Year: 2001}, {Year: 2002}}, DefaultChartFrame)
	assert.True(t, zeros.Base.Closed())
	for _, v := range zeros.Stacked.vertices() {
		assert.False(t, math.IsNaN(v.Y))
		assert.Equal(t, DefaultChartFrame.Height, v.Y, "all-zero series sits on the baseline")
	}
}

func TestRadarPoints_AxisOrder(t *testing.T) {
	frame := RadarFrame{Center: Point{X: 30, Y: 30}, MaxRadius: 25}

	pts := RadarPoints([]float64{1, 1, 1, 1}, frame)

	require.Len(t, pts, 4)
	assert.InDelta(t, 30, pts[0].X, 1e-9)
	assert.InDelta(t, 5, pts[0].Y, 1e-9, "first axis points up")
	assert.InDelta(t, 55, pts[1].X, 1e-9, "second axis points right")
	assert.InDelta(t, 55, pts[2].Y, 1e-9)
	assert.InDelta(t, 5, pts[3].X, 1e-9)
}

func TestProjectRadar_AlwaysClosed(t *testing.T) {
	values := [][]float64{
		{1, 0.5, 0.25, 0.75},
		{0, 0, 0, 0},
		{0.3, 0.6, 0.9},
	}
	for _, style := range []RadarStyle{RadarLinear, RadarQuadratic, RadarCardinal} {
		for _, v := range values {
			p := ProjectRadar(v, DefaultRadarFrame, style)
			assert.True(t, p.Closed(), "%s %v", style, v)
			start, _ := p.start()
			verts := p.vertices()
			if style != RadarLinear {
				assert.Equal(t, start, verts[len(verts)-1], "%s curve ends on its start point", style)
			}
		}
	}
}

func TestProjectRadar_Linear(t *testing.T) {
	p := ProjectRadar([]float64{1, 1, 1, 1}, RadarFrame{Center: Point{X: 30, Y: 30}, MaxRadius: 25}, RadarLinear)

	assert.Equal(t, "M 30 5 L 55 30 L 30 55 L 5 30 Z", p.String())
}

func TestProjectRadar_QuadraticConcavity(t *testing.T) {
	frame := RadarFrame{Center: Point{X: 30, Y: 30}, MaxRadius: 25}

	straight := ProjectRadar([]float64{1, 1, 1, 1}, frame, RadarQuadratic)
	require.Equal(t, OpQuadTo, straight.Commands[1].Op)
	assert.Equal(t, Point{X: 42.5, Y: 17.5}, straight.Commands[1].Points[0], "zero concavity keeps the edge midpoint")

	frame.Concavity = 1
	pinched := ProjectRadar([]float64{1, 1, 1, 1}, frame, RadarQuadratic)
	assert.Equal(t, frame.Center, pinched.Commands[1].Points[0])
}

func TestProjectRadar_Empty(t *testing.T) {
	assert.True(t, ProjectRadar(nil, DefaultRadarFrame, RadarCardinal).IsEmpty())
}

func TestProjectMirroredBand(t *testing.T) {
	frame := BandFrame{Width: 60, Height: 120, Padding: 10, MaxValue: 100}

	p := ProjectMirroredBand([]float64{100, 50, 0, 20, 80}, frame)

	require.True(t, p.Closed())
	verts := p.vertices()
	require.Len(t, verts, 10)
	for i := 0; i < 5; i++ {
		left, right := verts[i], verts[9-i]
		assert.InDelta(t, 30-left.X, right.X-30, 1e-9, "row %d is mirrored", i)
		assert.Equal(t, left.Y, right.Y)
	}
	assert.Equal(t, Point{X: 10, Y: 10}, verts[0])
	assert.Equal(t, Point{X: 30, Y: 50}, verts[2])
}

func TestProjectMirroredBand_ZeroMax(t *testing.T) {
	p := ProjectMirroredBand([]float64{5, 10}, BandFrame{Width: 60, Height: 100, Padding: 10})

	for _, v := range p.vertices() {
		assert.Equal(t, 30.0, v.X)
	}
	assert.True(t, ProjectMirroredBand(nil, DefaultBandFrame).IsEmpty())
}

func TestPolyline(t *testing.T) {
	p := Polyline([]Point{{0, 0}, {10, 5}, {20, 0}})

	assert.Equal(t, "M 0 0 L 10 5 L 20 0", p.String())
	assert.False(t, p.Closed())
}

func TestProjectPath(t *testing.T) {
	frames := DefaultFrames()

	t.Run("radar", func(t *testing.T) {
		p, err := ProjectPath(PathRequest{Kind: PathRadar, Style: RadarCardinal, Values: []float64{1, 0.5, 0.5, 1}}, frames)
		require.NoError(t, err)
		assert.True(t, p.Closed())
		assert.Equal(t, OpCubicTo, p.Commands[1].Op)
	})

	t.Run("radar default style", func(t *testing.T) {
		p, err := ProjectPath(PathRequest{Kind: PathRadar, Values: []float64{1, 1, 1}}, frames)
		require.NoError(t, err)
		assert.Equal(t, OpLineTo, p.Commands[1].Op)
	})

	t.Run("stacked", func(t *testing.T) {
		p, err := ProjectPath(PathRequest{Kind: PathStacked, Stack: []StackPoint{{Year: 2001, Base: 1, Second: 1}}}, frames)
		require.NoError(t, err)
		assert.True(t, p.Closed())
	})

	t.Run("stacked out of order", func(t *testing.T) {
		ordered := []StackPoint{{Year: 2001, Base: 1, Second: 1}, {Year: 2010, Base: 2, Second: 3}, {Year: 2020, Base: 4, Second: 2}}
		shuffled := []StackPoint{ordered[2], ordered[0], ordered[1]}

		want, err := ProjectPath(PathRequest{Kind: PathStacked, Stack: ordered}, frames)
		require.NoError(t, err)
		got, err := ProjectPath(PathRequest{Kind: PathStacked, Stack: shuffled}, frames)
		require.NoError(t, err)

		assert.Equal(t, want, got)
		assert.Equal(t, 2020, shuffled[0].Year, "request is not reordered in place")
	})

	t.Run("band", func(t *testing.T) {
		p, err := ProjectPath(PathRequest{Kind: PathBand, Values: []float64{10, 20}}, frames)
		require.NoError(t, err)
		assert.True(t, p.Closed())
	})

	t.Run("polyline", func(t *testing.T) {
		p, err := ProjectPath(PathRequest{Kind: PathPolyline, Points: []Point{{0, 0}, {1, 1}}}, frames)
		require.NoError(t, err)
		assert.False(t, p.Closed())
	})

	errCases := []struct {
		name string
		req  PathRequest
		want error
	}{
		{"unknown kind", PathRequest{Kind: "spiral"}, ErrUnknownPathKind},
		{"radar too few", PathRequest{Kind: PathRadar, Values: []float64{1, 1}}, ErrInvalidPathRequest},
		{"radar too many", PathRequest{Kind: PathRadar, Values: []float64{1, 1, 1, 1, 1}}, ErrInvalidPathRequest},
		{"radar bad style", PathRequest{Kind: PathRadar, Style: "wobbly", Values: []float64{1, 1, 1}}, ErrInvalidPathRequest},
		{"empty stack", PathRequest{Kind: PathStacked}, ErrInvalidPathRequest},
		{"empty band", PathRequest{Kind: PathBand}, ErrInvalidPathRequest},
		{"short polyline", PathRequest{Kind: PathPolyline, Points: []Point{{0, 0}}}, ErrInvalidPathRequest},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProjectPath(tc.req, frames)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestProjectPath_Reproducible(t *testing.T) {
	req := PathRequest{Kind: PathRadar, Style: RadarQuadratic, Values: []float64{0.1, 0.9, 0.4, 0.7}}

	a, err := ProjectPath(req, DefaultFrames())
	require.NoError(t, err)
	b, err := ProjectPath(req, DefaultFrames())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
