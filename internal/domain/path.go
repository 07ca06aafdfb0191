package domain

import (
	"math"
	"strconv"
	"strings"
)

// Point is a 2D plotting coordinate; Y grows downwards as in SVG.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathOp is an SVG path command letter.
type PathOp byte

const (
	OpMoveTo  PathOp = 'M'
	OpLineTo  PathOp = 'L'
	OpQuadTo  PathOp = 'Q' // control, end
	OpCubicTo PathOp = 'C' // control1, control2, end
	OpClose   PathOp = 'Z'
)

// PathCommand is one command and its points in SVG order.
type PathCommand struct {
	Op     PathOp
	Points []Point
}

// Path is an ordered list of drawing commands.
type Path struct {
	Commands []PathCommand
}

// MoveTo starts a new subpath at p.
func (p *Path) MoveTo(pt Point) *Path {
	p.Commands = append(p.Commands, PathCommand{Op: OpMoveTo, Points: []Point{pt}})
	return p
}

// LineTo draws a straight segment to pt.
func (p *Path) LineTo(pt Point) *Path {
	p.Commands = append(p.Commands, PathCommand{Op: OpLineTo, Points: []Point{pt}})
	return p
}

// QuadTo draws a quadratic Bézier through control c to pt.
func (p *Path) QuadTo(c, pt Point) *Path {
	p.Commands = append(p.Commands, PathCommand{Op: OpQuadTo, Points: []Point{c, pt}})
	return p
}

// CubicTo draws a cubic Bézier through controls c1, c2 to pt.
func (p *Path) CubicTo(c1, c2, pt Point) *Path {
	p.Commands = append(p.Commands, PathCommand{Op: OpCubicTo, Points: []Point{c1, c2, pt}})
	return p
}

// Close returns to the start of the current subpath.
func (p *Path) Close() *Path {
	p.Commands = append(p.Commands, PathCommand{Op: OpClose})
	return p
}

// IsEmpty reports whether the path draws nothing.
func (p Path) IsEmpty() bool {
	return len(p.Commands) == 0
}

// Closed reports whether the final command reconnects with the start point.
func (p Path) Closed() bool {
	n := len(p.Commands)
	return n > 0 && p.Commands[n-1].Op == OpClose
}

// start returns the first point of the path.
func (p Path) start() (Point, bool) {
	if len(p.Commands) == 0 || len(p.Commands[0].Points) == 0 {
		return Point{}, false
	}
	return p.Commands[0].Points[0], true
}

// vertices returns the end point of every drawing command, in order.
func (p Path) vertices() []Point {
	out := make([]Point, 0, len(p.Commands))
	for _, c := range p.Commands {
		if len(c.Points) > 0 {
			out = append(out, c.Points[len(c.Points)-1])
		}
	}
	return out
}

// String renders the path as an SVG "d" attribute with coordinates rounded
// to two decimals.
func (p Path) String() string {
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(c.Op))
		for _, pt := range c.Points {
			b.WriteByte(' ')
			b.WriteString(formatCoord(pt.X))
			b.WriteByte(' ')
			b.WriteString(formatCoord(pt.Y))
		}
	}
	return b.String()
}

// MarshalText encodes the path as its SVG string.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func formatCoord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
