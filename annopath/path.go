// Implements an abstract representation of
// marker outlines, which can then be consumed
// by a drawing surface or a rasterizer.
package annopath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/srwiley/rasterx"
)

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different path commands
type Operation interface {
	command() pathCommand
}

type MoveTo annogeom.Point

type LineTo annogeom.Point

type QuadTo [2]annogeom.Point

type CubicTo [3]annogeom.Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic drawing operations.
// Higher-level shapes are reduced to a path.
type Path []Operation

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPoints(cmd byte, pts ...annogeom.Point) string {
	var b strings.Builder
	b.WriteByte(cmd)
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatFloat(p.X))
		b.WriteByte(' ')
		b.WriteString(formatFloat(p.Y))
	}
	return b.String()
}

// ToSVGPath returns the path using the SVG `d` attribute syntax.
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = formatPoints('M', annogeom.Point(op))
		case LineTo:
			chunks[i] = formatPoints('L', annogeom.Point(op))
		case QuadTo:
			chunks[i] = formatPoints('Q', op[0], op[1])
		case CubicTo:
			chunks[i] = formatPoints('C', op[0], op[1], op[2])
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a annogeom.Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b annogeom.Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c annogeom.Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d annogeom.Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m annogeom.Matrix) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(m.Apply(annogeom.Point(op)))
		case LineTo:
			out[i] = LineTo(m.Apply(annogeom.Point(op)))
		case QuadTo:
			out[i] = QuadTo{m.Apply(op[0]), m.Apply(op[1])}
		case CubicTo:
			out[i] = CubicTo{m.Apply(op[0]), m.Apply(op[1]), m.Apply(op[2])}
		case Close:
			out[i] = op
		}
	}
	return out
}

// AddTo replays the path on q, after applying the transform m.
func (p Path) AddTo(q rasterx.Adder, m annogeom.Matrix) {
	started := false
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			if started {
				q.Stop(false) // implicit end of the current sub-path
			}
			q.Start(m.Apply(annogeom.Point(op)).Fixed())
			started = true
		case LineTo:
			q.Line(m.Apply(annogeom.Point(op)).Fixed())
		case QuadTo:
			q.QuadBezier(m.Apply(op[0]).Fixed(), m.Apply(op[1]).Fixed())
		case CubicTo:
			q.CubeBezier(m.Apply(op[0]).Fixed(), m.Apply(op[1]).Fixed(), m.Apply(op[2]).Fixed())
		case Close:
			q.Stop(true)
			started = false
		}
	}
	if started {
		q.Stop(false)
	}
}

// Points returns the end points of every operation, in order.
func (p Path) Points() []annogeom.Point {
	var out []annogeom.Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out = append(out, annogeom.Point(op))
		case LineTo:
			out = append(out, annogeom.Point(op))
		case QuadTo:
			out = append(out, op[1])
		case CubicTo:
			out = append(out, op[2])
		}
	}
	return out
}

// GoString is used by test failures
func (p Path) GoString() string { return fmt.Sprintf("Path(%q)", p.ToSVGPath()) }
