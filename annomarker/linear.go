package annomarker

import (
	"math"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// ArrowType selects the ends of an arrow carrying a head.
type ArrowType string

const (
	ArrowBoth  ArrowType = "both"
	ArrowStart ArrowType = "start"
	ArrowEnd   ArrowType = "end"
	ArrowNone  ArrowType = "none"
)

// selectorWidth is the minimal thickness of the invisible line used for picking.
const selectorWidth = 8

type linearKind struct {
	typeName string
	// ends returns the decorations drawn at the end points, if any
	ends func(m *LinearMarker) annopath.Path
}

var (
	lineKind        = &linearKind{typeName: "LineMarker"}
	arrowKind       = &linearKind{typeName: "ArrowMarker", ends: arrowHeads}
	measurementKind = &linearKind{typeName: "MeasurementMarker", ends: measurementTips}
)

// LinearMarker is a two points variant. Its orientation
// is implicit in the end points: it has no rotation.
type LinearMarker struct {
	Base
	X1, Y1, X2, Y2 float64

	// ArrowType is only used by arrows.
	ArrowType ArrowType

	kind         *linearKind
	selector, tp *annosurface.Path
	line         *annosurface.Line
}

func newLinear(kind *linearKind) *LinearMarker {
	return &LinearMarker{Base: newBase(), kind: kind}
}

func NewLineMarker() *LinearMarker { return newLinear(lineKind) }

func NewArrowMarker() *LinearMarker {
	m := newLinear(arrowKind)
	m.ArrowType = ArrowEnd
	return m
}

func NewMeasurementMarker() *LinearMarker { return newLinear(measurementKind) }

func (m *LinearMarker) TypeName() string { return m.kind.typeName }

func (m *LinearMarker) P1() annogeom.Point { return annogeom.Pt(m.X1, m.Y1) }
func (m *LinearMarker) P2() annogeom.Point { return annogeom.Pt(m.X2, m.Y2) }

func (m *LinearMarker) Length() float64 { return m.P1().Dist(m.P2()) }

// PointList implements PointsMarker.
func (m *LinearMarker) PointList() []annogeom.Point { return []annogeom.Point{m.P1(), m.P2()} }

// Path returns the line itself.
func (m *LinearMarker) Path() annopath.Path { return annopath.Segment(m.P1(), m.P2()) }

// EndsPath returns the decoration of the ends (arrow heads, measurement tips).
func (m *LinearMarker) EndsPath() annopath.Path {
	if m.kind.ends == nil {
		return nil
	}
	return m.kind.ends(m)
}

func arrowHeads(m *LinearMarker) annopath.Path {
	height := 10 + m.StrokeWidth*2
	width := height
	var out annopath.Path
	if m.ArrowType == ArrowBoth || m.ArrowType == ArrowStart {
		out = append(out, annopath.ArrowHead(m.P1(), m.P2(), width, height)...)
	}
	if m.ArrowType == ArrowBoth || m.ArrowType == ArrowEnd {
		out = append(out, annopath.ArrowHead(m.P2(), m.P1(), width, height)...)
	}
	return out
}

func measurementTips(m *LinearMarker) annopath.Path {
	length := 2 * (5 + m.StrokeWidth*3)
	return append(annopath.Tick(m.P1(), m.P2(), length), annopath.Tick(m.P2(), m.P1(), length)...)
}

func (m *LinearMarker) CreateVisual(s *annosurface.Surface) {
	c := m.attach(s)

	m.selector = annosurface.NewPath(m.Path())
	annosurface.SetAttr(m.selector, "stroke", "transparent")
	annosurface.SetAttr(m.selector, "fill", "none")
	c.Append(m.selector)

	m.line = annosurface.NewLine(m.X1, m.Y1, m.X2, m.Y2)
	c.Append(m.line)
	m.addStroked(m.line)

	if m.kind.ends != nil {
		m.tp = annosurface.NewPath(m.EndsPath())
		c.Append(m.tp)
		m.addStroked(m.tp)
		if m.kind == arrowKind {
			m.addFilled(m.tp, m.StrokeColor)
		}
	}
	m.AdjustVisual()
}

// AdjustVisual updates the visual after a change of the end points.
func (m *LinearMarker) AdjustVisual() {
	if m.line == nil {
		return
	}
	m.selector.D = m.Path()
	annosurface.SetAttr(m.selector, "stroke-width", math.Max(selectorWidth, m.StrokeWidth))
	m.line.X1, m.line.Y1, m.line.X2, m.line.Y2 = m.X1, m.Y1, m.X2, m.Y2
	if m.tp != nil {
		m.tp.D = m.EndsPath()
	}
}

// SetEndpoints moves both ends.
func (m *LinearMarker) SetEndpoints(p1, p2 annogeom.Point) {
	m.X1, m.Y1, m.X2, m.Y2 = p1.X, p1.Y, p2.X, p2.Y
	m.AdjustVisual()
}

func (m *LinearMarker) SetStrokeColor(color string) {
	m.Base.SetStrokeColor(color)
	if m.kind == arrowKind {
		m.setFill(color)
	}
}

// SetStrokeWidth also resizes the end decorations.
func (m *LinearMarker) SetStrokeWidth(width float64) {
	m.Base.SetStrokeWidth(width)
	m.AdjustVisual()
}

func (m *LinearMarker) SetArrowType(t ArrowType) {
	m.ArrowType = t
	m.AdjustVisual()
}

func (m *LinearMarker) linearState() LinearState {
	return LinearState{
		BaseState: m.baseState(m.TypeName()),
		X1:        m.X1, Y1: m.Y1, X2: m.X2, Y2: m.Y2,
	}
}

func (m *LinearMarker) GetState() MarkerState {
	ls := m.linearState()
	if m.kind == arrowKind {
		return &ArrowState{LinearState: ls, ArrowType: m.ArrowType}
	}
	return &ls
}

func (m *LinearMarker) RestoreState(state MarkerState) error {
	var ls *LinearState
	switch s := state.(type) {
	case *ArrowState:
		if m.kind != arrowKind {
			return ErrStateMismatch
		}
		ls = &s.LinearState
		if s.ArrowType != "" {
			m.ArrowType = s.ArrowType
		}
	case *LinearState:
		if m.kind == arrowKind {
			return ErrStateMismatch
		}
		ls = s
	default:
		return ErrStateMismatch
	}
	m.restoreBase(&ls.BaseState)
	m.X1, m.Y1, m.X2, m.Y2 = ls.X1, ls.Y1, ls.X2, ls.Y2
	m.SetStrokeColor(m.StrokeColor)
	m.AdjustVisual()
	return nil
}

func (m *LinearMarker) Scale(sx, sy float64) {
	m.X1 *= sx
	m.Y1 *= sy
	m.X2 *= sx
	m.Y2 *= sy
	m.scaleStroke(sx, sy)
	m.AdjustVisual()
}

func (m *LinearMarker) Destroy() {
	m.Base.Destroy()
	m.selector, m.line, m.tp = nil, nil, nil
}
