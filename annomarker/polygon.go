package annomarker

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// PointsMarker is implemented by the variants defined by a list of points.
type PointsMarker interface {
	Marker
	PointList() []annogeom.Point
}

type multiPointKind struct {
	typeName  string
	closed    bool // once construction is finished
	minPoints int
}

var (
	polygonKind  = &multiPointKind{typeName: "PolygonMarker", closed: true, minPoints: 3}
	freehandKind = &multiPointKind{typeName: "FreehandMarker", minPoints: 2}
)

// MultiPointMarker is an ordered sequence of points: a polygon,
// closed once its construction is finished, or a freehand stroke,
// never closed.
type MultiPointMarker struct {
	Base
	Points    []annogeom.Point
	FillColor string

	kind           *multiPointKind
	selector, line *annosurface.Path
}

func newMultiPoint(kind *multiPointKind) *MultiPointMarker {
	return &MultiPointMarker{Base: newBase(), kind: kind, FillColor: "transparent"}
}

func NewPolygonMarker() *MultiPointMarker { return newMultiPoint(polygonKind) }

func NewFreehandMarker() *MultiPointMarker { return newMultiPoint(freehandKind) }

func (m *MultiPointMarker) TypeName() string { return m.kind.typeName }

func (m *MultiPointMarker) PointList() []annogeom.Point { return m.Points }

// Closable reports whether the outline is closed once construction is finished.
func (m *MultiPointMarker) Closable() bool { return m.kind.closed }

// MinPoints is the number of points the variant keeps when points are deleted.
func (m *MultiPointMarker) MinPoints() int { return m.kind.minPoints }

// Closed reports whether the outline joins the last point to the first.
func (m *MultiPointMarker) Closed() bool {
	return m.kind.closed && m.State != StateNew && m.State != StateCreating
}

func (m *MultiPointMarker) Path() annopath.Path {
	return annopath.Polyline(m.Points, m.Closed())
}

func (m *MultiPointMarker) CreateVisual(s *annosurface.Surface) {
	c := m.attach(s)

	m.selector = annosurface.NewPath(m.Path())
	annosurface.SetAttr(m.selector, "stroke", "transparent")
	c.Append(m.selector)

	m.line = annosurface.NewPath(m.Path())
	c.Append(m.line)
	m.addStroked(m.line)
	if m.kind.closed {
		m.addFilled(m.line, m.FillColor)
	}
	m.AdjustVisual()
}

// AdjustVisual updates the visual after a change of the points.
func (m *MultiPointMarker) AdjustVisual() {
	if m.line == nil {
		return
	}
	m.selector.D = m.Path()
	annosurface.SetAttr(m.selector, "stroke-width", max(selectorWidth, m.StrokeWidth))
	if m.kind.closed {
		annosurface.SetAttr(m.selector, "fill", "transparent")
	} else {
		annosurface.SetAttr(m.selector, "fill", "none")
	}
	m.line.D = m.Path()
}

func (m *MultiPointMarker) SetFillColor(color string) {
	m.FillColor = color
	m.setFill(color)
}

// SetPoint moves the point at index i.
func (m *MultiPointMarker) SetPoint(i int, p annogeom.Point) {
	m.Points[i] = p
	m.AdjustVisual()
}

// AddPoint appends p.
func (m *MultiPointMarker) AddPoint(p annogeom.Point) {
	m.Points = append(m.Points, p)
	m.AdjustVisual()
}

// InsertPoint inserts p before index i.
func (m *MultiPointMarker) InsertPoint(i int, p annogeom.Point) {
	m.Points = append(m.Points, annogeom.Point{})
	copy(m.Points[i+1:], m.Points[i:])
	m.Points[i] = p
	m.AdjustVisual()
}

// DeletePoint removes the point at index i, unless that would leave
// fewer points than the variant minimum. It reports whether the point
// was deleted.
func (m *MultiPointMarker) DeletePoint(i int) bool {
	if len(m.Points) <= m.kind.minPoints || i < 0 || i >= len(m.Points) {
		return false
	}
	m.Points = append(m.Points[:i], m.Points[i+1:]...)
	m.AdjustVisual()
	return true
}

// MovePoints translates every point by d.
func (m *MultiPointMarker) MovePoints(start []annogeom.Point, d annogeom.Point) {
	for i, p := range start {
		m.Points[i] = p.Add(d)
	}
	m.AdjustVisual()
}

// NearestSegment returns the index i of the segment [i, i+1]
// (wrapping for closed outlines) closest to p, and the projection of p
// on it. It returns -1 if the marker has less than two points.
func (m *MultiPointMarker) NearestSegment(p annogeom.Point) (int, annogeom.Point) {
	n := len(m.Points)
	if n < 2 {
		return -1, p
	}
	segs := n - 1
	if m.Closed() {
		segs = n
	}
	best, bestDist, bestProj := -1, 0., p
	for i := 0; i < segs; i++ {
		a, b := m.Points[i], m.Points[(i+1)%n]
		proj := projectOnSegment(p, a, b)
		if d := proj.Dist(p); best == -1 || d < bestDist {
			best, bestDist, bestProj = i, d, proj
		}
	}
	return best, bestProj
}

func projectOnSegment(p, a, b annogeom.Point) annogeom.Point {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return a
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = max(0, min(1, t))
	return annogeom.Pt(a.X+t*ab.X, a.Y+t*ab.Y)
}

func (m *MultiPointMarker) GetState() MarkerState {
	s := &PolygonState{
		BaseState: m.baseState(m.TypeName()),
		Points:    append([]annogeom.Point(nil), m.Points...),
	}
	if m.kind.closed {
		s.FillColor = m.FillColor
	}
	return s
}

func (m *MultiPointMarker) RestoreState(state MarkerState) error {
	s, ok := state.(*PolygonState)
	if !ok {
		return ErrStateMismatch
	}
	m.restoreBase(&s.BaseState)
	m.Points = append([]annogeom.Point(nil), s.Points...)
	if m.kind.closed && s.FillColor != "" {
		m.SetFillColor(s.FillColor)
	}
	m.AdjustVisual()
	return nil
}

func (m *MultiPointMarker) Scale(sx, sy float64) {
	for i, p := range m.Points {
		m.Points[i] = p.Mul(sx, sy)
	}
	m.scaleStroke(sx, sy)
	m.AdjustVisual()
}

func (m *MultiPointMarker) Destroy() {
	m.Base.Destroy()
	m.selector, m.line = nil, nil
}
