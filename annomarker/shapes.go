package annomarker

import (
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// shapeKind describes a box variant drawn as a single outline.
type shapeKind struct {
	typeName string
	outline  func(width, height float64) annopath.Path
	filled   bool
}

func rectangleOutline(w, h float64) annopath.Path { return annopath.Rectangle(w, h) }

func ellipseOutline(w, h float64) annopath.Path {
	return annopath.Ellipse(w/2, h/2, w/2, h/2)
}

var (
	frameKind        = &shapeKind{typeName: "FrameMarker", outline: rectangleOutline}
	coverKind        = &shapeKind{typeName: "CoverMarker", outline: rectangleOutline, filled: true}
	highlightKind    = &shapeKind{typeName: "HighlightMarker", outline: rectangleOutline, filled: true}
	ellipseKind      = &shapeKind{typeName: "EllipseMarker", outline: ellipseOutline, filled: true}
	ellipseFrameKind = &shapeKind{typeName: "EllipseFrameMarker", outline: ellipseOutline}
)

// ShapeMarker is a box variant with a rectangular or elliptic outline.
type ShapeMarker struct {
	RectangularBox
	FillColor string

	kind *shapeKind
	node *annosurface.Path
}

func newShape(kind *shapeKind) *ShapeMarker {
	return &ShapeMarker{RectangularBox: newBox(), kind: kind, FillColor: "transparent"}
}

func NewFrameMarker() *ShapeMarker { return newShape(frameKind) }

// NewCoverMarker returns an opaque rectangle hiding what is below.
func NewCoverMarker() *ShapeMarker {
	m := newShape(coverKind)
	m.StrokeWidth = 0
	m.FillColor = "#000000"
	return m
}

func NewHighlightMarker() *ShapeMarker {
	m := newShape(highlightKind)
	m.StrokeWidth = 0
	m.FillColor = "#ffff00"
	m.Opacity = 0.5
	return m
}

func NewEllipseMarker() *ShapeMarker { return newShape(ellipseKind) }

func NewEllipseFrameMarker() *ShapeMarker { return newShape(ellipseFrameKind) }

func (m *ShapeMarker) TypeName() string { return m.kind.typeName }

// Filled reports whether the variant paints its interior.
func (m *ShapeMarker) Filled() bool { return m.kind.filled }

// Path returns the outline in the visual frame.
func (m *ShapeMarker) Path() annopath.Path {
	return m.kind.outline(m.Width, m.Height)
}

func (m *ShapeMarker) CreateVisual(s *annosurface.Surface) {
	m.node = annosurface.NewPath(m.Path())
	m.attachBox(s, m.node)
	m.addStroked(m.node)
	if m.kind.filled {
		m.addFilled(m.node, m.FillColor)
	}
}

func (m *ShapeMarker) SetSize() {
	m.applyPlacement()
	if m.node != nil {
		m.node.D = m.Path()
	}
}

func (m *ShapeMarker) SetFillColor(color string) {
	m.FillColor = color
	m.setFill(color)
}

func (m *ShapeMarker) GetState() MarkerState {
	s := &ShapeState{RectangularBoxState: m.boxState(m.TypeName())}
	if m.kind.filled {
		s.FillColor = m.FillColor
	}
	return s
}

func (m *ShapeMarker) RestoreState(state MarkerState) error {
	s, ok := state.(*ShapeState)
	if !ok {
		return ErrStateMismatch
	}
	m.restoreBox(&s.RectangularBoxState)
	if m.kind.filled && s.FillColor != "" {
		m.SetFillColor(s.FillColor)
	}
	m.SetSize()
	return nil
}

func (m *ShapeMarker) Scale(sx, sy float64) {
	m.scaleBox(sx, sy)
	m.scaleStroke(sx, sy)
	m.SetSize()
}

func (m *ShapeMarker) Destroy() {
	m.RectangularBox.Destroy()
	m.node = nil
}
