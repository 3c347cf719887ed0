// Implements the marker model: the annotation shapes placed over
// a backing image, their visuals, and their serializable states.
//
// Markers are usable without a drawing surface for geometry and
// state work; CreateVisual attaches them to a surface.
package annomarker

import (
	"errors"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/google/uuid"
)

// State is the lifecycle tag of a marker, driven by the manipulation engine.
type State uint8

const (
	StateNew State = iota
	StateCreating
	StateNormal // finished, not selected
	StateSelect
	StateMove
	StateResize
	StateRotate
	StateEdit
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateCreating:
		return "creating"
	case StateNormal:
		return "normal"
	case StateSelect:
		return "select"
	case StateMove:
		return "move"
	case StateResize:
		return "resize"
	case StateRotate:
		return "rotate"
	case StateEdit:
		return "edit"
	default:
		return "<unknown State>"
	}
}

// ErrStateMismatch is returned when restoring a state produced
// by another variant.
var ErrStateMismatch = errors.New("annomarker: state does not match marker variant")

// Marker is implemented by every variant of the model.
type Marker interface {
	// TypeName is the constant serialization discriminator of the variant.
	TypeName() string
	MarkerBase() *Base

	// CreateVisual builds the drawable representation on s.
	// It panics with annosurface.ErrNoSurface if s is nil.
	CreateVisual(s *annosurface.Surface)
	// Container returns the root node of the visual, or nil.
	Container() *annosurface.Group
	// OwnsTarget reports whether the picked node belongs to the marker.
	OwnsTarget(n annosurface.Node) bool

	GetState() MarkerState
	RestoreState(s MarkerState) error

	// Scale multiplies the positional fields by the factors.
	Scale(sx, sy float64)

	// Destroy removes the visual from its surface.
	Destroy()
}

// Base holds the fields and visual bookkeeping shared by all the variants.
type Base struct {
	// ID is a random identifier, kept in the snapshots.
	ID    string
	Notes string
	State State

	StrokeColor     string
	StrokeWidth     float64
	StrokeDasharray string
	Opacity         float64

	surface   *annosurface.Surface
	container *annosurface.Group

	// nodes receiving the stroke and fill attributes
	stroked []annosurface.Node
	filled  []annosurface.Node
}

func newBase() Base {
	return Base{
		ID:          uuid.NewString(),
		StrokeColor: "#ff0000",
		StrokeWidth: 3,
		Opacity:     1,
	}
}

func (b *Base) MarkerBase() *Base { return b }

func (b *Base) Container() *annosurface.Group { return b.container }

// Surface returns the surface the marker is drawn on, or nil.
func (b *Base) Surface() *annosurface.Surface { return b.surface }

func (b *Base) OwnsTarget(n annosurface.Node) bool {
	if b.container == nil || n == nil {
		return false
	}
	return annosurface.Contains(b.container, n)
}

// attach creates the container group on s.
func (b *Base) attach(s *annosurface.Surface) *annosurface.Group {
	if s == nil {
		panic(annosurface.ErrNoSurface)
	}
	if b.container != nil { // rebuild
		b.Destroy()
	}
	b.surface = s
	b.container = annosurface.NewGroup()
	b.stroked, b.filled = nil, nil
	annosurface.SetAttr(b.container, "opacity", b.Opacity)
	s.Root.Append(b.container)
	return b.container
}

func (b *Base) Destroy() {
	if b.container != nil {
		if p := annosurface.Parent(b.container); p != nil {
			p.Remove(b.container)
		}
	}
	b.container, b.surface = nil, nil
	b.stroked, b.filled = nil, nil
}

// addStroked registers n for stroke updates and applies the current style.
func (b *Base) addStroked(n annosurface.Node) {
	b.stroked = append(b.stroked, n)
	annosurface.SetAttr(n, "fill", "none")
	b.applyStroke(n)
}

func (b *Base) applyStroke(n annosurface.Node) {
	annosurface.SetAttr(n, "stroke", b.StrokeColor)
	annosurface.SetAttr(n, "stroke-width", b.StrokeWidth)
	annosurface.SetAttr(n, "stroke-dasharray", b.StrokeDasharray)
}

func (b *Base) addFilled(n annosurface.Node, color string) {
	b.filled = append(b.filled, n)
	annosurface.SetAttr(n, "fill", color)
}

func (b *Base) SetStrokeColor(color string) {
	b.StrokeColor = color
	for _, n := range b.stroked {
		annosurface.SetAttr(n, "stroke", color)
	}
}

func (b *Base) SetStrokeWidth(width float64) {
	b.StrokeWidth = width
	for _, n := range b.stroked {
		annosurface.SetAttr(n, "stroke-width", width)
	}
}

func (b *Base) SetStrokeDasharray(dashes string) {
	b.StrokeDasharray = dashes
	for _, n := range b.stroked {
		annosurface.SetAttr(n, "stroke-dasharray", dashes)
	}
}

func (b *Base) SetOpacity(opacity float64) {
	b.Opacity = opacity
	if b.container != nil {
		annosurface.SetAttr(b.container, "opacity", opacity)
	}
}

func (b *Base) setFill(color string) {
	for _, n := range b.filled {
		annosurface.SetAttr(n, "fill", color)
	}
}

func (b *Base) baseState(typeName string) BaseState {
	return BaseState{
		TypeName:        typeName,
		ID:              b.ID,
		Notes:           b.Notes,
		StrokeColor:     b.StrokeColor,
		StrokeWidth:     b.StrokeWidth,
		StrokeDasharray: b.StrokeDasharray,
		Opacity:         b.Opacity,
	}
}

func (b *Base) restoreBase(s *BaseState) {
	// a restored marker is finished
	if b.State == StateNew || b.State == StateCreating {
		b.State = StateNormal
	}
	if s.ID != "" {
		b.ID = s.ID
	}
	b.Notes = s.Notes
	b.SetStrokeColor(s.StrokeColor)
	b.SetStrokeWidth(s.StrokeWidth)
	b.SetStrokeDasharray(s.StrokeDasharray)
	b.SetOpacity(s.Opacity)
}

// scaleStroke applies the average factor to the line thickness.
func (b *Base) scaleStroke(sx, sy float64) {
	b.SetStrokeWidth(b.StrokeWidth * (sx + sy) / 2)
}

// Bounds returns the document space bounding box of a marker,
// rotation included.
func Bounds(m Marker) annogeom.Rect {
	switch m := m.(type) {
	case BoxMarker:
		box := m.Box()
		cm := box.Placement.ContainerMatrix()
		corners := []annogeom.Point{
			{X: box.Left, Y: box.Top}, {X: box.Left + box.Width, Y: box.Top},
			{X: box.Left, Y: box.Top + box.Height}, {X: box.Left + box.Width, Y: box.Top + box.Height},
		}
		for i, p := range corners {
			corners[i] = cm.Apply(p)
		}
		return pointsBounds(corners)
	case PointsMarker:
		return pointsBounds(m.PointList())
	}
	return annogeom.Rect{}
}

func pointsBounds(pts []annogeom.Point) annogeom.Rect {
	if len(pts) == 0 {
		return annogeom.Rect{}
	}
	r := annogeom.Rect{Left: pts[0].X, Top: pts[0].Y}
	for _, p := range pts[1:] {
		r = unionPoint(r, p)
	}
	return r
}

func unionPoint(r annogeom.Rect, p annogeom.Point) annogeom.Rect {
	minX, minY := min(r.Left, p.X), min(r.Top, p.Y)
	maxX, maxY := max(r.Right(), p.X), max(r.Bottom(), p.Y)
	return annogeom.Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}
