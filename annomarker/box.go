package annomarker

import (
	"math"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annosurface"
)

// Rotation is a rotation of Angle degrees about (CX, CY).
type Rotation struct {
	Angle, CX, CY float64
}

type Translation struct {
	X, Y float64
}

// Placement holds the two independent transforms of a box marker:
// the rotation applied to the container, positioning it in the
// document, and the translation applied to the visual, in the
// container local frame.
type Placement struct {
	Rotation    Rotation
	Translation Translation
}

// ContainerMatrix maps the marker local frame to the document.
func (p Placement) ContainerMatrix() annogeom.Matrix {
	r := p.Rotation
	return annogeom.Identity.RotateAbout(r.Angle, r.CX, r.CY)
}

func (p Placement) VisualMatrix() annogeom.Matrix {
	return annogeom.Identity.Translate(p.Translation.X, p.Translation.Y)
}

// BoxMarker is implemented by the variants built on a rectangular box.
type BoxMarker interface {
	Marker
	Box() *RectangularBox
	// SetSize updates the visual after a change of the box geometry.
	SetSize()
}

// RectangularBox is the geometry shared by the box variants.
// The rotation is always performed about the center of the
// un-rotated box.
type RectangularBox struct {
	Base
	Left, Top, Width, Height float64
	RotationAngle            float64 // degrees, clockwise

	Placement Placement

	visual annosurface.Node
}

func newBox() RectangularBox {
	return RectangularBox{Base: newBase()}
}

func (b *RectangularBox) Box() *RectangularBox { return b }

func (b *RectangularBox) CenterX() float64 { return b.Left + b.Width/2 }
func (b *RectangularBox) CenterY() float64 { return b.Top + b.Height/2 }

// Rect returns the un-rotated box.
func (b *RectangularBox) Rect() annogeom.Rect {
	return annogeom.Rect{Left: b.Left, Top: b.Top, Width: b.Width, Height: b.Height}
}

// applyPlacement recomputes both transforms from the geometry
// and pushes them to the visual nodes.
func (b *RectangularBox) applyPlacement() {
	b.Placement = Placement{
		Rotation:    Rotation{Angle: b.RotationAngle, CX: b.CenterX(), CY: b.CenterY()},
		Translation: Translation{X: b.Left, Y: b.Top},
	}
	if b.container != nil {
		r := b.Placement.Rotation
		annosurface.SetTransforms(b.container, annogeom.Rotation(r.Angle, r.CX, r.CY))
	}
	if b.visual != nil {
		annosurface.SetTransforms(b.visual, annogeom.Translation(b.Left, b.Top))
	}
}

// RotatePoint maps a point of the marker local frame to the document.
func (b *RectangularBox) RotatePoint(p annogeom.Point) annogeom.Point {
	if b.RotationAngle == 0 {
		return p
	}
	return b.Placement.ContainerMatrix().Apply(p)
}

// UnrotatePoint maps a document point to the marker local frame.
func (b *RectangularBox) UnrotatePoint(p annogeom.Point) annogeom.Point {
	if b.RotationAngle == 0 {
		return p
	}
	inv, ok := b.Placement.ContainerMatrix().Invert()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// MoveVisual moves the top left corner of the box.
func (b *RectangularBox) MoveVisual(p annogeom.Point) {
	b.Left, b.Top = p.X, p.Y
	b.applyPlacement()
}

// SetRect changes the box geometry.
func (b *RectangularBox) SetRect(r annogeom.Rect) {
	b.Left, b.Top, b.Width, b.Height = r.Left, r.Top, r.Width, r.Height
	b.applyPlacement()
}

// Recenter moves the box so that, rotated about its own center, it
// covers the area it covered when transformed by m.
// It is used after a geometry change computed in a frame whose
// rotation pivot is no longer the box center.
func (b *RectangularBox) Recenter(m annogeom.Matrix) {
	c := annogeom.Pt(b.CenterX(), b.CenterY())
	rc := m.Apply(c)
	b.Left += rc.X - c.X
	b.Top += rc.Y - c.Y
	b.applyPlacement()
}

// rotationDeadZone is the horizontal distance to the center under which
// the tangent formula is unstable.
const rotationDeadZone = 0.1

// RotationAngleFor returns the angle putting the top center of the
// box in the direction of p, seen from the box center.
func (b *RectangularBox) RotationAngleFor(p annogeom.Point) float64 {
	dx, dy := p.X-b.CenterX(), p.Y-b.CenterY()
	if math.Abs(dx) > rotationDeadZone {
		return math.Atan(dy/dx)*180/math.Pi + 90*math.Copysign(1, dx)
	}
	if dx == 0 && dy == 0 {
		return b.RotationAngle
	}
	// avoid the flip when crossing the vertical through the center
	return math.Atan2(dx, -dy) * 180 / math.Pi
}

// Rotate turns the box toward p.
func (b *RectangularBox) Rotate(p annogeom.Point) {
	// the pivot must be the current center before the angle changes
	if r := b.Placement.Rotation; r.CX != b.CenterX() || r.CY != b.CenterY() || r.Angle != b.RotationAngle {
		b.Recenter(b.Placement.ContainerMatrix())
	}
	b.RotationAngle = b.RotationAngleFor(p)
	b.applyPlacement()
}

// SetRotationAngle rotates the box about its center.
func (b *RectangularBox) SetRotationAngle(deg float64) {
	b.RotationAngle = deg
	b.applyPlacement()
}

func (b *RectangularBox) boxState(typeName string) RectangularBoxState {
	return RectangularBoxState{
		BaseState:                b.baseState(typeName),
		Left:                     b.Left,
		Top:                      b.Top,
		Width:                    b.Width,
		Height:                   b.Height,
		RotationAngle:            b.RotationAngle,
		VisualTransformMatrix:    b.Placement.VisualMatrix(),
		ContainerTransformMatrix: b.Placement.ContainerMatrix(),
	}
}

func (b *RectangularBox) restoreBox(s *RectangularBoxState) {
	b.restoreBase(&s.BaseState)
	b.Left, b.Top, b.Width, b.Height = s.Left, s.Top, s.Width, s.Height
	b.RotationAngle = s.RotationAngle
	b.applyPlacement()
	// snapshots rotated about a stale pivot keep their visual position
	if cm := s.ContainerTransformMatrix; cm != (annogeom.Matrix{}) && !cm.Near(b.Placement.ContainerMatrix()) {
		b.Recenter(cm)
	}
}

func (b *RectangularBox) scaleBox(sx, sy float64) {
	b.Left *= sx
	b.Top *= sy
	b.Width *= sx
	b.Height *= sy
	b.applyPlacement()
}

// attachBox creates the container and installs visual in it.
func (b *RectangularBox) attachBox(s *annosurface.Surface, visual annosurface.Node) {
	c := b.attach(s)
	b.visual = visual
	c.Append(visual)
	b.applyPlacement()
}

func (b *RectangularBox) Destroy() {
	b.Base.Destroy()
	b.visual = nil
}
