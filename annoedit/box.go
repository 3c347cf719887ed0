package annoedit

import (
	"context"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annosurface"
)

// rotatorOffset is the distance between the top edge of a box
// and its rotate grip.
const rotatorOffset = 30

// BoxEditor manipulates the box variants: eight resize grips and a
// rotate grip, all turning with the box.
// Text markers may also be edited, and callouts get a grip moving
// their tip.
type BoxEditor struct {
	editorBase
	box  annomarker.BoxMarker
	text *annomarker.TextMarker // text variants only

	resizers []*annogrip.Grip // in annogrip.Locations order
	rotator  *annogrip.Grip
	tip      *annogrip.Grip // callouts only
	frame    *annosurface.Rect

	active      *annogrip.Grip
	startLeft   float64
	startTop    float64
	startRect   annogeom.Rect
	startMatrix annogeom.Matrix
	startTip    annogeom.Point
}

func newBoxEditor(a *Area, m annomarker.BoxMarker) *BoxEditor {
	e := &BoxEditor{box: m}
	e.init(a, e, m)
	e.text, _ = m.(*annomarker.TextMarker)

	e.frame = annosurface.NewRect(0, 0, 0, 0)
	annosurface.SetAttr(e.frame, "fill", "transparent")
	annosurface.SetAttr(e.frame, "stroke", "#853f3f")
	annosurface.SetAttr(e.frame, "stroke-width", 1)
	annosurface.SetAttr(e.frame, "stroke-dasharray", "3, 2")
	e.frame.NoPointerEvents = true
	e.controls.Append(e.frame)

	for _, loc := range annogrip.Locations {
		g := annogrip.NewResizeGrip(loc, e.gripSize())
		e.resizers = append(e.resizers, g)
		e.controls.Append(g.Visual())
	}
	e.rotator = annogrip.NewRotateGrip(e.gripSize())
	e.controls.Append(e.rotator.Visual())
	if e.text != nil && e.text.IsCallout() {
		e.tip = annogrip.NewPointGrip(0, e.gripSize())
		e.controls.Append(e.tip.Visual())
	}
	e.adjustControls()
	return e
}

// IsEditingText reports whether a text marker is in edit state.
func (e *BoxEditor) IsEditingText() bool {
	return e.text != nil && e.State() == annomarker.StateEdit
}

func (e *BoxEditor) grips() []*annogrip.Grip {
	return append([]*annogrip.Grip{e.rotator, e.tip}, e.resizers...)
}

// adjustControls follows the box geometry.
func (e *BoxEditor) adjustControls() {
	b := e.box.Box()
	r := b.Rect()
	e.frame.X, e.frame.Y, e.frame.Width, e.frame.Height = r.Left, r.Top, r.Width, r.Height
	for _, g := range e.resizers {
		g.MoveTo(g.Location.Position(r))
	}
	e.rotator.MoveTo(annogeom.Pt(r.Left+r.Width/2, r.Top-rotatorOffset))
	if e.tip != nil {
		e.tip.MoveTo(annogeom.Pt(r.Left, r.Top).Add(e.text.TipPosition))
	}
	rot := b.Placement.Rotation
	annosurface.SetTransforms(e.controls, annogeom.Rotation(rot.Angle, rot.CX, rot.CY))
}

func (e *BoxEditor) update() {
	e.box.SetSize()
	e.adjustControls()
}

func (e *BoxEditor) pickControl(p annogeom.Point) annosurface.Node {
	if e.controls.Hidden {
		return nil
	}
	if g := gripAt(e.box.Box().UnrotatePoint(p), e.grips()...); g != nil {
		return g.Visual()
	}
	return nil
}

func (e *BoxEditor) PointerDown(p annogeom.Point, target annosurface.Node) {
	b := e.box.Box()
	e.begin(p)
	switch e.State() {
	case annomarker.StateNew:
		e.startRect = b.Rect()
		e.setState(annomarker.StateCreating)
		if e.text != nil {
			b.MoveVisual(p)
		} else {
			b.SetRect(annogeom.Rect{Left: p.X, Top: p.Y})
		}
		e.update()
		return
	case annomarker.StateEdit:
		return
	}

	e.startLeft, e.startTop = b.Left, b.Top
	e.startRect = b.Rect()
	e.startMatrix = b.Placement.ContainerMatrix()
	e.active = gripFor(target, e.grips()...)
	switch {
	case e.active == nil:
		e.setState(annomarker.StateMove)
	case e.active == e.rotator:
		e.setState(annomarker.StateRotate)
	case e.active == e.tip:
		e.startTip = e.text.TipPosition
		e.setState(annomarker.StateResize)
	default:
		e.setState(annomarker.StateResize)
	}
}

func (e *BoxEditor) PointerMove(p annogeom.Point) {
	b := e.box.Box()
	switch e.State() {
	case annomarker.StateCreating:
		e.track(p)
		if e.text != nil {
			b.MoveVisual(p)
		} else {
			b.SetRect(annogeom.Rect{
				Left: e.startPoint.X, Top: e.startPoint.Y,
				Width: p.X - e.startPoint.X, Height: p.Y - e.startPoint.Y,
			}.Normalize())
		}
	case annomarker.StateMove:
		d := e.track(p)
		b.MoveVisual(annogeom.Pt(e.startLeft+d.X, e.startTop+d.Y))
	case annomarker.StateRotate:
		e.track(p)
		b.Rotate(p)
	case annomarker.StateResize:
		d := e.track(p)
		if e.active == e.tip {
			e.text.SetTipPosition(b.UnrotatePoint(p).Sub(annogeom.Pt(b.Left, b.Top)))
			break
		}
		e.resize(d)
	default:
		return
	}
	e.update()
}

// resize applies the deltas d, in document space, to the box
// as it was at the start of the press.
func (e *BoxEditor) resize(d annogeom.Point) {
	b := e.box.Box()
	local := d
	if inv, ok := e.startMatrix.Invert(); ok {
		local = inv.ApplyVector(d)
	}
	r := Resize(e.startRect, e.active.Location, local.X, local.Y, e.area.modifiers.Shift)
	b.SetRect(r)
	b.Recenter(e.startMatrix)
}

func (e *BoxEditor) PointerUp(p annogeom.Point) {
	b := e.box.Box()
	switch e.State() {
	case annomarker.StateCreating:
		if e.isClick(p) {
			size := annogeom.Size{Width: e.startRect.Width, Height: e.startRect.Height}
			if size.Width <= 0 || size.Height <= 0 {
				size = annogeom.Size{Width: e.area.Settings.DefaultBoxWidth, Height: e.area.Settings.DefaultBoxHeight}
			}
			b.SetRect(annogeom.Rect{Left: e.startPoint.X, Top: e.startPoint.Y, Width: size.Width, Height: size.Height})
		}
		if e.tip != nil {
			e.text.TipPosition = annogeom.Pt(b.Width/4, b.Height+rotatorOffset)
		}
		e.update()
		e.Select()
		e.area.created(e)
	case annomarker.StateMove:
		if e.text != nil && e.isLongPress() {
			b.MoveVisual(annogeom.Pt(e.startLeft, e.startTop))
			e.update()
			e.startEdit()
			return
		}
		e.finishManipulation()
	case annomarker.StateResize, annomarker.StateRotate:
		e.finishManipulation()
	}
}

func (e *BoxEditor) finishManipulation() {
	moved := e.travel > 0
	e.active = nil
	e.setState(annomarker.StateSelect)
	if moved {
		e.area.changed(e)
	}
}

func (e *BoxEditor) isLongPress() bool {
	s := e.area.Settings
	return e.area.now().Sub(e.pressedAt) > s.LongPressDelay && e.travel < s.LongPressTolerance
}

func (e *BoxEditor) DoubleClick(p annogeom.Point, target annosurface.Node) {
	if e.text == nil || e.State() != annomarker.StateSelect {
		return
	}
	if gripFor(target, e.grips()...) != nil {
		return
	}
	e.startEdit()
}

func (e *BoxEditor) startEdit() {
	e.setState(annomarker.StateEdit)
	e.showControls(false)
	e.area.textEdit(e, e.text.Text)
}

// commitText ends the edit state, replacing the text.
func (e *BoxEditor) commitText(ctx context.Context, text string) error {
	if !e.IsEditingText() {
		return nil
	}
	changed := text != e.text.Text
	err := e.text.SetText(ctx, text)
	e.update()
	e.Select()
	if changed {
		e.area.changed(e)
	}
	return err
}

func (e *BoxEditor) blurText() {
	if e.IsEditingText() {
		e.Select()
	}
}

func (e *BoxEditor) Select() {
	e.editorBase.Select()
	e.adjustControls()
}

func (e *BoxEditor) Nudge(d annogeom.Point) {
	b := e.box.Box()
	b.MoveVisual(annogeom.Pt(b.Left+d.X, b.Top+d.Y))
	e.update()
}
