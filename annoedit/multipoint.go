package annoedit

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annosurface"
)

// pointsEditor holds what the polygon and freehand editors share:
// one grip per point once selected, a press on a grip drags that
// point, a press elsewhere on the marker moves it.
type pointsEditor struct {
	editorBase
	pts *annomarker.MultiPointMarker

	grips  []*annogrip.Grip
	active int // index of the edited point, or -1

	start []annogeom.Point
}

func (e *pointsEditor) initPoints(a *Area, self Editor, m *annomarker.MultiPointMarker) {
	e.pts, e.active = m, -1
	e.init(a, self, m)
	e.rebuildGrips()
}

// rebuildGrips creates one grip per point.
func (e *pointsEditor) rebuildGrips() {
	for _, g := range e.grips {
		e.controls.Remove(g.Visual())
	}
	e.grips = e.grips[:0]
	creating := e.State() == annomarker.StateCreating
	for i, p := range e.pts.Points {
		g := annogrip.NewPointGrip(i, e.gripSize())
		g.MoveTo(p)
		// only the first point may be picked, to close a polygon
		g.SetPickable(!creating || i == 0)
		e.grips = append(e.grips, g)
		e.controls.Append(g.Visual())
	}
}

func (e *pointsEditor) adjustControls() {
	for i, g := range e.grips {
		g.MoveTo(e.pts.Points[i])
	}
}

func (e *pointsEditor) pickControl(p annogeom.Point) annosurface.Node {
	if e.controls.Hidden {
		return nil
	}
	if g := gripAt(p, e.grips...); g != nil {
		return g.Visual()
	}
	return nil
}

// press starts a move of the marker or, on a grip, the drag of a point.
func (e *pointsEditor) press(target annosurface.Node) {
	e.start = append(e.start[:0], e.pts.Points...)
	e.active = -1
	if g := gripFor(target, e.grips...); g != nil {
		e.active = g.Index
		e.setState(annomarker.StateResize)
	} else {
		e.setState(annomarker.StateMove)
	}
}

// manipulate handles a move while a selected marker is pressed.
func (e *pointsEditor) manipulate(p annogeom.Point) {
	switch e.State() {
	case annomarker.StateMove:
		d := e.track(p)
		e.pts.MovePoints(e.start, d)
		e.adjustControls()
	case annomarker.StateResize:
		e.track(p)
		e.pts.SetPoint(e.active, p)
		e.adjustControls()
	}
}

// release ends a move or a point drag.
func (e *pointsEditor) release() {
	switch e.State() {
	case annomarker.StateMove, annomarker.StateResize:
		e.active = -1
		e.setState(annomarker.StateSelect)
		if e.travel > 0 {
			e.area.changed(e.self)
		}
	}
}

// DoubleClick deletes the point of a grip, or inserts a point
// on the outline. The variant minimum of points is kept.
func (e *pointsEditor) DoubleClick(p annogeom.Point, target annosurface.Node) {
	if e.State() != annomarker.StateSelect {
		return
	}
	if g := gripFor(target, e.grips...); g != nil {
		if e.pts.DeletePoint(g.Index) {
			e.rebuildGrips()
			e.area.changed(e.self)
		}
		return
	}
	if i, _ := e.pts.NearestSegment(p); i >= 0 {
		e.pts.InsertPoint(i+1, p)
		e.rebuildGrips()
		e.area.changed(e.self)
	}
}

func (e *pointsEditor) Select() {
	e.editorBase.Select()
	e.adjustControls()
}

func (e *pointsEditor) Nudge(d annogeom.Point) {
	e.pts.MovePoints(append([]annogeom.Point(nil), e.pts.Points...), d)
	e.adjustControls()
}

// PolygonEditor manipulates the polygon marker: one grip per point.
//
// While the polygon is built, the last point follows the pointer and
// each press appends a new point; a press on the first grip closes
// the polygon.
type PolygonEditor struct {
	pointsEditor
}

func newPolygonEditor(a *Area, m *annomarker.MultiPointMarker) *PolygonEditor {
	e := &PolygonEditor{}
	e.initPoints(a, e, m)
	return e
}

func (e *PolygonEditor) PointerDown(p annogeom.Point, target annosurface.Node) {
	e.begin(p)
	switch e.State() {
	case annomarker.StateNew:
		e.setState(annomarker.StateCreating)
		e.pts.Points = []annogeom.Point{p, p}
		e.pts.AdjustVisual()
		e.active = 1
		e.rebuildGrips()
		e.showControls(true)
		return
	case annomarker.StateCreating:
		if len(e.grips) > 0 && e.grips[0].OwnsTarget(target) {
			e.finishCreation()
			return
		}
		e.pts.AddPoint(p)
		e.active = len(e.pts.Points) - 1
		e.rebuildGrips()
		return
	}
	e.press(target)
}

// finishCreation closes the polygon, dropping the points
// duplicated while building it.
func (e *PolygonEditor) finishCreation() {
	pts := e.pts.Points
	tol := e.gripSize()
	if n := len(pts); n > 1 && e.active == n-1 {
		last := pts[n-1]
		if last.NearWithin(pts[n-2], tol) || last.NearWithin(pts[0], tol) {
			pts = pts[:n-1]
		}
	}
	e.pts.Points = dedup(pts)
	e.active = -1
	e.Select()
	e.pts.AdjustVisual()
	e.rebuildGrips()
	e.area.created(e)
}

// abandonCreation drops the point following the pointer and keeps
// the polygon only if it still has its minimum of points.
func (e *PolygonEditor) abandonCreation() bool {
	if n := len(e.pts.Points); n > 0 {
		e.pts.Points = e.pts.Points[:n-1]
	}
	e.active = -1
	if len(dedup(e.pts.Points)) < e.pts.MinPoints() {
		return false
	}
	e.finishCreation()
	return true
}

// dedup removes the consecutive repeated points.
func dedup(pts []annogeom.Point) []annogeom.Point {
	out := make([]annogeom.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Near(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (e *PolygonEditor) PointerMove(p annogeom.Point) {
	if e.State() == annomarker.StateCreating {
		if e.active >= 0 && e.active < len(e.pts.Points) {
			e.pts.SetPoint(e.active, p)
			e.adjustControls()
		}
		return
	}
	e.manipulate(p)
}

func (e *PolygonEditor) PointerUp(annogeom.Point) { e.release() }

// FreehandEditor manipulates the freehand marker, drawn by
// dragging. Once drawn, it has one grip per point.
type FreehandEditor struct {
	pointsEditor
}

func newFreehandEditor(a *Area, m *annomarker.MultiPointMarker) *FreehandEditor {
	e := &FreehandEditor{}
	e.initPoints(a, e, m)
	return e
}

func (e *FreehandEditor) PointerDown(p annogeom.Point, target annosurface.Node) {
	e.begin(p)
	if e.State() == annomarker.StateNew {
		e.setState(annomarker.StateCreating)
		e.pts.Points = []annogeom.Point{p}
		e.pts.AdjustVisual()
		return
	}
	e.press(target)
}

func (e *FreehandEditor) PointerMove(p annogeom.Point) {
	if e.State() == annomarker.StateCreating {
		e.track(p)
		if pts := e.pts.Points; !pts[len(pts)-1].Near(p) {
			e.pts.AddPoint(p)
		}
		return
	}
	e.manipulate(p)
}

func (e *FreehandEditor) PointerUp(p annogeom.Point) {
	if e.State() != annomarker.StateCreating {
		e.release()
		return
	}
	if e.isClick(p) && e.travel < e.area.Settings.ClickThreshold {
		first := e.pts.Points[0]
		e.pts.Points = []annogeom.Point{first, first.Add(annogeom.Pt(e.area.Settings.DefaultLineLength, 0))}
		e.pts.AdjustVisual()
	}
	e.finishCreation()
}

func (e *FreehandEditor) finishCreation() {
	e.Select()
	e.rebuildGrips()
	e.area.created(e)
}

// abandonCreation keeps the stroke drawn so far if it has
// its minimum of points.
func (e *FreehandEditor) abandonCreation() bool {
	if len(e.pts.Points) < e.pts.MinPoints() {
		return false
	}
	e.finishCreation()
	return true
}
