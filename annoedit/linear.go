package annoedit

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annosurface"
)

// LinearEditor manipulates the line, arrow and measurement
// markers: one grip per end.
type LinearEditor struct {
	editorBase
	line *annomarker.LinearMarker

	ends   [2]*annogrip.Grip
	active int // index of the dragged end, or -1

	start [2]annogeom.Point
}

func newLinearEditor(a *Area, m *annomarker.LinearMarker) *LinearEditor {
	e := &LinearEditor{line: m, active: -1}
	e.init(a, e, m)
	for i := range e.ends {
		e.ends[i] = annogrip.NewPointGrip(i, e.gripSize())
		e.controls.Append(e.ends[i].Visual())
	}
	e.adjustControls()
	return e
}

func (e *LinearEditor) adjustControls() {
	e.ends[0].MoveTo(e.line.P1())
	e.ends[1].MoveTo(e.line.P2())
}

func (e *LinearEditor) setEndpoints(p1, p2 annogeom.Point) {
	e.line.SetEndpoints(p1, p2)
	e.adjustControls()
}

func (e *LinearEditor) pickControl(p annogeom.Point) annosurface.Node {
	if e.controls.Hidden {
		return nil
	}
	if g := gripAt(p, e.ends[:]...); g != nil {
		return g.Visual()
	}
	return nil
}

func (e *LinearEditor) PointerDown(p annogeom.Point, target annosurface.Node) {
	e.begin(p)
	e.start = [2]annogeom.Point{e.line.P1(), e.line.P2()}
	if e.State() == annomarker.StateNew {
		e.setState(annomarker.StateCreating)
		e.setEndpoints(p, p)
		return
	}
	e.active = -1
	if g := gripFor(target, e.ends[:]...); g != nil {
		e.active = g.Index
		e.setState(annomarker.StateResize)
	} else {
		e.setState(annomarker.StateMove)
	}
}

func (e *LinearEditor) PointerMove(p annogeom.Point) {
	switch e.State() {
	case annomarker.StateCreating:
		e.track(p)
		e.setEndpoints(e.startPoint, p)
	case annomarker.StateMove:
		d := e.track(p)
		e.setEndpoints(e.start[0].Add(d), e.start[1].Add(d))
	case annomarker.StateResize:
		e.track(p)
		ends := e.start
		ends[e.active] = p
		e.setEndpoints(ends[0], ends[1])
	}
}

func (e *LinearEditor) PointerUp(p annogeom.Point) {
	switch e.State() {
	case annomarker.StateCreating:
		if e.isClick(p) {
			l := e.area.Settings.DefaultLineLength
			e.setEndpoints(e.startPoint, e.startPoint.Add(annogeom.Pt(l, 0)))
		}
		e.Select()
		e.area.created(e)
	case annomarker.StateMove, annomarker.StateResize:
		e.active = -1
		e.setState(annomarker.StateSelect)
		if e.travel > 0 {
			e.area.changed(e)
		}
	}
}

func (e *LinearEditor) Select() {
	e.editorBase.Select()
	e.adjustControls()
}

func (e *LinearEditor) Nudge(d annogeom.Point) {
	e.setEndpoints(e.line.P1().Add(d), e.line.P2().Add(d))
}
