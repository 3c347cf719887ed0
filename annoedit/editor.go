package annoedit

import (
	"time"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annosurface"
)

// Editor drives the manipulation of one marker, through the
// pointer events forwarded by its Area.
//
// The target passed to the pointer methods is the node picked by
// the host, or the result of the Area geometric picking.
type Editor interface {
	Marker() annomarker.Marker
	State() annomarker.State

	PointerDown(p annogeom.Point, target annosurface.Node)
	// PointerMove is called for every move, with or without a pressed button.
	PointerMove(p annogeom.Point)
	PointerUp(p annogeom.Point)
	DoubleClick(p annogeom.Point, target annosurface.Node)

	// OwnsTarget reports whether n is part of the marker or of its grips.
	OwnsTarget(n annosurface.Node) bool

	Select()
	Deselect()
	// Nudge moves the marker by d.
	Nudge(d annogeom.Point)
	// Dispose removes the marker and its grips from the surface.
	Dispose()

	// pickControl returns the grip under p, if any.
	pickControl(p annogeom.Point) annosurface.Node
	// abandonCreation is called when the marker is deselected while
	// still under construction. It reports whether the marker is kept.
	abandonCreation() bool
}

// editorBase holds the bookkeeping shared by the editors.
type editorBase struct {
	area     *Area
	self     Editor
	marker   annomarker.Marker
	controls *annosurface.Group

	startPoint annogeom.Point
	pressedAt  time.Time
	travel     float64 // largest distance to startPoint during the press
}

func (e *editorBase) init(a *Area, self Editor, m annomarker.Marker) {
	e.area, e.self, e.marker = a, self, m
	e.controls = annosurface.NewGroup()
	e.controls.Hidden = true
	a.addControls(e.controls)
}

func (e *editorBase) Marker() annomarker.Marker { return e.marker }

func (e *editorBase) State() annomarker.State { return e.marker.MarkerBase().State }

func (e *editorBase) setState(s annomarker.State) { e.marker.MarkerBase().State = s }

func (e *editorBase) OwnsTarget(n annosurface.Node) bool {
	if n == nil {
		return false
	}
	return e.marker.OwnsTarget(n) || annosurface.Contains(e.controls, n)
}

func (e *editorBase) showControls(visible bool) { e.controls.Hidden = !visible }

// begin starts a press at p.
func (e *editorBase) begin(p annogeom.Point) {
	e.startPoint = p
	e.pressedAt = e.area.now()
	e.travel = 0
}

func (e *editorBase) track(p annogeom.Point) annogeom.Point {
	d := p.Sub(e.startPoint)
	e.travel = max(e.travel, p.Dist(e.startPoint))
	return d
}

// isClick reports whether the press ending at p is a click and not a drag.
func (e *editorBase) isClick(p annogeom.Point) bool {
	d := p.Sub(e.startPoint)
	t := e.area.Settings.ClickThreshold
	return abs(d.X) < t && abs(d.Y) < t
}

func (e *editorBase) gripSize() float64 { return e.area.Settings.GripSize }

// manipulating is true in the states entered by a press on a selected marker.
func (e *editorBase) manipulating() bool {
	switch e.State() {
	case annomarker.StateMove, annomarker.StateResize, annomarker.StateRotate:
		return true
	}
	return false
}

func (e *editorBase) Select() {
	e.setState(annomarker.StateSelect)
	e.showControls(true)
}

func (e *editorBase) Deselect() {
	e.setState(annomarker.StateNormal)
	e.showControls(false)
}

func (e *editorBase) Dispose() {
	if p := annosurface.Parent(e.controls); p != nil {
		p.Remove(e.controls)
	}
	e.marker.Destroy()
}

func (e *editorBase) DoubleClick(annogeom.Point, annosurface.Node) {}

func (e *editorBase) abandonCreation() bool { return true }

// gripFor returns the grip owning target.
func gripFor(target annosurface.Node, grips ...*annogrip.Grip) *annogrip.Grip {
	for _, g := range grips {
		if g != nil && g.OwnsTarget(target) {
			return g
		}
	}
	return nil
}

// gripAt returns the pickable grip containing p.
func gripAt(p annogeom.Point, grips ...*annogrip.Grip) *annogrip.Grip {
	for _, g := range grips {
		if g != nil && g.Pickable() && g.Contains(p) {
			return g
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
