// Implements the manipulation engine: the markers of an annotation
// are created, selected, moved, resized, rotated and edited through
// the pointer events forwarded by the host to an Area.
//
// An Area is not safe for concurrent use: events are expected from a
// single event loop.
package annoedit

import (
	"context"
	"time"

	"github.com/benoitkugler/okmarker/annoconfig"
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/benoitkugler/okmarker/annostate"
)

// Modifiers are the keyboard modifiers held during a manipulation.
type Modifiers struct {
	// Shift locks the aspect ratio of resized boxes.
	Shift bool
}

// Area owns the markers drawn over one backing image, and at most one
// current editor.
type Area struct {
	Surface  *annosurface.Surface
	Settings annoconfig.Editor
	Registry annomarker.Registry
	// Retry bounds the wait for the text layout and image payloads
	// of the markers created or restored by the area.
	Retry annomarker.Retry

	// Now is the clock used to detect long presses.
	Now func() time.Time

	// Host notifications, called with the editor concerned.
	OnMarkerCreate   func(Editor)
	OnMarkerChange   func(Editor)
	OnMarkerSelect   func(Editor)
	OnMarkerDeselect func(Editor)
	// OnTextEdit is called when a text marker enters edit state, with
	// its current text. The host ends the edit with CommitText or BlurText.
	OnTextEdit func(e Editor, text string)

	editors   []Editor
	current   Editor
	modifiers Modifiers

	// overlay holds the grips, above every marker
	overlay *annosurface.Group
}

// NewArea returns an empty area drawing on s.
// With a nil surface, only Capture may be used; creating or
// restoring markers panics with annosurface.ErrNoSurface.
func NewArea(s *annosurface.Surface, settings annoconfig.Editor) *Area {
	a := &Area{
		Surface:  s,
		Settings: settings,
		Registry: annomarker.DefaultRegistry,
		Retry:    annomarker.DefaultRetry,
		Now:      time.Now,
		overlay:  annosurface.NewGroup(),
	}
	if s != nil {
		s.Root.Append(a.overlay)
	}
	return a
}

// NewAreaFromSettings is NewArea with the editor settings and the
// retry budget of a loaded configuration.
func NewAreaFromSettings(s *annosurface.Surface, settings annoconfig.Settings) *Area {
	a := NewArea(s, settings.Editor)
	a.Retry = annomarker.Retry{Attempts: settings.Retry.Attempts, Delay: settings.Retry.Delay}
	return a
}

func (a *Area) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Area) addControls(g *annosurface.Group) { a.overlay.Append(g) }

// raiseOverlay keeps the grips above the markers.
func (a *Area) raiseOverlay() {
	if a.Surface != nil {
		a.Surface.Root.Append(a.overlay)
	}
}

func (a *Area) created(e Editor) {
	annolog.Logger().Debug().Str("typeName", e.Marker().TypeName()).Msg("marker created")
	if a.OnMarkerCreate != nil {
		a.OnMarkerCreate(e)
	}
	if a.OnMarkerSelect != nil {
		a.OnMarkerSelect(e)
	}
}

func (a *Area) changed(e Editor) {
	if a.OnMarkerChange != nil {
		a.OnMarkerChange(e)
	}
}

func (a *Area) textEdit(e Editor, text string) {
	if a.OnTextEdit != nil {
		a.OnTextEdit(e, text)
	}
}

// Editors returns the editors of the markers, in drawing order.
func (a *Area) Editors() []Editor { return a.editors }

// Markers returns the markers, in drawing order.
func (a *Area) Markers() []annomarker.Marker {
	out := make([]annomarker.Marker, len(a.editors))
	for i, e := range a.editors {
		out[i] = e.Marker()
	}
	return out
}

// Current returns the selected editor, or nil.
func (a *Area) Current() Editor { return a.current }

func (a *Area) SetModifiers(m Modifiers) { a.modifiers = m }

func (a *Area) newEditor(m annomarker.Marker) Editor {
	switch m := m.(type) {
	case annomarker.BoxMarker:
		return newBoxEditor(a, m)
	case *annomarker.LinearMarker:
		return newLinearEditor(a, m)
	case *annomarker.MultiPointMarker:
		if m.Closable() {
			return newPolygonEditor(a, m)
		}
		return newFreehandEditor(a, m)
	}
	return nil
}

func (a *Area) applyRetry(m annomarker.Marker) {
	switch m := m.(type) {
	case *annomarker.TextMarker:
		m.Retry = a.Retry
	case *annomarker.CustomImageMarker:
		m.Retry = a.Retry
	}
}

// applyDefaults styles a new marker with the configured colors.
func (a *Area) applyDefaults(m annomarker.Marker) {
	a.applyRetry(m)
	s := a.Settings
	b := m.MarkerBase()
	switch m := m.(type) {
	case *annomarker.ShapeMarker:
		if !m.Filled() {
			b.StrokeColor, b.StrokeWidth = s.StrokeColor, s.StrokeWidth
		} else if m.TypeName() == "EllipseMarker" {
			m.FillColor = s.FillColor
		}
	case *annomarker.TextMarker:
		if !m.IsCallout() {
			m.Color = s.StrokeColor
		}
		m.FontFamily, m.FontSize = s.FontFamily, s.FontSize
	case *annomarker.CustomImageMarker:
	default:
		b.StrokeColor, b.StrokeWidth = s.StrokeColor, s.StrokeWidth
	}
}

// CreateMarker deselects the current marker and arms a new marker of
// the given variant: the next press on the area starts drawing it.
func (a *Area) CreateMarker(typeName string) (Editor, error) {
	m, err := a.Registry.New(typeName)
	if err != nil {
		return nil, err
	}
	a.Deselect()
	a.applyDefaults(m)
	m.CreateVisual(a.Surface)
	if t, ok := m.(*annomarker.TextMarker); ok && t.TextSize() != (annogeom.Size{}) {
		t.FitToText()
	}
	e := a.newEditor(m)
	a.editors = append(a.editors, e)
	a.raiseOverlay()
	a.current = e
	return e, nil
}

// AddMarker adds an already built marker, drawn and not selected.
func (a *Area) AddMarker(m annomarker.Marker) Editor {
	if m.Container() == nil {
		m.CreateVisual(a.Surface)
	}
	if b := m.MarkerBase(); b.State == annomarker.StateNew || b.State == annomarker.StateCreating {
		b.State = annomarker.StateNormal
	}
	e := a.newEditor(m)
	a.editors = append(a.editors, e)
	a.raiseOverlay()
	return e
}

func (a *Area) editorOf(m annomarker.Marker) (int, Editor) {
	for i, e := range a.editors {
		if e.Marker() == m {
			return i, e
		}
	}
	return -1, nil
}

// Delete removes m from the area.
func (a *Area) Delete(m annomarker.Marker) {
	i, e := a.editorOf(m)
	if e == nil {
		return
	}
	if e == a.current {
		a.Deselect()
		// a marker under construction may have been discarded
		if i, _ = a.editorOf(m); i < 0 {
			return
		}
	}
	e.Dispose()
	a.editors = append(a.editors[:i], a.editors[i+1:]...)
}

// SelectMarker makes m the current marker. It reports false if m
// does not belong to the area.
func (a *Area) SelectMarker(m annomarker.Marker) bool {
	_, e := a.editorOf(m)
	if e == nil {
		return false
	}
	a.selectEditor(e)
	return true
}

func (a *Area) selectEditor(e Editor) {
	if a.current == e {
		return
	}
	a.Deselect()
	a.current = e
	e.Select()
	if a.OnMarkerSelect != nil {
		a.OnMarkerSelect(e)
	}
}

// Deselect ends the manipulation of the current marker.
// A marker armed by CreateMarker and never drawn is removed, as is a
// marker abandoned under construction with too few points.
func (a *Area) Deselect() {
	e := a.current
	if e == nil {
		return
	}
	a.current = nil
	discard := e.State() == annomarker.StateNew
	if e.State() == annomarker.StateCreating {
		discard = !e.abandonCreation()
	}
	if discard {
		e.Dispose()
		if i, _ := a.editorOf(e.Marker()); i >= 0 {
			a.editors = append(a.editors[:i], a.editors[i+1:]...)
		}
		return
	}
	e.Deselect()
	if a.OnMarkerDeselect != nil {
		a.OnMarkerDeselect(e)
	}
}

// Nudge moves the selected marker by (dx, dy).
func (a *Area) Nudge(dx, dy float64) {
	e := a.current
	if e == nil || e.State() != annomarker.StateSelect {
		return
	}
	e.Nudge(annogeom.Pt(dx, dy))
	a.changed(e)
}

// pick returns the node under p: a grip of the current editor,
// or the container of the topmost marker touched.
func (a *Area) pick(p annogeom.Point) annosurface.Node {
	if a.current != nil {
		if n := a.current.pickControl(p); n != nil {
			return n
		}
	}
	tol := a.Settings.GripSize / 2
	for i := len(a.editors) - 1; i >= 0; i-- {
		m := a.editors[i].Marker()
		if m.Container() != nil && annomarker.HitTest(m, p, tol) {
			return m.Container()
		}
	}
	return nil
}

// PointerDown handles a press at p. target is the node picked by the
// host; when nil, the area picks geometrically.
func (a *Area) PointerDown(p annogeom.Point, target annosurface.Node) {
	if target == nil {
		target = a.pick(p)
	}
	if e := a.current; e != nil {
		switch {
		case e.State() == annomarker.StateNew, e.State() == annomarker.StateCreating, e.OwnsTarget(target):
			e.PointerDown(p, target)
			return
		}
	}
	e := a.editorFor(target)
	if e == nil {
		a.Deselect()
		return
	}
	a.selectEditor(e)
	e.PointerDown(p, target)
}

func (a *Area) editorFor(target annosurface.Node) Editor {
	if target == nil {
		return nil
	}
	for i := len(a.editors) - 1; i >= 0; i-- {
		if a.editors[i].OwnsTarget(target) {
			return a.editors[i]
		}
	}
	return nil
}

func (a *Area) PointerMove(p annogeom.Point) {
	if a.current != nil {
		a.current.PointerMove(p)
	}
}

func (a *Area) PointerUp(p annogeom.Point) {
	if a.current != nil {
		a.current.PointerUp(p)
	}
}

func (a *Area) DoubleClick(p annogeom.Point, target annosurface.Node) {
	if target == nil {
		target = a.pick(p)
	}
	if e := a.current; e != nil && e.OwnsTarget(target) {
		e.DoubleClick(p, target)
	}
}

// CommitText ends the edition of the current text marker,
// replacing its content.
func (a *Area) CommitText(ctx context.Context, text string) error {
	if e, ok := a.current.(*BoxEditor); ok {
		return e.commitText(ctx, text)
	}
	return nil
}

// BlurText ends the edition of the current text marker,
// keeping its content.
func (a *Area) BlurText() {
	if e, ok := a.current.(*BoxEditor); ok {
		e.blurText()
	}
}

// Clear removes every marker.
func (a *Area) Clear() {
	a.Deselect()
	for _, e := range a.editors {
		e.Dispose()
	}
	a.editors = nil
}

func (a *Area) size() (w, h float64) {
	if a.Surface == nil {
		return 0, 0
	}
	return a.Surface.Width, a.Surface.Height
}

// Capture returns the snapshot of the finished markers.
func (a *Area) Capture() *annostate.AnnotationState {
	w, h := a.size()
	out := annostate.New(w, h)
	for _, e := range a.editors {
		switch e.State() {
		case annomarker.StateNew, annomarker.StateCreating:
			continue
		}
		out.Markers = append(out.Markers, e.Marker().GetState())
	}
	return out
}

// Restore replaces the markers by the ones of s, scaled to the
// area size when s was captured on a canvas of another size.
// Entries with an unknown or invalid variant are skipped.
func (a *Area) Restore(s *annostate.AnnotationState) {
	a.Clear()
	w, h := a.size()
	scale := s.Width != 0 && s.Height != 0 && (s.Width != w || s.Height != h)
	for i, st := range s.Markers {
		typeName := st.Common().TypeName
		m, err := a.Registry.New(typeName)
		if err != nil {
			annolog.Logger().Warn().Err(err).Int("index", i).Msg("restore: marker skipped")
			continue
		}
		if err := m.RestoreState(st); err != nil {
			annolog.Logger().Warn().Err(err).Int("index", i).Str("typeName", typeName).Msg("restore: marker skipped")
			continue
		}
		a.applyRetry(m)
		m.CreateVisual(a.Surface)
		if scale {
			m.Scale(w/s.Width, h/s.Height)
		}
		a.AddMarker(m)
	}
}
