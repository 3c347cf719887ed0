package annomarker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownVariant is returned for a type name with no registered variant.
var ErrUnknownVariant = errors.New("annomarker: unknown marker variant")

// Factory builds the markers and the empty states of one variant.
type Factory struct {
	NewMarker func() Marker
	// NewState returns an empty state, ready to be decoded into.
	NewState func() MarkerState
}

// Registry maps type names to their variant.
type Registry struct {
	factories map[string]Factory
}

// DefaultRegistry knows every variant of this package.
var DefaultRegistry = Registry{factories: map[string]Factory{
	"FrameMarker":        shapeFactory(NewFrameMarker),
	"CoverMarker":        shapeFactory(NewCoverMarker),
	"HighlightMarker":    shapeFactory(NewHighlightMarker),
	"EllipseMarker":      shapeFactory(NewEllipseMarker),
	"EllipseFrameMarker": shapeFactory(NewEllipseFrameMarker),
	"LineMarker": {
		NewMarker: func() Marker { return NewLineMarker() },
		NewState:  func() MarkerState { return &LinearState{} },
	},
	"MeasurementMarker": {
		NewMarker: func() Marker { return NewMeasurementMarker() },
		NewState:  func() MarkerState { return &LinearState{} },
	},
	"ArrowMarker": {
		NewMarker: func() Marker { return NewArrowMarker() },
		NewState:  func() MarkerState { return &ArrowState{} },
	},
	"PolygonMarker": {
		NewMarker: func() Marker { return NewPolygonMarker() },
		NewState:  func() MarkerState { return &PolygonState{} },
	},
	"FreehandMarker": {
		NewMarker: func() Marker { return NewFreehandMarker() },
		NewState:  func() MarkerState { return &PolygonState{} },
	},
	"TextMarker": {
		NewMarker: func() Marker { return NewTextMarker() },
		NewState:  func() MarkerState { return &TextState{} },
	},
	"CalloutMarker": {
		NewMarker: func() Marker { return NewCalloutMarker() },
		NewState:  func() MarkerState { return &CalloutState{} },
	},
	"CustomImageMarker": {
		NewMarker: func() Marker { return NewCustomImageMarker() },
		NewState:  func() MarkerState { return &CustomImageState{} },
	},
}}

func shapeFactory(fn func() *ShapeMarker) Factory {
	return Factory{
		NewMarker: func() Marker { return fn() },
		NewState:  func() MarkerState { return &ShapeState{} },
	}
}

// Lookup returns the variant registered for typeName.
// Names are case sensitive.
func (r Registry) Lookup(typeName string) (Factory, bool) {
	f, ok := r.factories[typeName]
	return f, ok
}

// New returns a new marker of the given variant.
func (r Registry) New(typeName string) (Marker, error) {
	f, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, typeName)
	}
	return f.NewMarker(), nil
}

// NewState returns an empty state of the given variant.
func (r Registry) NewState(typeName string) (MarkerState, error) {
	f, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, typeName)
	}
	return f.NewState(), nil
}

// FromState builds a marker and restores s into it.
func (r Registry) FromState(s MarkerState) (Marker, error) {
	m, err := r.New(s.Common().TypeName)
	if err != nil {
		return nil, err
	}
	if err := m.RestoreState(s); err != nil {
		return nil, fmt.Errorf("restoring %s: %w", s.Common().TypeName, err)
	}
	return m, nil
}

// TypeNames returns the registered names, sorted.
func (r Registry) TypeNames() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
