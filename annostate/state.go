// Implements the annotation snapshot: the serializable record of
// every marker and of the canvas size they were drawn on.
package annostate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annomarker"
)

// Version is the format written by this package.
const Version = 3

var ErrInvalidSnapshot = errors.New("annostate: invalid snapshot")

// AnnotationState is the snapshot of an annotation.
type AnnotationState struct {
	Version int     `json:"version"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	Markers []annomarker.MarkerState `json:"markers"`
}

// New returns an empty snapshot for a canvas of the given size.
func New(width, height float64) *AnnotationState {
	return &AnnotationState{Version: Version, Width: width, Height: height}
}

// Clone returns a deep copy of s.
func (s *AnnotationState) Clone() *AnnotationState {
	out := *s
	out.Markers = make([]annomarker.MarkerState, len(s.Markers))
	for i, m := range s.Markers {
		out.Markers[i] = m.Clone()
	}
	return &out
}

// UnknownState preserves an entry whose type name has no
// registered variant, so that it is written back unchanged.
type UnknownState struct {
	annomarker.BaseState
	Raw json.RawMessage
}

func (s *UnknownState) Clone() annomarker.MarkerState {
	c := *s
	c.Raw = append(json.RawMessage(nil), s.Raw...)
	return &c
}

func (s *UnknownState) MarshalJSON() ([]byte, error) { return s.Raw, nil }

type rawSnapshot struct {
	Version int               `json:"version"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Markers []json.RawMessage `json:"markers"`
}

// UnmarshalJSON dispatches every marker entry on its typeName.
func (s *AnnotationState) UnmarshalJSON(data []byte) error {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Version, s.Width, s.Height = raw.Version, raw.Width, raw.Height
	s.Markers = make([]annomarker.MarkerState, 0, len(raw.Markers))
	for i, entry := range raw.Markers {
		st, err := decodeMarker(entry)
		if err != nil {
			return fmt.Errorf("marker %d: %w", i, err)
		}
		s.Markers = append(s.Markers, st)
	}
	return nil
}

func decodeMarker(entry json.RawMessage) (annomarker.MarkerState, error) {
	var base annomarker.BaseState
	if err := json.Unmarshal(entry, &base); err != nil {
		return nil, err
	}
	st, err := annomarker.DefaultRegistry.NewState(base.TypeName)
	if errors.Is(err, annomarker.ErrUnknownVariant) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, entry); err != nil {
			return nil, err
		}
		return &UnknownState{BaseState: base, Raw: compact.Bytes()}, nil
	} else if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entry, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Decode reads a JSON snapshot.
func Decode(r io.Reader) (*AnnotationState, error) {
	var s AnnotationState
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return &s, nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s *AnnotationState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(s)
}

// Load reads the snapshot stored in the file at path.
func Load(path string) (*AnnotationState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to the file at path.
func Save(path string, s *AnnotationState) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Rescale returns a copy of s fitting a canvas of the given size:
// every marker is scaled by (width/s.Width, height/s.Height).
// The copy is unscaled when the sizes are equal or s has no size.
// Entries of unknown variants are copied unchanged.
func Rescale(s *AnnotationState, width, height float64) *AnnotationState {
	out := s.Clone()
	if (s.Width == width && s.Height == height) || s.Width == 0 || s.Height == 0 {
		return out
	}
	sx, sy := width/s.Width, height/s.Height
	for i, st := range out.Markers {
		m, err := annomarker.DefaultRegistry.FromState(st)
		if err != nil {
			annolog.Logger().Debug().Err(err).Str("typeName", st.Common().TypeName).Msg("rescale: kept unscaled")
			continue
		}
		m.Scale(sx, sy)
		out.Markers[i] = m.GetState()
	}
	out.Width, out.Height = width, height
	return out
}

// TypeNames returns the type name of each marker, in order.
func (s *AnnotationState) TypeNames() []string {
	out := make([]string, len(s.Markers))
	for i, m := range s.Markers {
		out[i] = m.Common().TypeName
	}
	return out
}
