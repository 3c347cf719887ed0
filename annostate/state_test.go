package annostate

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"version": 3,
	"width": 800,
	"height": 600,
	"markers": [
		{"typeName": "FrameMarker", "strokeColor": "#00ff00", "strokeWidth": 4, "opacity": 1,
		 "left": 100, "top": 60, "width": 200, "height": 120, "rotationAngle": 0,
		 "visualTransformMatrix": {"a": 1, "b": 0, "c": 0, "d": 1, "e": 100, "f": 60},
		 "containerTransformMatrix": {"a": 1, "b": 0, "c": 0, "d": 1, "e": 0, "f": 0}},
		{"typeName": "FancyMarker", "sparkles": 12},
		{"typeName": "LineMarker", "strokeColor": "#ff0000", "strokeWidth": 2, "opacity": 1,
		 "x1": 10, "y1": 20, "x2": 30, "y2": 40},
		{"typeName": "PolygonMarker", "strokeWidth": 2, "opacity": 1, "fillColor": "transparent",
		 "points": [{"x": 0, "y": 0}, {"x": 100, "y": 0}, {"x": 100, "y": 50}]}
	]
}`

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Version)
	assert.Equal(t, []string{"FrameMarker", "FancyMarker", "LineMarker", "PolygonMarker"}, s.TypeNames())

	frame, ok := s.Markers[0].(*annomarker.ShapeState)
	require.True(t, ok)
	assert.Equal(t, 200., frame.Width)
	assert.Equal(t, 100., frame.VisualTransformMatrix.E)

	_, ok = s.Markers[1].(*UnknownState)
	assert.True(t, ok)

	line, ok := s.Markers[2].(*annomarker.LinearState)
	require.True(t, ok)
	assert.Equal(t, 40., line.Y2)

	_, err = Decode(strings.NewReader(`{"markers": [12]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestEncodeKeepsUnknown(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))

	var generic struct {
		Markers []map[string]any `json:"markers"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	require.Len(t, generic.Markers, 4)
	assert.Equal(t, 12., generic.Markers[1]["sparkles"])
	assert.Equal(t, "LineMarker", generic.Markers[2]["typeName"])

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestRescale(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	half := Rescale(s, 400, 300)
	assert.Equal(t, 400., half.Width)
	assert.Equal(t, 300., half.Height)

	frame := half.Markers[0].(*annomarker.ShapeState)
	assert.Equal(t, 50., frame.Left)
	assert.Equal(t, 30., frame.Top)
	assert.Equal(t, 100., frame.Width)
	assert.Equal(t, 60., frame.Height)
	assert.Equal(t, 2., frame.StrokeWidth)

	line := half.Markers[2].(*annomarker.LinearState)
	assert.Equal(t, annomarker.LinearState{BaseState: line.BaseState, X1: 5, Y1: 10, X2: 15, Y2: 20}, *line)

	poly := half.Markers[3].(*annomarker.PolygonState)
	assert.Equal(t, []annogeom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 25}}, poly.Points)

	// untouched
	assert.Equal(t, 200., s.Markers[0].(*annomarker.ShapeState).Width)
	assert.Equal(t, s.Markers[1], half.Markers[1])

	same := Rescale(s, 800, 600)
	assert.Equal(t, s, same)
	assert.NotSame(t, s.Markers[0], same.Markers[0])
}

func TestLoadSave(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, Save(path, s))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
