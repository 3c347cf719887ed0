package annoedit

import (
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
	"github.com/stretchr/testify/assert"
)

var startBox = annogeom.Rect{Left: 10, Top: 10, Width: 100, Height: 80}

func TestResize(t *testing.T) {
	for _, test := range []struct {
		loc      annogrip.GripLocation
		dx, dy   float64
		expected annogeom.Rect
	}{
		{annogrip.BottomRight, 50, 30, annogeom.Rect{Left: 10, Top: 10, Width: 150, Height: 110}},
		{annogrip.TopLeft, -20, -15, annogeom.Rect{Left: -10, Top: -5, Width: 120, Height: 95}},
		{annogrip.TopRight, 10, 10, annogeom.Rect{Left: 10, Top: 20, Width: 110, Height: 70}},
		{annogrip.BottomLeft, 10, 10, annogeom.Rect{Left: 20, Top: 10, Width: 90, Height: 90}},
		// edges only drive one dimension
		{annogrip.TopCenter, 40, -10, annogeom.Rect{Left: 10, Top: 0, Width: 100, Height: 90}},
		{annogrip.BottomCenter, 40, 10, annogeom.Rect{Left: 10, Top: 10, Width: 100, Height: 90}},
		{annogrip.LeftCenter, -10, 40, annogeom.Rect{Left: 0, Top: 10, Width: 110, Height: 80}},
		{annogrip.RightCenter, 10, 40, annogeom.Rect{Left: 10, Top: 10, Width: 110, Height: 80}},
		// dragged past the opposite edge
		{annogrip.BottomRight, -150, 0, annogeom.Rect{Left: -40, Top: 10, Width: 50, Height: 80}},
		{annogrip.TopLeft, 0, 100, annogeom.Rect{Left: 10, Top: 90, Width: 100, Height: 20}},
	} {
		got := Resize(startBox, test.loc, test.dx, test.dy, false)
		assert.Equal(t, test.expected, got, test.loc.String())
		assert.GreaterOrEqual(t, got.Width, 0.)
		assert.GreaterOrEqual(t, got.Height, 0.)
	}
}

func TestResizeLocked(t *testing.T) {
	for _, test := range []struct {
		loc      annogrip.GripLocation
		dx, dy   float64
		expected annogeom.Rect
	}{
		{annogrip.BottomRight, 50, 10, annogeom.Rect{Left: 10, Top: 10, Width: 150, Height: 120}},
		{annogrip.TopLeft, -20, -40, annogeom.Rect{Left: -30, Top: -22, Width: 140, Height: 112}},
		// shrinking on one axis, growing on the other: growth wins
		{annogrip.BottomRight, -10, 20, annogeom.Rect{Left: 10, Top: 10, Width: 120, Height: 96}},
		{annogrip.RightCenter, 25, 0, annogeom.Rect{Left: 10, Top: 0, Width: 125, Height: 100}},
		{annogrip.TopCenter, 0, 20, annogeom.Rect{Left: 22.5, Top: 30, Width: 75, Height: 60}},
	} {
		got := Resize(startBox, test.loc, test.dx, test.dy, true)
		assert.InDelta(t, test.expected.Left, got.Left, 1e-9, test.loc.String())
		assert.InDelta(t, test.expected.Top, got.Top, 1e-9, test.loc.String())
		assert.InDelta(t, test.expected.Width, got.Width, 1e-9, test.loc.String())
		assert.InDelta(t, test.expected.Height, got.Height, 1e-9, test.loc.String())
		assert.InDelta(t, 1.25, got.Width/got.Height, 1e-9)
	}

	// degenerate start box: no ratio to keep
	flat := annogeom.Rect{Left: 0, Top: 0, Width: 100, Height: 0}
	assert.Equal(t, annogeom.Rect{Width: 110, Height: 5}, Resize(flat, annogrip.BottomRight, 10, 5, true))
}
