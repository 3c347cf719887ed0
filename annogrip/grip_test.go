package annogrip

import (
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/stretchr/testify/assert"
)

func TestLocations(t *testing.T) {
	r := annogeom.Rect{Left: 10, Top: 10, Width: 100, Height: 80}
	expected := map[GripLocation]annogeom.Point{
		TopLeft:      {X: 10, Y: 10},
		TopCenter:    {X: 60, Y: 10},
		TopRight:     {X: 110, Y: 10},
		LeftCenter:   {X: 10, Y: 50},
		RightCenter:  {X: 110, Y: 50},
		BottomLeft:   {X: 10, Y: 90},
		BottomCenter: {X: 60, Y: 90},
		BottomRight:  {X: 110, Y: 90},
	}
	for _, loc := range Locations {
		assert.Equal(t, expected[loc], loc.Position(r), loc.String())
	}
	assert.Equal(t, "bottomright", BottomRight.String())
	assert.True(t, TopRight.IsCorner())
	assert.False(t, LeftCenter.IsCorner())
}

func TestGrip(t *testing.T) {
	s := annosurface.New(100, 100)
	g := NewResizeGrip(TopCenter, 0)
	assert.Equal(t, float64(DefaultSize), g.Size)
	s.Root.Append(g.Visual())
	g.MoveTo(annogeom.Pt(20, 30))

	assert.Equal(t, "translate(20 30)", annosurface.Transforms(g.Visual()).String())
	assert.True(t, g.OwnsTarget(g.disc))
	assert.True(t, g.OwnsTarget(g.hit))
	assert.False(t, g.OwnsTarget(s.Root))
	assert.True(t, g.Contains(annogeom.Pt(25, 30)))
	assert.False(t, g.Contains(annogeom.Pt(45, 30)))

	g.SetPickable(false)
	assert.False(t, annosurface.Pickable(g.disc))
	g.SetPickable(true)
	assert.True(t, g.Pickable())

	p := NewPointGrip(3, 6)
	assert.Equal(t, Point, p.Kind)
	assert.Equal(t, 3, p.Index)
	assert.Equal(t, Rotate, NewRotateGrip(0).Kind)
}
