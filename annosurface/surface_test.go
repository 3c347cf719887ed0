package annosurface

import (
	"errors"
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrs(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	SetAttr(r, "stroke", "red")
	SetAttr(r, "stroke-width", 2.5)
	assert.Equal(t, "red", Attr(r, "stroke"))
	assert.Equal(t, 2.5, FloatAttr(r, "stroke-width", 1))
	assert.Equal(t, 1., FloatAttr(r, "opacity", 1))

	SetAttr(r, "stroke", "")
	assert.Equal(t, "", Attr(r, "stroke"))
	assert.NotContains(t, Attrs(r), "stroke")
}

func TestTree(t *testing.T) {
	s := New(100, 100)
	g1, g2 := NewGroup(), NewGroup()
	l := NewLine(0, 0, 1, 1)
	g2.Append(l)
	g1.Append(g2)
	s.Root.Append(g1)

	assert.True(t, Contains(g1, l))
	assert.True(t, Contains(l, l))
	assert.False(t, Contains(l, g1))
	assert.Equal(t, g2, Parent(l))

	g2.NoPointerEvents = true
	assert.False(t, Pickable(l))
	assert.True(t, Pickable(g1))

	// moving a node detaches it
	g1.Append(l)
	assert.Empty(t, g2.Children)
	assert.Equal(t, g1, Parent(l))

	g1.Remove(l)
	assert.Nil(t, Parent(l))
}

func TestCumulativeMatrix(t *testing.T) {
	s := New(100, 100)
	g := NewGroup()
	SetTransforms(g, annogeom.Rotation(90, 0, 0))
	r := NewRect(0, 0, 10, 10)
	SetTransforms(r, annogeom.Translation(10, 0))
	g.Append(r)
	s.Root.Append(g)

	m := CumulativeMatrix(r)
	assert.True(t, m.Apply(annogeom.Pt(0, 0)).Near(annogeom.Pt(0, 10)))

	var seen int
	err := s.Walk(func(n Node, wm annogeom.Matrix) error {
		if n == r {
			assert.True(t, wm.Near(m))
		}
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)

	r.Hidden = true
	seen = 0
	_ = s.Walk(func(n Node, wm annogeom.Matrix) error { seen++; return nil })
	assert.Equal(t, 2, seen)
}

func TestWalkErrors(t *testing.T) {
	var s *Surface
	assert.ErrorIs(t, s.Walk(nil), ErrNoSurface)

	s = New(1, 1)
	s.Root.Append(NewGroup())
	stop := errors.New("stop")
	assert.ErrorIs(t, s.Walk(func(Node, annogeom.Matrix) error { return stop }), stop)
}

func TestOpacity(t *testing.T) {
	g := NewGroup()
	SetAttr(g, "opacity", 0.5)
	p := NewPath(nil)
	SetAttr(p, "opacity", 0.5)
	g.Append(p)
	assert.Equal(t, 0.25, Opacity(p))
}
