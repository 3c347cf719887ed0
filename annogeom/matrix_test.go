package annogeom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateAboutKeepsPivot(t *testing.T) {
	m := Identity.RotateAbout(37, 50, 40)
	assert.True(t, m.Apply(Pt(50, 40)).Near(Pt(50, 40)))
}

func TestRotateClockwiseOnYDown(t *testing.T) {
	m := Identity.Rotate(90)
	// a point above the origin ends up on its right
	assert.True(t, m.Apply(Pt(0, -10)).Near(Pt(10, 0)))
}

func TestInvert(t *testing.T) {
	for _, m := range []Matrix{
		Identity,
		Identity.Translate(12, -7),
		Identity.RotateAbout(123, 10, 20),
		Identity.Scale(2, 0.5).Rotate(-45).Translate(3, 4),
	} {
		inv, ok := m.Invert()
		require.True(t, ok)
		assert.True(t, m.Mult(inv).Near(Identity), "%v", m)
		for _, p := range []Point{{0, 0}, {1, 1}, {-250, 33.3}} {
			assert.True(t, inv.Apply(m.Apply(p)).Near(p))
		}
	}
}

func TestInvertSingular(t *testing.T) {
	inv, ok := Matrix{A: 1, C: 1}.Invert()
	assert.False(t, ok)
	assert.Equal(t, Identity, inv)
}

func TestTransformListConsolidate(t *testing.T) {
	l := TransformList{Translation(10, 20), Rotation(90, 0, 0)}
	m := l.Consolidate()
	// rotation first, then translation
	assert.True(t, m.Apply(Pt(0, -10)).Near(Pt(20, 20)))

	back := FromMatrix(m).Consolidate()
	assert.True(t, back.Near(m))
	assert.Equal(t, "translate(10 20) rotate(90 0 0)", l.String())
}

func TestRectNormalize(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Width: -50, Height: 20}.Normalize()
	assert.Equal(t, Rect{Left: -40, Top: 10, Width: 50, Height: 20}, r)
	assert.True(t, r.Contains(Pt(0, 15)))
	assert.False(t, r.Contains(Pt(20, 15)))
}

func TestRectUnion(t *testing.T) {
	r := Rect{0, 0, 10, 10}.Union(Rect{5, -5, 10, 5})
	assert.Equal(t, Rect{0, -5, 15, 15}, r)
	assert.Equal(t, r, Rect{}.Union(r))
}

func TestFixedRoundTrip(t *testing.T) {
	p := Pt(12.5, -3.25)
	assert.Equal(t, p, FromFixed(p.Fixed()))
}
