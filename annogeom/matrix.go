package annogeom

import (
	"math"

	"github.com/srwiley/rasterx"
)

// Matrix is a 2D affine transform
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// It shares its layout with rasterx.Matrix2D, which performs the products.
type Matrix struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Identity is the neutral transform.
var Identity = Matrix{A: 1, D: 1}

// Raster returns the matrix in the rasterx representation.
func (m Matrix) Raster() rasterx.Matrix2D { return rasterx.Matrix2D(m) }

// Mult returns m * n : n is applied first.
func (m Matrix) Mult(n Matrix) Matrix { return Matrix(m.Raster().Mult(n.Raster())) }

func (m Matrix) Translate(x, y float64) Matrix { return Matrix(m.Raster().Translate(x, y)) }

func (m Matrix) Scale(sx, sy float64) Matrix { return Matrix(m.Raster().Scale(sx, sy)) }

// Rotate appends a rotation of deg degrees, clockwise on a y-down surface.
func (m Matrix) Rotate(deg float64) Matrix {
	return Matrix(m.Raster().Rotate(deg * math.Pi / 180))
}

// RotateAbout appends a rotation of deg degrees around (cx, cy).
func (m Matrix) RotateAbout(deg, cx, cy float64) Matrix {
	return m.Translate(cx, cy).Rotate(deg).Translate(-cx, -cy)
}

// Apply transforms the point p.
func (m Matrix) Apply(p Point) Point {
	x, y := m.Raster().Transform(p.X, p.Y)
	return Point{x, y}
}

// ApplyVector transforms p ignoring the translation part.
func (m Matrix) ApplyVector(p Point) Point {
	return Point{m.A*p.X + m.C*p.Y, m.B*p.X + m.D*p.Y}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 { return m.A*m.D - m.B*m.C }

// Invert returns the inverse of m. A singular matrix
// has no inverse and yields Identity with ok = false.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) {
		return Identity, false
	}
	inv.A = m.D / det
	inv.B = -m.B / det
	inv.C = -m.C / det
	inv.D = m.A / det
	inv.E = (m.C*m.F - m.D*m.E) / det
	inv.F = (m.B*m.E - m.A*m.F) / det
	return inv, true
}

// ScaleFactor returns the mean linear scale of the transform,
// used to size strokes and fonts drawn through it.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// Near compares two matrices coefficient by coefficient.
func (m Matrix) Near(n Matrix) bool {
	return NearlyEqual(m.A, n.A) && NearlyEqual(m.B, n.B) && NearlyEqual(m.C, n.C) &&
		NearlyEqual(m.D, n.D) && NearlyEqual(m.E, n.E) && NearlyEqual(m.F, n.F)
}
