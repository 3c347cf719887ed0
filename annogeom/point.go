// Provides the value types shared by the marker model:
// points, sizes, rectangles and affine matrices.
package annogeom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"golang.org/x/image/math/fixed"
)

// Tolerance is the absolute tolerance used by the Near helpers.
const Tolerance = 1e-6

// Point is a position in the untransformed space of its owner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul scales both coordinates.
func (p Point) Mul(sx, sy float64) Point { return Point{p.X * sx, p.Y * sy} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Near reports whether p and q are equal within Tolerance.
func (p Point) Near(q Point) bool { return p.NearWithin(q, Tolerance) }

// NearWithin reports whether p and q are equal within tol on both axes.
func (p Point) NearWithin(q Point, tol float64) bool {
	return scalar.EqualWithinAbs(p.X, q.X, tol) && scalar.EqualWithinAbs(p.Y, q.Y, tol)
}

// Fixed converts the point to the 26.6 fixed representation
// consumed by rasterizers.
func (p Point) Fixed() fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)}
}

// FromFixed is the inverse of Point.Fixed.
func FromFixed(p fixed.Point26_6) Point {
	return Point{float64(p.X) / 64, float64(p.Y) / 64}
}

// Size holds width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis aligned rectangle.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the middle of the rectangle.
func (r Rect) Center() Point { return Point{r.Left + r.Width/2, r.Top + r.Height/2} }

// Contains reports whether p is inside r, borders included.
func (r Rect) Contains(p Point) bool {
	r = r.Normalize()
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Normalize flips the origin of a rectangle with a negative
// width or height so that both become positive.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.Left += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Top += r.Height
		r.Height = -r.Height
	}
	return r
}

// Union returns the smallest rectangle containing r and o.
// An empty (zero) rectangle is ignored.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	minX, minY := math.Min(r.Left, o.Left), math.Min(r.Top, o.Top)
	maxX, maxY := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// NearlyEqual compares two floats with Tolerance.
func NearlyEqual(a, b float64) bool { return scalar.EqualWithinAbs(a, b, Tolerance) }
