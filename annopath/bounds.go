package annopath

import (
	"math"

	"github.com/benoitkugler/okmarker/annogeom"
)

// compute the exact bounding box of a path, curves included

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluate(t float64) annogeom.Point
}

type segment [2]annogeom.Point

func (segment) criticalPoints() (tX, tY []float64) { return nil, nil }

func (l segment) evaluate(t float64) annogeom.Point {
	return annogeom.Pt(bezierLine(l[0].X, l[1].X, t), bezierLine(l[0].Y, l[1].Y, t))
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]annogeom.Point

// quadratic polynomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	aX, bX := quadraticDerivative(cu[0].X, cu[1].X, cu[2].X)
	aY, bY := quadraticDerivative(cu[0].Y, cu[1].Y, cu[2].Y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluate(t float64) annogeom.Point {
	return annogeom.Pt(bezierQuad(cu[0].X, cu[1].X, cu[2].X, t), bezierQuad(cu[0].Y, cu[1].Y, cu[2].Y, t))
}

type cubicBezier [4]annogeom.Point

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluate(t float64) annogeom.Point {
	return annogeom.Pt(bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t),
		bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t))
}

// cubic polynomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

func extremaOf(curve bezier) []annogeom.Point {
	resX, resY := curve.criticalPoints()
	var out []annogeom.Point
	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		out = append(out, curve.evaluate(t))
	}
	return out
}

// Bounds returns the exact bounding box of the path.
// An empty path has an empty rectangle.
func (p Path) Bounds() annogeom.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(pts ...annogeom.Point) {
		for _, e := range pts {
			minX, minY = math.Min(e.X, minX), math.Min(e.Y, minY)
			maxX, maxY = math.Max(e.X, maxX), math.Max(e.Y, maxY)
		}
	}
	var current, first annogeom.Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current, first = annogeom.Point(op), annogeom.Point(op)
			add(current)
		case LineTo:
			add(extremaOf(segment{current, annogeom.Point(op)})...)
			current = annogeom.Point(op)
		case QuadTo:
			add(extremaOf(quadBezier{current, op[0], op[1]})...)
			current = op[1]
		case CubicTo:
			add(extremaOf(cubicBezier{current, op[0], op[1], op[2]})...)
			current = op[2]
		case Close:
			current = first
		}
	}
	if math.IsInf(minX, 1) {
		return annogeom.Rect{}
	}
	return annogeom.Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}
