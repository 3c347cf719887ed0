package annopath

import (
	"math"

	"github.com/benoitkugler/okmarker/annogeom"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// kappa is the control point distance approximating a quarter circle
const kappa = 0.5522847498

// Rectangle returns the outline of a width x height box with its origin at (0, 0).
func Rectangle(width, height float64) Path {
	var p Path
	p.Start(annogeom.Pt(0, 0))
	p.Line(annogeom.Pt(width, 0))
	p.Line(annogeom.Pt(width, height))
	p.Line(annogeom.Pt(0, height))
	p.Stop(true)
	return p
}

// Ellipse returns a closed ellipse centered on (cx, cy),
// made of four cubic bezier curves.
func Ellipse(cx, cy, rx, ry float64) Path {
	var p Path
	kx, ky := rx*kappa, ry*kappa
	p.Start(annogeom.Pt(cx+rx, cy))
	p.CubeBezier(annogeom.Pt(cx+rx, cy+ky), annogeom.Pt(cx+kx, cy+ry), annogeom.Pt(cx, cy+ry))
	p.CubeBezier(annogeom.Pt(cx-kx, cy+ry), annogeom.Pt(cx-rx, cy+ky), annogeom.Pt(cx-rx, cy))
	p.CubeBezier(annogeom.Pt(cx-rx, cy-ky), annogeom.Pt(cx-kx, cy-ry), annogeom.Pt(cx, cy-ry))
	p.CubeBezier(annogeom.Pt(cx+kx, cy-ry), annogeom.Pt(cx+rx, cy-ky), annogeom.Pt(cx+rx, cy))
	p.Stop(true)
	return p
}

// Polyline joins the points with straight segments, closing the
// outline when closed is true. An empty slice gives an empty path.
func Polyline(points []annogeom.Point, closed bool) Path {
	if len(points) == 0 {
		return nil
	}
	var p Path
	p.Start(points[0])
	for _, pt := range points[1:] {
		p.Line(pt)
	}
	p.Stop(closed)
	return p
}

// Segment is a single straight line.
func Segment(a, b annogeom.Point) Path {
	return Path{MoveTo(a), LineTo(b)}
}

// ArrowHead returns a closed triangle with its tip at tip, pointing
// away from from. width is measured across the base, height along the line.
func ArrowHead(tip, from annogeom.Point, width, height float64) Path {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		dx, l = 1, 1
	}
	ux, uy := dx/l, dy/l // unit vector along the line
	base := annogeom.Pt(tip.X-ux*height, tip.Y-uy*height)
	nx, ny := -uy*width/2, ux*width/2
	return Polyline([]annogeom.Point{
		tip,
		{X: base.X + nx, Y: base.Y + ny},
		{X: base.X - nx, Y: base.Y - ny},
	}, true)
}

// Tick returns a segment of the given length centered on at and
// perpendicular to the direction from -> at.
func Tick(at, from annogeom.Point, length float64) Path {
	dx, dy := at.X-from.X, at.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		dx, l = 1, 1
	}
	nx, ny := -dy/l*length/2, dx/l*length/2
	return Segment(annogeom.Pt(at.X+nx, at.Y+ny), annogeom.Pt(at.X-nx, at.Y-ny))
}

// arcTo adds an SVG elliptical arc from (px, py) to (x, y), with radii (rx, ry)
// and x-axis rotation rotX (degrees), approximated with cubic beziers.
// It returns the end point.
func (p *Path) arcTo(px, py, rx, ry, rotX float64, largeArc, sweep bool, x, y float64) (lx, ly float64) {
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 || (px == x && py == y) {
		p.Line(annogeom.Pt(x, y))
		return x, y
	}
	rotX *= math.Pi / 180 // Convert degress to radians
	cx, cy := findEllipseCenter(&rx, &ry, rotX, px, py, x, y, sweep, !largeArc)

	startAngle := math.Atan2(py-cy, px-cx) - rotX
	endAngle := math.Atan2(y-cy, x-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezier splines
	etaStart := math.Atan2(math.Sin(startAngle)/ry, math.Cos(startAngle)/rx)
	etaEnd := math.Atan2(math.Sin(endAngle)/ry, math.Cos(endAngle)/rx)
	deltaEta := etaEnd - etaStart
	if arcBig != largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the ellipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly = px, py
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(rx, ry, sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var ex, ey float64
		if i == segs {
			ex, ey = x, y // Just makes the end point exact; no roundoff error
		} else {
			ex, ey = ellipsePointAt(rx, ry, sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(rx, ry, sinTheta, cosTheta, eta)
		p.CubeBezier(annogeom.Pt(lx+alpha*ldx, ly+alpha*ldy),
			annogeom.Pt(ex-alpha*dx, ey-alpha*dy), annogeom.Pt(ex, ey))
		lx, ly, ldx, ldy = ex, ey, dx, dy
	}
	return lx, ly
}

// ellipsePrime gives tangent vectors for parameterized ellipse; a, b, radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized ellipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the ellipse if it exists. If it does not exist,
// the radius values are increased minimally for a solution to be possible
// while preserving the ra to rb ratio.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit.
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if sweep == smallArc {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	// Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
