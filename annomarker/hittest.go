package annomarker

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/peterstace/simplefeatures/geom"
)

// HitTest reports whether the document point p touches m,
// within tol units of its outline. It is the geometric counterpart
// of OwnsTarget, usable without a surface.
func HitTest(m Marker, p annogeom.Point, tol float64) bool {
	switch m := m.(type) {
	case BoxMarker:
		box := m.Box()
		local := box.UnrotatePoint(p)
		r := box.Rect().Normalize()
		r = annogeom.Rect{Left: r.Left - tol, Top: r.Top - tol, Width: r.Width + 2*tol, Height: r.Height + 2*tol}
		return r.Contains(local)
	case *LinearMarker:
		return nearPolyline(m.PointList(), p, tol+m.StrokeWidth/2)
	case *MultiPointMarker:
		if m.Closed() && insidePolygon(m.Points, p) {
			return true
		}
		pts := m.Points
		if m.Closed() && len(pts) > 0 {
			pts = append(append([]annogeom.Point(nil), pts...), pts[0])
		}
		return nearPolyline(pts, p, tol+m.StrokeWidth/2)
	}
	return false
}

// sequence flattens pts into an XY coordinate sequence.
func sequence(pts []annogeom.Point) geom.Sequence {
	flat := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		flat = append(flat, p.X, p.Y)
	}
	return geom.NewSequence(flat, geom.DimXY)
}

func asPoint(p annogeom.Point) (geom.Point, error) {
	return geom.XY{X: p.X, Y: p.Y}.AsPoint()
}

// distinct removes consecutive duplicates.
func distinct(pts []annogeom.Point) []annogeom.Point {
	var out []annogeom.Point
	for _, p := range pts {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}

func nearPolyline(pts []annogeom.Point, p annogeom.Point, tol float64) bool {
	pts = distinct(pts)
	switch len(pts) {
	case 0:
		return false
	case 1:
		return pts[0].Dist(p) <= tol
	}
	line, err := geom.NewLineString(sequence(pts))
	if err != nil {
		return false
	}
	pt, err := asPoint(p)
	if err != nil {
		return false
	}
	d, ok := geom.Distance(line.AsGeometry(), pt.AsGeometry())
	return ok && d <= tol
}

// insidePolygon uses the polygon interior; invalid (self intersecting)
// outlines are not considered filled.
func insidePolygon(pts []annogeom.Point, p annogeom.Point) bool {
	pts = distinct(pts)
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return false
	}
	ring, err := geom.NewLineString(sequence(append(pts, pts[0])))
	if err != nil {
		return false
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return false
	}
	pt, err := asPoint(p)
	if err != nil {
		return false
	}
	return geom.Intersects(poly.AsGeometry(), pt.AsGeometry())
}
