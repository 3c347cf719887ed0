package annoedit

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annogrip"
)

// growth returns the sign of the width and height growth
// when the handle moves toward positive x and y.
func growth(loc annogrip.GripLocation) (sx, sy float64) {
	fx, fy := loc.Factors()
	switch fx {
	case 0:
		sx = -1
	case 1:
		sx = 1
	}
	switch fy {
	case 0:
		sy = -1
	case 1:
		sy = 1
	}
	return sx, sy
}

// Resize returns the box obtained by dragging the handle loc of start by
// (dx, dy), both expressed in the un-rotated frame of the box.
// The edges not driven by the handle keep their position.
// With lockAspect, both dimensions keep the start width/height ratio.
// The returned box never has a negative size: a box dragged past its
// opposite edge is flipped.
func Resize(start annogeom.Rect, loc annogrip.GripLocation, dx, dy float64, lockAspect bool) annogeom.Rect {
	if lockAspect && start.Width != 0 && start.Height != 0 {
		return resizeLocked(start, loc, dx, dy).Normalize()
	}
	r := start
	sx, sy := growth(loc)
	switch sx {
	case -1:
		r.Left += dx
		r.Width -= dx
	case 1:
		r.Width += dx
	}
	switch sy {
	case -1:
		r.Top += dy
		r.Height -= dy
	case 1:
		r.Height += dy
	}
	return r.Normalize()
}

func resizeLocked(start annogeom.Rect, loc annogrip.GripLocation, dx, dy float64) annogeom.Rect {
	ratio := start.Width / start.Height
	sx, sy := growth(loc)
	var w, h float64
	switch {
	case loc.IsCorner():
		g := max(sx*dx, sy*dy)
		w = start.Width + g
		h = w / ratio
	case sx == 0: // top and bottom edges
		h = start.Height + sy*dy
		w = h * ratio
	default: // left and right edges
		w = start.Width + sx*dx
		h = w / ratio
	}

	r := annogeom.Rect{Width: w, Height: h}
	switch sx {
	case -1: // right edge anchored
		r.Left = start.Right() - w
	case 1:
		r.Left = start.Left
	default:
		r.Left = start.Left + (start.Width-w)/2
	}
	switch sy {
	case -1:
		r.Top = start.Bottom() - h
	case 1:
		r.Top = start.Top
	default:
		r.Top = start.Top + (start.Height-h)/2
	}
	return r
}
