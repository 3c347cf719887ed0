package annopath

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/benoitkugler/okmarker/annogeom"
)

var (
	errParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown command")
)

// pathCursor is used while compiling a `d` attribute
type pathCursor struct {
	path             Path
	placeX, placeY   float64 // current point
	startX, startY   float64 // start of the current sub-path
	cntlPtX, cntlPtY float64 // last control point, for smooth curves
	lastKey          byte
	inPath           bool
	points           []float64
}

// Parse compiles an SVG path description (the `d` attribute of a <path>).
func Parse(d string) (Path, error) {
	var c pathCursor
	if err := c.compile(d); err != nil {
		return nil, err
	}
	return c.path, nil
}

func isCommand(b byte) bool {
	switch b | 0x20 { // lower case
	case 'm', 'l', 'h', 'v', 'c', 's', 'q', 't', 'a', 'z':
		return true
	}
	return false
}

// scanNumber returns the end index of the number starting at i.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	seenDot, seenExp := false, false
	for j < len(s) {
		b := s[j]
		switch {
		case b >= '0' && b <= '9':
		case b == '.' && !seenDot && !seenExp:
			seenDot = true
		case (b == 'e' || b == 'E') && !seenExp && j > i:
			seenExp = true
			if j+1 < len(s) && (s[j+1] == '+' || s[j+1] == '-') {
				j++
			}
		default:
			return j
		}
		j++
	}
	return j
}

// readPoints parses the numbers following a command.
func (c *pathCursor) readPoints(args string) error {
	c.points = c.points[:0]
	for i := 0; i < len(args); {
		b := args[i]
		if b == ' ' || b == ',' || b == '\n' || b == '\t' || b == '\r' {
			i++
			continue
		}
		j := scanNumber(args, i)
		if j == i {
			return fmt.Errorf("invalid number in path at %q", args[i:])
		}
		f, err := strconv.ParseFloat(args[i:j], 64)
		if err != nil {
			return err
		}
		c.points = append(c.points, f)
		i = j
	}
	return nil
}

func (c *pathCursor) compile(d string) error {
	c.path = c.path[:0]
	c.inPath = false
	c.lastKey = 0
	i := 0
	for i < len(d) && !isCommand(d[i]) {
		i++
	}
	for i < len(d) {
		key := d[i]
		j := i + 1
		for j < len(d) && !isCommand(d[j]) {
			j++
		}
		if err := c.readPoints(d[i+1 : j]); err != nil {
			return err
		}
		if err := c.addSeg(key); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// reflect returns the reflection of the last control point
// around the current point, for smooth curves.
func (c *pathCursor) reflect(curveKeys string) (float64, float64) {
	for k := 0; k < len(curveKeys); k++ {
		if c.lastKey == curveKeys[k] {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) moveTo(x, y float64) {
	if c.inPath {
		c.path.Stop(false)
	}
	c.placeX, c.placeY = x, y
	c.startX, c.startY = x, y
	c.path.Start(annogeom.Pt(x, y))
	c.inPath = true
}

func (c *pathCursor) lineTo(x, y float64) {
	c.placeX, c.placeY = x, y
	c.path.Line(annogeom.Pt(x, y))
}

func (c *pathCursor) addSeg(key byte) error {
	rel := key >= 'a'
	lower := key | 0x20
	var offX, offY float64
	if rel {
		offX, offY = c.placeX, c.placeY
	}
	pts := c.points
	l := len(pts)

	switch lower {
	case 'z':
		if l != 0 {
			return errParamMismatch
		}
		c.path.Stop(true)
		c.placeX, c.placeY = c.startX, c.startY
		c.inPath = false
	case 'm':
		if l < 2 || l%2 != 0 {
			return errParamMismatch
		}
		c.moveTo(pts[0]+offX, pts[1]+offY)
		for k := 2; k < l; k += 2 { // extra pairs are implicit line tos
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.lineTo(pts[k]+offX, pts[k+1]+offY)
		}
	case 'l':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.lineTo(pts[k]+offX, pts[k+1]+offY)
		}
	case 'h':
		if l == 0 {
			return errParamMismatch
		}
		for _, x := range pts {
			if rel {
				offX = c.placeX
			}
			c.lineTo(x+offX, c.placeY)
		}
	case 'v':
		if l == 0 {
			return errParamMismatch
		}
		for _, y := range pts {
			if rel {
				offY = c.placeY
			}
			c.lineTo(c.placeX, y+offY)
		}
	case 'q':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 4 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.cntlPtX, c.cntlPtY = pts[k]+offX, pts[k+1]+offY
			c.placeX, c.placeY = pts[k+2]+offX, pts[k+3]+offY
			c.path.QuadBezier(annogeom.Pt(c.cntlPtX, c.cntlPtY), annogeom.Pt(c.placeX, c.placeY))
			c.lastKey = 'q'
		}
	case 't':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.cntlPtX, c.cntlPtY = c.reflect("qt")
			c.placeX, c.placeY = pts[k]+offX, pts[k+1]+offY
			c.path.QuadBezier(annogeom.Pt(c.cntlPtX, c.cntlPtY), annogeom.Pt(c.placeX, c.placeY))
			c.lastKey = 't'
		}
	case 'c':
		if l == 0 || l%6 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 6 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			b := annogeom.Pt(pts[k]+offX, pts[k+1]+offY)
			c.cntlPtX, c.cntlPtY = pts[k+2]+offX, pts[k+3]+offY
			c.placeX, c.placeY = pts[k+4]+offX, pts[k+5]+offY
			c.path.CubeBezier(b, annogeom.Pt(c.cntlPtX, c.cntlPtY), annogeom.Pt(c.placeX, c.placeY))
			c.lastKey = 'c'
		}
	case 's':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 4 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			bx, by := c.reflect("cs")
			c.cntlPtX, c.cntlPtY = pts[k]+offX, pts[k+1]+offY
			c.placeX, c.placeY = pts[k+2]+offX, pts[k+3]+offY
			c.path.CubeBezier(annogeom.Pt(bx, by), annogeom.Pt(c.cntlPtX, c.cntlPtY), annogeom.Pt(c.placeX, c.placeY))
			c.lastKey = 's'
		}
	case 'a':
		if l == 0 || l%7 != 0 {
			return errParamMismatch
		}
		for k := 0; k < l; k += 7 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.placeX, c.placeY = c.path.arcTo(c.placeX, c.placeY, pts[k], pts[k+1], pts[k+2],
				pts[k+3] != 0, pts[k+4] != 0, pts[k+5]+offX, pts[k+6]+offY)
		}
	default:
		return errCommandUnknown
	}
	if lower != 'q' && lower != 't' && lower != 'c' && lower != 's' {
		c.lastKey = lower
	}
	return nil
}
