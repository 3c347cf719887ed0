package annosvg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annopath"
	"golang.org/x/net/html/charset"
)

var (
	errParamMismatch = errors.New("annosvg: param mismatch")
	errNoSVG         = errors.New("annosvg: invalid svg document")
	errPercentage    = errors.New("annosvg: relative lengths are not supported")
)

// Style is the paint state of a shape.
// A zero alpha Fill or Stroke is not painted.
type Style struct {
	Fill, Stroke               color.NRGBA
	FillOpacity, StrokeOpacity float64
	Opacity                    float64 // product of the group opacities
	StrokeWidth                float64
	Dashes                     []float64
	EvenOdd                    bool

	// Transform maps the path to the viewBox coordinates.
	Transform annogeom.Matrix
}

// DefaultStyle is the initial style of a document.
var DefaultStyle = Style{
	Fill:          color.NRGBA{A: 0xff},
	FillOpacity:   1,
	StrokeOpacity: 1,
	Opacity:       1,
	StrokeWidth:   1,
	Transform:     annogeom.Identity,
}

// Shape binds a style to a path.
type Shape struct {
	Path  annopath.Path
	Style Style
}

// Image is the vector content of an SVG document.
type Image struct {
	ViewBox annogeom.Rect
	// Width and Height are the intrinsic size, defaulting to the viewBox size.
	Width, Height float64
	Titles        []string
	Shapes        []Shape
}

// ViewBoxMatrix returns the transform mapping the viewBox onto
// a width x height area, stretched.
func (img *Image) ViewBoxMatrix(width, height float64) annogeom.Matrix {
	vb := img.ViewBox
	if vb.Width == 0 || vb.Height == 0 {
		return annogeom.Identity
	}
	return annogeom.Identity.Scale(width/vb.Width, height/vb.Height).Translate(-vb.Left, -vb.Top)
}

// imageCursor holds the parsing state
type imageCursor struct {
	img        *Image
	styleStack []Style
	path       annopath.Path

	skipDepth int // > 0 inside an ignored element
	inTitle   bool
}

func (c *imageCursor) style() Style { return c.styleStack[len(c.styleStack)-1] }

// ReadImage parses an SVG document. Only the geometry and the plain
// paint of the shapes are kept: gradients, text and references
// are ignored.
func ReadImage(r io.Reader) (*Image, error) {
	img := &Image{}
	c := &imageCursor{img: img, styleStack: []Style{DefaultStyle}}
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			if !seenTag {
				return nil, errNoSVG
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading svg: %w", err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			if err := c.readStartElement(se); err != nil {
				return nil, fmt.Errorf("reading svg <%s>: %w", se.Name.Local, err)
			}
		case xml.EndElement:
			c.readEndElement()
		case xml.CharData:
			if c.inTitle {
				img.Titles = append(img.Titles, strings.TrimSpace(string(se)))
			}
		}
	}
	if img.Width == 0 {
		img.Width = img.ViewBox.Width
	}
	if img.Height == 0 {
		img.Height = img.ViewBox.Height
	}
	return img, nil
}

// elements whose content is not drawn
var skippedElements = map[string]bool{
	"defs":           true,
	"desc":           true,
	"metadata":       true,
	"style":          true,
	"symbol":         true,
	"clipPath":       true,
	"mask":           true,
	"pattern":        true,
	"linearGradient": true,
	"radialGradient": true,
	"text":           true,
}

func (c *imageCursor) readStartElement(se xml.StartElement) error {
	if c.skipDepth > 0 || skippedElements[se.Name.Local] {
		c.skipDepth++
		return nil
	}
	if err := c.pushStyle(se.Attr); err != nil {
		return err
	}
	if se.Name.Local == "title" {
		c.inTitle = true
		return nil
	}
	df, ok := drawFuncs[se.Name.Local]
	if !ok {
		annolog.Logger().Debug().Str("element", se.Name.Local).Msg("svg element ignored")
		return nil
	}
	if err := df(c, se.Attr); err != nil {
		return err
	}
	if len(c.path) > 0 {
		c.img.Shapes = append(c.img.Shapes, Shape{Path: c.path, Style: c.style()})
		c.path = nil
	}
	return nil
}

func (c *imageCursor) readEndElement() {
	if c.skipDepth > 0 {
		c.skipDepth--
		return
	}
	c.inTitle = false
	if len(c.styleStack) > 1 {
		c.styleStack = c.styleStack[:len(c.styleStack)-1]
	}
}

// pushStyle reads the presentation attributes and the style
// attribute on top of the current style.
func (c *imageCursor) pushStyle(attrs []xml.Attr) error {
	var pairs [][2]string
	for _, attr := range attrs {
		switch name := strings.ToLower(attr.Name.Local); name {
		case "style":
			for _, decl := range strings.Split(attr.Value, ";") {
				if k, v, ok := strings.Cut(decl, ":"); ok {
					pairs = append(pairs, [2]string{strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)})
				}
			}
		default:
			pairs = append(pairs, [2]string{name, strings.TrimSpace(attr.Value)})
		}
	}
	cur := c.style()
	for _, kv := range pairs {
		if err := readStyleAttr(&cur, kv[0], kv[1]); err != nil {
			return err
		}
	}
	c.styleStack = append(c.styleStack, cur)
	return nil
}

func readStyleAttr(s *Style, k, v string) error {
	var err error
	switch k {
	case "fill":
		s.Fill, err = ParseColor(v)
	case "stroke":
		s.Stroke, err = ParseColor(v)
	case "fill-opacity":
		s.FillOpacity, err = readFraction(v, 1)
	case "stroke-opacity":
		s.StrokeOpacity, err = readFraction(v, 1)
	case "opacity":
		var o float64
		o, err = readFraction(v, 1)
		s.Opacity *= o
	case "stroke-width":
		s.StrokeWidth, err = parseLength(v)
	case "stroke-dasharray":
		s.Dashes, err = ParseDashes(v)
	case "fill-rule":
		s.EvenOdd = v == "evenodd"
	case "transform":
		var m annogeom.Matrix
		m, err = parseTransform(v)
		s.Transform = s.Transform.Mult(m)
	}
	return err
}

// parseLength reads a number, with an optional px unit.
func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		return 0, errPercentage
	}
	v = strings.TrimSuffix(v, "px")
	return strconv.ParseFloat(v, 64)
}

func parseNumbers(v string) ([]float64, error) {
	fields := splitOnCommaOrSpace(v)
	out := make([]float64, len(fields))
	for i, f := range fields {
		var err error
		out[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseTransform reads a transform list, such as
// "translate(10, 20) rotate(45)".
func parseTransform(v string) (annogeom.Matrix, error) {
	m := annogeom.Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		name, args, ok := strings.Cut(t, "(")
		if !ok {
			return m, errParamMismatch
		}
		pts, err := parseNumbers(args)
		if err != nil {
			return m, err
		}
		m, err = applyTransform(m, strings.ToLower(strings.TrimSpace(strings.Trim(name, ", "))), pts)
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

func applyTransform(m annogeom.Matrix, kind string, pts []float64) (annogeom.Matrix, error) {
	ln := len(pts)
	switch kind {
	case "rotate":
		switch ln {
		case 1:
			return m.Rotate(pts[0]), nil
		case 3:
			return m.RotateAbout(pts[0], pts[1], pts[2]), nil
		}
	case "translate":
		switch ln {
		case 1:
			return m.Translate(pts[0], 0), nil
		case 2:
			return m.Translate(pts[0], pts[1]), nil
		}
	case "scale":
		switch ln {
		case 1:
			return m.Scale(pts[0], pts[0]), nil
		case 2:
			return m.Scale(pts[0], pts[1]), nil
		}
	case "skewx":
		if ln == 1 {
			return m.Mult(annogeom.Matrix{A: 1, C: math.Tan(pts[0] * math.Pi / 180), D: 1}), nil
		}
	case "skewy":
		if ln == 1 {
			return m.Mult(annogeom.Matrix{A: 1, B: math.Tan(pts[0] * math.Pi / 180), D: 1}), nil
		}
	case "matrix":
		if ln == 6 {
			return m.Mult(annogeom.Matrix{A: pts[0], B: pts[1], C: pts[2], D: pts[3], E: pts[4], F: pts[5]}), nil
		}
	}
	return m, errParamMismatch
}

type svgFunc func(c *imageCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":      svgF,
	"g":        gF,
	"line":     lineF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, // circleF handles ellipse also
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
}

// lengths reads the named attributes; missing ones are 0.
func lengths(attrs []xml.Attr, names ...string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, attr := range attrs {
		for _, n := range names {
			if attr.Name.Local != n {
				continue
			}
			v, err := parseLength(attr.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", n, err)
			}
			out[n] = v
		}
	}
	return out, nil
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

func svgF(c *imageCursor, attrs []xml.Attr) error {
	if v, ok := attrValue(attrs, "viewBox"); ok {
		pts, err := parseNumbers(v)
		if err != nil {
			return err
		}
		if len(pts) != 4 {
			return errParamMismatch
		}
		c.img.ViewBox = annogeom.Rect{Left: pts[0], Top: pts[1], Width: pts[2], Height: pts[3]}
	}
	for _, attr := range attrs {
		var dst *float64
		switch attr.Name.Local {
		case "width":
			dst = &c.img.Width
		case "height":
			dst = &c.img.Height
		default:
			continue
		}
		v, err := parseLength(attr.Value)
		if err == errPercentage {
			continue // relative to the host: use the viewBox
		}
		if err != nil {
			return err
		}
		*dst = v
	}
	if c.img.ViewBox.Width == 0 {
		c.img.ViewBox.Width = c.img.Width
	}
	if c.img.ViewBox.Height == 0 {
		c.img.ViewBox.Height = c.img.Height
	}
	return nil
}

func gF(*imageCursor, []xml.Attr) error { return nil } // g does nothing but push the style

func rectF(c *imageCursor, attrs []xml.Attr) error {
	l, err := lengths(attrs, "x", "y", "width", "height", "rx", "ry")
	if err != nil {
		return err
	}
	if l["width"] <= 0 || l["height"] <= 0 {
		return nil
	}
	c.path = roundRect(l["x"], l["y"], l["width"], l["height"], l["rx"], l["ry"])
	return nil
}

func circleF(c *imageCursor, attrs []xml.Attr) error {
	l, err := lengths(attrs, "cx", "cy", "r", "rx", "ry")
	if err != nil {
		return err
	}
	rx, ry := l["rx"], l["ry"]
	if r := l["r"]; r != 0 {
		rx, ry = r, r
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	c.path = annopath.Ellipse(l["cx"], l["cy"], rx, ry)
	return nil
}

func lineF(c *imageCursor, attrs []xml.Attr) error {
	l, err := lengths(attrs, "x1", "y1", "x2", "y2")
	if err != nil {
		return err
	}
	c.path = annopath.Segment(annogeom.Pt(l["x1"], l["y1"]), annogeom.Pt(l["x2"], l["y2"]))
	return nil
}

func readPoints(attrs []xml.Attr) ([]annogeom.Point, error) {
	v, _ := attrValue(attrs, "points")
	nums, err := parseNumbers(v)
	if err != nil {
		return nil, err
	}
	if len(nums)%2 != 0 {
		return nil, errors.New("annosvg: polygon has odd number of points")
	}
	pts := make([]annogeom.Point, len(nums)/2)
	for i := range pts {
		pts[i] = annogeom.Pt(nums[2*i], nums[2*i+1])
	}
	return pts, nil
}

func polylineF(c *imageCursor, attrs []xml.Attr) error {
	pts, err := readPoints(attrs)
	if err != nil {
		return err
	}
	if len(pts) >= 2 {
		c.path = annopath.Polyline(pts, false)
	}
	return nil
}

func polygonF(c *imageCursor, attrs []xml.Attr) error {
	pts, err := readPoints(attrs)
	if err != nil {
		return err
	}
	if len(pts) >= 2 {
		c.path = annopath.Polyline(pts, true)
	}
	return nil
}

func pathF(c *imageCursor, attrs []xml.Attr) error {
	d, ok := attrValue(attrs, "d")
	if !ok {
		return nil
	}
	p, err := annopath.Parse(d)
	if err != nil {
		return err
	}
	c.path = p
	return nil
}

// kappa places the control points of a quarter ellipse
const kappa = 0.5522847498

func roundRect(x, y, w, h, rx, ry float64) annopath.Path {
	if rx == 0 {
		rx = ry
	} else if ry == 0 {
		ry = rx
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	if rx <= 0 || ry <= 0 {
		return annopath.Rectangle(w, h).Transform(annogeom.Identity.Translate(x, y))
	}
	kx, ky := kappa*rx, kappa*ry
	r, b := x+w, y+h
	var p annopath.Path
	p.Start(annogeom.Pt(x+rx, y))
	p.Line(annogeom.Pt(r-rx, y))
	p.CubeBezier(annogeom.Pt(r-rx+kx, y), annogeom.Pt(r, y+ry-ky), annogeom.Pt(r, y+ry))
	p.Line(annogeom.Pt(r, b-ry))
	p.CubeBezier(annogeom.Pt(r, b-ry+ky), annogeom.Pt(r-rx+kx, b), annogeom.Pt(r-rx, b))
	p.Line(annogeom.Pt(x+rx, b))
	p.CubeBezier(annogeom.Pt(x+rx-kx, b), annogeom.Pt(x, b-ry+ky), annogeom.Pt(x, b-ry))
	p.Line(annogeom.Pt(x, y+ry))
	p.CubeBezier(annogeom.Pt(x, y+ry-ky), annogeom.Pt(x+rx-kx, y), annogeom.Pt(x+rx, y))
	p.Stop(true)
	return p
}
