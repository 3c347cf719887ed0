package annoraster

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/benoitkugler/okmarker/annosvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// renderer paints paths on an RGBA image.
// The filler and the dasher share the scanner, so that fill and
// stroke passes are sequential.
type renderer struct {
	dst    *image.RGBA
	dasher *rasterx.Dasher
	filler *rasterx.Filler

	font *sfnt.Font // nil disables text
}

func newRenderer(dst *image.RGBA, font *sfnt.Font) *renderer {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &renderer{
		dst:    dst,
		dasher: rasterx.NewDasher(w, h, scanner),
		filler: rasterx.NewFiller(w, h, scanner),
		font:   font,
	}
}

func (rd *renderer) fill(p annopath.Path, m annogeom.Matrix, c color.Color, nonZero bool) {
	rd.filler.Clear()
	rd.filler.SetWinding(nonZero)
	p.AddTo(rd.filler, m)
	rd.filler.SetColor(c)
	rd.filler.Draw()
}

// stroke draws the outline of p, width and dashes being
// expressed in the local coordinates of p.
func (rd *renderer) stroke(p annopath.Path, m annogeom.Matrix, c color.Color, width float64, dashes []float64) {
	scale := m.ScaleFactor()
	if width <= 0 || scale == 0 {
		return
	}
	var scaled []float64
	if len(dashes) != 0 {
		scaled = make([]float64, len(dashes))
		for i, d := range dashes {
			scaled[i] = d * scale
		}
	}
	rd.dasher.Clear()
	rd.dasher.SetStroke(fixed.Int26_6(width*scale*64), 4*64, rasterx.ButtCap, rasterx.ButtCap,
		rasterx.FlatGap, rasterx.Miter, scaled, 0)
	p.AddTo(rd.dasher, m)
	rd.dasher.SetColor(c)
	rd.dasher.Draw()
}

// withOpacity multiplies the alpha of c by o.
// rasterx.ApplyOpacity replaces the alpha instead.
func withOpacity(c color.NRGBA, o float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, o))))
	return c
}

// inherited returns the attribute of n or of its closest ancestor.
func inherited(n annosurface.Node, name string) string {
	for {
		if v := annosurface.Attr(n, name); v != "" {
			return v
		}
		p := annosurface.Parent(n)
		if p == nil {
			return ""
		}
		n = p
	}
}

func inheritedFloat(n annosurface.Node, name string, def float64) float64 {
	for {
		if annosurface.Attr(n, name) != "" {
			return annosurface.FloatAttr(n, name, def)
		}
		p := annosurface.Parent(n)
		if p == nil {
			return def
		}
		n = p
	}
}

// paint resolves the presentation attributes of a node
type paint struct {
	fill, stroke color.NRGBA
	width        float64
	dashes       []float64
}

func resolvePaint(n annosurface.Node, defaultFill string) paint {
	log := annolog.Logger()
	var out paint
	fill := inherited(n, "fill")
	if fill == "" {
		fill = defaultFill
	}
	var err error
	if out.fill, err = annosvg.ParseColor(fill); err != nil {
		log.Debug().Err(err).Msg("fill ignored")
	}
	if out.stroke, err = annosvg.ParseColor(inherited(n, "stroke")); err != nil {
		log.Debug().Err(err).Msg("stroke ignored")
	}
	out.width = inheritedFloat(n, "stroke-width", 1)
	if out.dashes, err = annosvg.ParseDashes(inherited(n, "stroke-dasharray")); err != nil {
		log.Debug().Err(err).Msg("dashes ignored")
	}
	return out
}

// drawPath paints a path node, or the path equivalent of a shape node.
func (rd *renderer) drawPath(n annosurface.Node, p annopath.Path, m annogeom.Matrix, defaultFill string) {
	st := resolvePaint(n, defaultFill)
	opacity := annosurface.Opacity(n)
	if st.fill.A != 0 {
		fillOpacity := inheritedFloat(n, "fill-opacity", 1)
		rd.fill(p, m, withOpacity(st.fill, opacity*fillOpacity), true)
	}
	if st.stroke.A != 0 {
		strokeOpacity := inheritedFloat(n, "stroke-opacity", 1)
		rd.stroke(p, m, withOpacity(st.stroke, opacity*strokeOpacity), st.width, st.dashes)
	}
}

func (rd *renderer) drawNode(n annosurface.Node, m annogeom.Matrix) {
	switch n := n.(type) {
	case *annosurface.Path:
		rd.drawPath(n, n.D, m, "black")
	case *annosurface.Rect:
		p := annopath.Rectangle(n.Width, n.Height).Transform(annogeom.Identity.Translate(n.X, n.Y))
		rd.drawPath(n, p, m, "black")
	case *annosurface.Line:
		rd.drawPath(n, annopath.Segment(annogeom.Pt(n.X1, n.Y1), annogeom.Pt(n.X2, n.Y2)), m, "none")
	case *annosurface.Text:
		rd.drawText(n, m)
	case *annosurface.Image:
		rd.drawImage(n, m)
	}
}

func (rd *renderer) drawText(n *annosurface.Text, m annogeom.Matrix) {
	if rd.font == nil || n.FontSize <= 0 {
		return
	}
	p, err := textOutline(rd.font, n)
	if err != nil {
		annolog.Logger().Warn().Err(err).Msg("text not drawn")
		return
	}
	fill := resolvePaint(n, "black").fill
	if fill.A == 0 {
		return
	}
	rd.fill(p, m, withOpacity(fill, annosurface.Opacity(n)), true)
}

// drawImage draws the decoded bitmap of n, or decodes its href.
// SVG payloads are drawn as vectors.
func (rd *renderer) drawImage(n *annosurface.Image, m annogeom.Matrix) {
	if n.Width <= 0 || n.Height <= 0 {
		return
	}
	log := annolog.Logger()
	opacity := annosurface.Opacity(n)
	local := m.Translate(n.X, n.Y)
	if src, ok := n.Data.(image.Image); ok && src != nil {
		rd.drawBitmap(src, local, n.Width, n.Height, opacity)
		return
	}
	if n.Href == "" {
		return
	}
	data, err := annomarker.DecodeDataURL(n.Href)
	if err != nil {
		log.Warn().Err(err).Msg("image not drawn")
		return
	}
	if strings.HasPrefix(n.Href, "data:image/svg+xml") {
		img, err := annosvg.ReadImage(bytes.NewReader(data))
		if err != nil {
			log.Warn().Err(err).Msg("svg image not drawn")
			return
		}
		rd.drawSVG(img, local.Mult(img.ViewBoxMatrix(n.Width, n.Height)), opacity)
		return
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("bitmap image not drawn")
		return
	}
	rd.drawBitmap(src, local, n.Width, n.Height, opacity)
}

// drawSVG paints the shapes of img, m mapping its viewBox to the output.
func (rd *renderer) drawSVG(img *annosvg.Image, m annogeom.Matrix, opacity float64) {
	for _, sh := range img.Shapes {
		st := sh.Style
		sm := m.Mult(st.Transform)
		o := opacity * st.Opacity
		if st.Fill.A != 0 {
			rd.fill(sh.Path, sm, withOpacity(st.Fill, o*st.FillOpacity), !st.EvenOdd)
		}
		if st.Stroke.A != 0 {
			rd.stroke(sh.Path, sm, withOpacity(st.Stroke, o*st.StrokeOpacity), st.StrokeWidth, st.Dashes)
		}
	}
}

// drawBitmap stretches src to a width x height box, placed by m.
func (rd *renderer) drawBitmap(src image.Image, m annogeom.Matrix, width, height, opacity float64) {
	sb := src.Bounds()
	if sb.Empty() || opacity <= 0 {
		return
	}
	sm := m.Scale(width/float64(sb.Dx()), height/float64(sb.Dy())).Translate(-float64(sb.Min.X), -float64(sb.Min.Y))
	aff := f64.Aff3{sm.A, sm.C, sm.E, sm.B, sm.D, sm.F}
	if opacity >= 1 {
		draw.CatmullRom.Transform(rd.dst, aff, src, sb, draw.Over, nil)
		return
	}
	// masks are not supported by Transform: go through a layer
	layer := image.NewRGBA(rd.dst.Bounds())
	draw.CatmullRom.Transform(layer, aff, src, sb, draw.Src, nil)
	mask := image.NewUniform(color.Alpha16{A: uint16(opacity * 0xffff)})
	draw.DrawMask(rd.dst, rd.dst.Bounds(), layer, layer.Bounds().Min, mask, image.Point{}, draw.Over)
}
