package annoraster

import (
	"fmt"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// textOutline returns the glyph outlines of n, in the local
// coordinates of the node. Drawing outlines rather than a
// bitmap face keeps rotated and scaled text exact.
func textOutline(f *sfnt.Font, n *annosurface.Text) (annopath.Path, error) {
	var (
		buf  sfnt.Buffer
		out  annopath.Path
		ppem = fixed.Int26_6(n.FontSize * 64)
	)
	for i, line := range n.Lines {
		baseline := n.Y + float64(i)*n.LineHeight
		pen := n.X
		prev, hasPrev := sfnt.GlyphIndex(0), false
		for _, r := range line {
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil {
				return nil, fmt.Errorf("glyph for %q: %w", r, err)
			}
			if hasPrev {
				// fonts without kerning table return an error
				if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
					pen += float64(k) / 64
				}
			}
			segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
			if err != nil {
				return nil, fmt.Errorf("glyph for %q: %w", r, err)
			}
			appendGlyph(&out, segs, annogeom.Pt(pen, baseline))
			adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
			if err != nil {
				return nil, fmt.Errorf("advance for %q: %w", r, err)
			}
			pen += float64(adv) / 64
			prev, hasPrev = idx, true
		}
	}
	return out, nil
}

func appendGlyph(out *annopath.Path, segs sfnt.Segments, origin annogeom.Point) {
	pt := func(p fixed.Point26_6) annogeom.Point { return origin.Add(annogeom.FromFixed(p)) }
	open := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				out.Stop(true)
			}
			out.Start(pt(s.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			out.Line(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			out.QuadBezier(pt(s.Args[0]), pt(s.Args[1]))
		case sfnt.SegmentOpCubeTo:
			out.CubeBezier(pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2]))
		}
	}
	if open {
		out.Stop(true)
	}
}
