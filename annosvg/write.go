// Converts between the annotation surface and SVG documents.
//
// Write exports a surface tree as a standalone document; ReadImage
// reads the SVG payload of image markers back into paths.
package annosvg

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/benoitkugler/okmarker/annosurface"
)

const svgNamespace = "http://www.w3.org/2000/svg"

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func floatAttr(name string, f float64) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: fmtFloat(f)}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Write writes the visible nodes of s as an SVG document of size
// width x height.
func Write(w io.Writer, s *annosurface.Surface, width, height float64) error {
	if s == nil || s.Root == nil {
		return annosurface.ErrNoSurface
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	root := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			attr("xmlns", svgNamespace),
			floatAttr("width", width),
			floatAttr("height", height),
			attr("viewBox", fmt.Sprintf("0 0 %s %s", fmtFloat(width), fmtFloat(height))),
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	for _, c := range s.Root.Children {
		if err := writeNode(enc, c); err != nil {
			return fmt.Errorf("writing svg: %w", err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return enc.Flush()
}

// presentation returns the attributes and transform of n, sorted by name.
func presentation(n annosurface.Node) []xml.Attr {
	attrs := annosurface.Attrs(n)
	out := make([]xml.Attr, 0, len(attrs)+1)
	for k, v := range attrs {
		out = append(out, attr(k, v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Local < out[j].Name.Local })
	if tr := *annosurface.Transforms(n); len(tr) != 0 {
		out = append(out, attr("transform", tr.String()))
	}
	return out
}

func writeNode(enc *xml.Encoder, n annosurface.Node) error {
	if annosurface.IsHidden(n) {
		return nil
	}
	var (
		se    xml.StartElement
		inner func() error
	)
	switch n := n.(type) {
	case *annosurface.Group:
		se.Name.Local = "g"
		inner = func() error {
			for _, c := range n.Children {
				if err := writeNode(enc, c); err != nil {
					return err
				}
			}
			return nil
		}
	case *annosurface.Path:
		se.Name.Local = "path"
		se.Attr = []xml.Attr{attr("d", n.D.ToSVGPath())}
	case *annosurface.Line:
		se.Name.Local = "line"
		se.Attr = []xml.Attr{floatAttr("x1", n.X1), floatAttr("y1", n.Y1), floatAttr("x2", n.X2), floatAttr("y2", n.Y2)}
	case *annosurface.Rect:
		se.Name.Local = "rect"
		se.Attr = []xml.Attr{floatAttr("x", n.X), floatAttr("y", n.Y), floatAttr("width", n.Width), floatAttr("height", n.Height)}
	case *annosurface.Image:
		se.Name.Local = "image"
		se.Attr = []xml.Attr{
			floatAttr("x", n.X), floatAttr("y", n.Y),
			floatAttr("width", n.Width), floatAttr("height", n.Height),
			attr("href", n.Href),
			attr("preserveAspectRatio", "none"),
		}
	case *annosurface.Text:
		se.Name.Local = "text"
		se.Attr = []xml.Attr{floatAttr("x", n.X), floatAttr("y", n.Y)}
		if n.FontFamily != "" {
			se.Attr = append(se.Attr, attr("font-family", n.FontFamily))
		}
		if n.FontSize != 0 {
			se.Attr = append(se.Attr, floatAttr("font-size", n.FontSize))
		}
		inner = func() error { return writeLines(enc, n) }
	default:
		return fmt.Errorf("unsupported node %T", n)
	}
	se.Attr = append(se.Attr, presentation(n)...)
	if err := enc.EncodeToken(se); err != nil {
		return err
	}
	if inner != nil {
		if err := inner(); err != nil {
			return err
		}
	}
	return enc.EncodeToken(se.End())
}

// writeLines emits one tspan per line, the first one on the text baseline.
func writeLines(enc *xml.Encoder, n *annosurface.Text) error {
	for i, line := range n.Lines {
		dy := n.LineHeight
		if i == 0 {
			dy = 0
		}
		ts := xml.StartElement{
			Name: xml.Name{Local: "tspan"},
			Attr: []xml.Attr{floatAttr("x", n.X), floatAttr("dy", dy)},
		}
		if err := enc.EncodeToken(ts); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(line)); err != nil {
			return err
		}
		if err := enc.EncodeToken(ts.End()); err != nil {
			return err
		}
	}
	return nil
}
