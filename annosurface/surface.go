// Implements the abstract vector surface markers draw on.
// The tree of nodes says what to draw; how to draw it is left to
// a backend walking the tree, such as a rasterizer or an SVG writer.
package annosurface

import (
	"errors"
	"strconv"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annopath"
)

// ErrNoSurface is raised when an operation needs a drawing surface
// which has not been attached yet.
var ErrNoSurface = errors.New("annosurface: drawing surface not initialized")

// Node is an element of the surface tree.
type Node interface {
	base() *nodeBase
}

type nodeBase struct {
	attrs     map[string]string
	transform annogeom.TransformList
	parent    *Group

	// Hidden nodes are skipped by backends.
	Hidden bool
	// NoPointerEvents excludes the node from picking.
	NoPointerEvents bool
}

func (b *nodeBase) base() *nodeBase { return b }

// SetAttr sets a presentation attribute (stroke, fill, opacity...).
// Numbers are formatted with the shortest representation.
// An empty string removes the attribute.
func SetAttr(n Node, name string, value any) {
	b := n.base()
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case bool:
		s = strconv.FormatBool(v)
	}
	if s == "" {
		delete(b.attrs, name)
		return
	}
	if b.attrs == nil {
		b.attrs = make(map[string]string)
	}
	b.attrs[name] = s
}

// Attr returns the attribute value, or "" if not set.
func Attr(n Node, name string) string { return n.base().attrs[name] }

// FloatAttr returns the attribute parsed as a number, or def.
func FloatAttr(n Node, name string, def float64) float64 {
	v, ok := n.base().attrs[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Attrs returns the attribute names and values, for backends.
func Attrs(n Node) map[string]string { return n.base().attrs }

// Transforms returns the transform stack of the node,
// which may be edited in place.
func Transforms(n Node) *annogeom.TransformList { return &n.base().transform }

// SetTransforms replaces the transform stack.
func SetTransforms(n Node, l ...annogeom.Transform) { n.base().transform = l }

// Parent returns the group holding n, or nil.
func Parent(n Node) *Group { return n.base().parent }

// IsHidden reports whether n is skipped by backends.
func IsHidden(n Node) bool { return n.base().Hidden }

// Pickable reports whether n and its ancestors accept pointer events.
func Pickable(n Node) bool {
	for ; n != nil; n = nodeOrNil(Parent(n)) {
		if n.base().NoPointerEvents {
			return false
		}
	}
	return true
}

// nodeOrNil avoids the typed nil trap of a nil *Group stored in a Node.
func nodeOrNil(g *Group) Node {
	if g == nil {
		return nil
	}
	return g
}

// Contains reports whether n is ancestor or equal to target.
func Contains(n Node, target Node) bool {
	for t := target; t != nil; t = nodeOrNil(Parent(t)) {
		if t == n {
			return true
		}
	}
	return false
}

// CumulativeMatrix returns the product of the transform stacks
// of n and all its ancestors: it maps n local coordinates to
// surface coordinates.
func CumulativeMatrix(n Node) annogeom.Matrix {
	m := annogeom.Identity
	for t := n; t != nil; t = nodeOrNil(Parent(t)) {
		m = t.base().transform.Consolidate().Mult(m)
	}
	return m
}

// Group holds an ordered list of children.
type Group struct {
	nodeBase
	Children []Node
}

// Append adds the nodes at the end of g, detaching them
// from their previous group.
func (g *Group) Append(nodes ...Node) {
	for _, n := range nodes {
		if p := Parent(n); p != nil {
			p.Remove(n)
		}
		n.base().parent = g
		g.Children = append(g.Children, n)
	}
}

// Remove detaches n from g. It is a no-op if n is not a child of g.
func (g *Group) Remove(n Node) {
	for i, c := range g.Children {
		if c == n {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			n.base().parent = nil
			return
		}
	}
}

// Path draws a path description.
type Path struct {
	nodeBase
	D annopath.Path
}

// Line draws a single segment.
type Line struct {
	nodeBase
	X1, Y1, X2, Y2 float64
}

// Rect draws an axis aligned rectangle, in local coordinates.
type Rect struct {
	nodeBase
	X, Y, Width, Height float64
}

// Text draws lines of text, the first baseline at (X, Y).
type Text struct {
	nodeBase
	X, Y       float64
	Lines      []string
	FontFamily string
	FontSize   float64
	LineHeight float64 // distance between baselines
}

// Image draws a bitmap, stretched to Width x Height.
type Image struct {
	nodeBase
	X, Y, Width, Height float64
	Href                string // data URL, used by SVG output
	Data                ImageData
}

// ImageData is the decoded content of an Image node.
// It is an image.Image, kept opaque here.
type ImageData interface{}

// NewGroup returns an empty group.
func NewGroup() *Group { return &Group{} }

func NewPath(d annopath.Path) *Path { return &Path{D: d} }

func NewLine(x1, y1, x2, y2 float64) *Line { return &Line{X1: x1, Y1: y1, X2: x2, Y2: y2} }

func NewRect(x, y, width, height float64) *Rect {
	return &Rect{X: x, Y: y, Width: width, Height: height}
}

// Surface is the root of a drawing, Width x Height units wide.
type Surface struct {
	Root          *Group
	Width, Height float64
}

// New returns an empty surface.
func New(width, height float64) *Surface {
	return &Surface{Root: NewGroup(), Width: width, Height: height}
}

// Walk visits the visible nodes depth first, in painting order.
// m is the cumulative matrix from the node local coordinates to the surface.
// Returning an error stops the walk.
func (s *Surface) Walk(fn func(n Node, m annogeom.Matrix) error) error {
	if s == nil || s.Root == nil {
		return ErrNoSurface
	}
	return walk(s.Root, annogeom.Identity, fn)
}

func walk(n Node, parent annogeom.Matrix, fn func(n Node, m annogeom.Matrix) error) error {
	b := n.base()
	if b.Hidden {
		return nil
	}
	m := parent.Mult(b.transform.Consolidate())
	if err := fn(n, m); err != nil {
		return err
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.Children {
			if err := walk(c, m, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Opacity returns the product of the opacity attributes of
// n and its ancestors.
func Opacity(n Node) float64 {
	o := 1.
	for t := n; t != nil; t = nodeOrNil(Parent(t)) {
		o *= FloatAttr(t, "opacity", 1)
	}
	return o
}
