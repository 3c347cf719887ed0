// Implements the small handles exposed by the manipulation engine
// to resize, rotate and edit markers.
package annogrip

import (
	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// DefaultSize is the diameter of the visible disc of a grip.
const DefaultSize = 10

// GripLocation identifies the eight resize handles of a box.
type GripLocation uint8

const (
	TopLeft GripLocation = iota
	TopCenter
	TopRight
	LeftCenter
	RightCenter
	BottomLeft
	BottomCenter
	BottomRight
)

// Locations lists the resize handles, in drawing order.
var Locations = [...]GripLocation{TopLeft, TopCenter, TopRight, LeftCenter, RightCenter, BottomLeft, BottomCenter, BottomRight}

func (l GripLocation) String() string {
	switch l {
	case TopLeft:
		return "topleft"
	case TopCenter:
		return "topcenter"
	case TopRight:
		return "topright"
	case LeftCenter:
		return "leftcenter"
	case RightCenter:
		return "rightcenter"
	case BottomLeft:
		return "bottomleft"
	case BottomCenter:
		return "bottomcenter"
	case BottomRight:
		return "bottomright"
	default:
		return "<unknown GripLocation>"
	}
}

// Factors returns the position of the handle in a box, as fractions
// of its width and height.
func (l GripLocation) Factors() (fx, fy float64) {
	switch l {
	case TopLeft:
		return 0, 0
	case TopCenter:
		return 0.5, 0
	case TopRight:
		return 1, 0
	case LeftCenter:
		return 0, 0.5
	case RightCenter:
		return 1, 0.5
	case BottomLeft:
		return 0, 1
	case BottomCenter:
		return 0.5, 1
	default:
		return 1, 1
	}
}

// Position returns the handle position for the given box.
func (l GripLocation) Position(r annogeom.Rect) annogeom.Point {
	fx, fy := l.Factors()
	return annogeom.Pt(r.Left+fx*r.Width, r.Top+fy*r.Height)
}

// IsCorner is true for the handles driving both dimensions.
func (l GripLocation) IsCorner() bool {
	return l == TopLeft || l == TopRight || l == BottomLeft || l == BottomRight
}

// Kind distinguishes the grip widgets.
type Kind uint8

const (
	Resize Kind = iota
	Rotate
	Point
)

// Grip is a handle widget: a small disc, with a larger
// invisible disc used for picking.
type Grip struct {
	Kind Kind
	// Location is used by resize grips.
	Location GripLocation
	// Index is the point edited by a point grip.
	Index int

	Center annogeom.Point
	Size   float64

	visual *annosurface.Group
	disc   *annosurface.Path
	hit    *annosurface.Path
}

func newGrip(kind Kind, size float64) *Grip {
	if size <= 0 {
		size = DefaultSize
	}
	g := &Grip{Kind: kind, Size: size}
	g.visual = annosurface.NewGroup()
	g.hit = annosurface.NewPath(annopath.Ellipse(0, 0, size, size))
	annosurface.SetAttr(g.hit, "fill", "transparent")
	r := size / 2
	g.disc = annosurface.NewPath(annopath.Ellipse(0, 0, r, r))
	annosurface.SetAttr(g.disc, "fill", "#cccccc")
	annosurface.SetAttr(g.disc, "fill-opacity", 0.7)
	annosurface.SetAttr(g.disc, "stroke", "#333333")
	annosurface.SetAttr(g.disc, "stroke-width", 1)
	g.visual.Append(g.hit, g.disc)
	return g
}

// NewResizeGrip returns the handle at loc of a box.
func NewResizeGrip(loc GripLocation, size float64) *Grip {
	g := newGrip(Resize, size)
	g.Location = loc
	return g
}

func NewRotateGrip(size float64) *Grip {
	g := newGrip(Rotate, size)
	annosurface.SetAttr(g.disc, "fill", "#ffffff")
	return g
}

// NewPointGrip returns the handle of the point at index.
func NewPointGrip(index int, size float64) *Grip {
	g := newGrip(Point, size)
	g.Index = index
	return g
}

// Visual returns the node to add to a surface.
func (g *Grip) Visual() *annosurface.Group { return g.visual }

// MoveTo centers the grip on p, in the frame of its parent node.
func (g *Grip) MoveTo(p annogeom.Point) {
	g.Center = p
	annosurface.SetTransforms(g.visual, annogeom.Translation(p.X, p.Y))
}

// OwnsTarget reports whether n is part of the grip.
func (g *Grip) OwnsTarget(n annosurface.Node) bool {
	return n != nil && annosurface.Contains(g.visual, n)
}

// SetPickable enables or disables pointer events on the grip.
func (g *Grip) SetPickable(pickable bool) { g.visual.NoPointerEvents = !pickable }

func (g *Grip) Pickable() bool { return !g.visual.NoPointerEvents }

// Contains reports whether p, in the frame of the grip parent,
// is on the grip picking disc.
func (g *Grip) Contains(p annogeom.Point) bool {
	return g.Center.Dist(p) <= g.Size
}
