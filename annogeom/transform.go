package annogeom

import (
	"fmt"
	"strings"
)

// TransformKind identifies an entry of a transform stack.
type TransformKind uint8

const (
	TransformMatrix TransformKind = iota
	TransformTranslate
	TransformScale
	TransformRotate
)

func (k TransformKind) String() string {
	switch k {
	case TransformMatrix:
		return "matrix"
	case TransformTranslate:
		return "translate"
	case TransformScale:
		return "scale"
	case TransformRotate:
		return "rotate"
	default:
		return "<unknown TransformKind>"
	}
}

// Transform is one entry of a transform stack. Only the fields
// relevant for Kind are used.
type Transform struct {
	Kind TransformKind

	M Matrix // TransformMatrix

	X, Y float64 // TransformTranslate offsets, TransformScale factors

	Angle  float64 // TransformRotate, in degrees
	CX, CY float64 // TransformRotate pivot
}

func Translation(x, y float64) Transform { return Transform{Kind: TransformTranslate, X: x, Y: y} }

func Scaling(sx, sy float64) Transform { return Transform{Kind: TransformScale, X: sx, Y: sy} }

// Rotation rotates by angle degrees around (cx, cy).
func Rotation(angle, cx, cy float64) Transform {
	return Transform{Kind: TransformRotate, Angle: angle, CX: cx, CY: cy}
}

func MatrixTransform(m Matrix) Transform { return Transform{Kind: TransformMatrix, M: m} }

// Matrix returns the affine matrix of the entry.
func (t Transform) Matrix() Matrix {
	switch t.Kind {
	case TransformTranslate:
		return Identity.Translate(t.X, t.Y)
	case TransformScale:
		return Identity.Scale(t.X, t.Y)
	case TransformRotate:
		return Identity.RotateAbout(t.Angle, t.CX, t.CY)
	default:
		return t.M
	}
}

// String uses the SVG transform syntax.
func (t Transform) String() string {
	switch t.Kind {
	case TransformTranslate:
		return fmt.Sprintf("translate(%g %g)", t.X, t.Y)
	case TransformScale:
		return fmt.Sprintf("scale(%g %g)", t.X, t.Y)
	case TransformRotate:
		return fmt.Sprintf("rotate(%g %g %g)", t.Angle, t.CX, t.CY)
	default:
		m := t.M
		return fmt.Sprintf("matrix(%g %g %g %g %g %g)", m.A, m.B, m.C, m.D, m.E, m.F)
	}
}

// TransformList is an ordered transform stack, applied
// as in SVG: the last entry is the closest to the element.
type TransformList []Transform

// Consolidate multiplies the stack into a single matrix.
func (l TransformList) Consolidate() Matrix {
	m := Identity
	for _, t := range l {
		m = m.Mult(t.Matrix())
	}
	return m
}

// FromMatrix returns the one-entry stack equivalent to m.
func FromMatrix(m Matrix) TransformList {
	return TransformList{MatrixTransform(m)}
}

func (l TransformList) String() string {
	chunks := make([]string, len(l))
	for i, t := range l {
		chunks[i] = t.String()
	}
	return strings.Join(chunks, " ")
}
