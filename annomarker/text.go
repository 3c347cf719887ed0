package annomarker

import (
	"context"
	"strings"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// DefaultText is the content of a new text marker.
const DefaultText = "Your text here"

// baselineRatio places the baseline in a line box.
const baselineRatio = 0.8

// TextMarker is a box variant showing a block of text, scaled to fit
// the box. The callout variant adds a tip pointing at TipPosition.
type TextMarker struct {
	RectangularBox
	Text       string
	Color      string
	FontFamily string
	FontSize   float64
	Padding    float64

	// callout only
	BgColor     string
	TipPosition annogeom.Point // in the box frame

	// Layout measures the text. When nil, DefaultLayout is used.
	Layout TextLayout
	Retry  Retry

	callout  bool
	textSize annogeom.Size // measured at FontSize

	group *annosurface.Group
	bg    *annosurface.Path
	node  *annosurface.Text
}

func newText(callout bool) *TextMarker {
	return &TextMarker{
		RectangularBox: newBox(),
		Text:           DefaultText,
		Color:          "#ff0000",
		FontFamily:     "Helvetica, Arial, sans-serif",
		FontSize:       16,
		Padding:        5,
		BgColor:        "#ffffff",
		Retry:          DefaultRetry,
		callout:        callout,
	}
}

func NewTextMarker() *TextMarker { return newText(false) }

// NewCalloutMarker returns a text marker with a tip.
func NewCalloutMarker() *TextMarker {
	m := newText(true)
	m.Color = "#ffffff"
	m.BgColor = "#ff0000"
	return m
}

func (m *TextMarker) TypeName() string {
	if m.callout {
		return "CalloutMarker"
	}
	return "TextMarker"
}

// IsCallout reports whether the marker has a tip.
func (m *TextMarker) IsCallout() bool { return m.callout }

func (m *TextMarker) layout() TextLayout {
	if m.Layout != nil {
		return m.Layout
	}
	if l, err := DefaultLayout(); err == nil {
		return l
	}
	return nil
}

// measure updates the text metrics, waiting for the layout to be ready.
func (m *TextMarker) measure(ctx context.Context) error {
	l := m.layout()
	if l == nil {
		return ErrNotReady
	}
	return WaitReady(ctx, m.Retry, func() error {
		size, err := l.Measure(m.Text, m.FontFamily, m.FontSize)
		if err != nil {
			return err
		}
		m.textSize = size
		return nil
	})
}

// TextSize returns the measured size of the text at FontSize.
func (m *TextMarker) TextSize() annogeom.Size { return m.textSize }

// SetText changes the content and resizes the box to fit it,
// keeping its top left corner in place.
func (m *TextMarker) SetText(ctx context.Context, text string) error {
	m.Text = text
	if err := m.measure(ctx); err != nil {
		return err
	}
	m.FitToText()
	return nil
}

// FitToText sizes the box after the measured text.
func (m *TextMarker) FitToText() {
	cm := m.Placement.ContainerMatrix()
	m.Width = m.textSize.Width + 2*m.Padding
	m.Height = m.textSize.Height + 2*m.Padding
	m.Recenter(cm)
	m.SetSize()
}

func (m *TextMarker) SetColor(color string) {
	m.Color = color
	if m.node != nil {
		annosurface.SetAttr(m.node, "fill", color)
	}
}

func (m *TextMarker) SetBgColor(color string) {
	m.BgColor = color
	m.setFill(color)
}

// SetFont changes the font and resizes the box.
func (m *TextMarker) SetFont(ctx context.Context, family string, size float64) error {
	m.FontFamily, m.FontSize = family, size
	if err := m.measure(ctx); err != nil {
		return err
	}
	m.FitToText()
	return nil
}

// Outline returns the background shape in the box frame.
func (m *TextMarker) Outline() annopath.Path {
	if m.callout {
		return calloutOutline(m.Width, m.Height, m.TipPosition)
	}
	return annopath.Rectangle(m.Width, m.Height)
}

// textTransform scales and centers the text in the box.
func (m *TextMarker) textTransform() annogeom.TransformList {
	tw, th := m.textSize.Width, m.textSize.Height
	if tw <= 0 || th <= 0 {
		return annogeom.TransformList{annogeom.Translation(m.Padding, m.Padding)}
	}
	s := min((m.Width-2*m.Padding)/tw, (m.Height-2*m.Padding)/th)
	if s <= 0 {
		s = 1e-3
	}
	return annogeom.TransformList{
		annogeom.Translation((m.Width-tw*s)/2, (m.Height-th*s)/2),
		annogeom.Scaling(s, s),
	}
}

func (m *TextMarker) lines() []string { return strings.Split(m.Text, "\n") }

func (m *TextMarker) CreateVisual(s *annosurface.Surface) {
	if m.textSize == (annogeom.Size{}) {
		if err := m.measure(context.Background()); err != nil {
			annolog.Logger().Warn().Err(err).Str("typeName", m.TypeName()).Msg("text layout")
		}
	}
	m.group = annosurface.NewGroup()
	m.bg = annosurface.NewPath(m.Outline())
	m.node = &annosurface.Text{}
	m.group.Append(m.bg, m.node)
	m.attachBox(s, m.group)

	if m.callout {
		m.addStroked(m.bg)
		m.addFilled(m.bg, m.BgColor)
	} else {
		// transparent, only used for picking
		annosurface.SetAttr(m.bg, "fill", "transparent")
	}
	annosurface.SetAttr(m.node, "fill", m.Color)
	m.SetSize()
}

func (m *TextMarker) SetSize() {
	m.applyPlacement()
	if m.node == nil {
		return
	}
	m.bg.D = m.Outline()
	lines := m.lines()
	lh := m.textSize.Height / float64(len(lines))
	m.node.Lines = lines
	m.node.FontFamily = m.FontFamily
	m.node.FontSize = m.FontSize
	m.node.LineHeight = lh
	m.node.X, m.node.Y = 0, lh*baselineRatio
	annosurface.SetTransforms(m.node, m.textTransform()...)
}

func (m *TextMarker) textState() TextState {
	return TextState{
		RectangularBoxState: m.boxState(m.TypeName()),
		Text:                m.Text,
		Color:               m.Color,
		FontFamily:          m.FontFamily,
		FontSize:            m.FontSize,
		Padding:             m.Padding,
	}
}

func (m *TextMarker) GetState() MarkerState {
	ts := m.textState()
	if m.callout {
		return &CalloutState{TextState: ts, BgColor: m.BgColor, TipPosition: m.TipPosition}
	}
	return &ts
}

func (m *TextMarker) RestoreState(state MarkerState) error {
	var ts *TextState
	switch s := state.(type) {
	case *CalloutState:
		if !m.callout {
			return ErrStateMismatch
		}
		ts = &s.TextState
		m.BgColor, m.TipPosition = s.BgColor, s.TipPosition
		m.SetBgColor(s.BgColor)
	case *TextState:
		if m.callout {
			return ErrStateMismatch
		}
		ts = s
	default:
		return ErrStateMismatch
	}
	m.restoreBox(&ts.RectangularBoxState)
	m.Text, m.FontFamily, m.FontSize, m.Padding = ts.Text, ts.FontFamily, ts.FontSize, ts.Padding
	m.SetColor(ts.Color)
	if err := m.measure(context.Background()); err != nil {
		return err
	}
	m.SetSize()
	return nil
}

// Scale also scales the font size, by the average factor.
func (m *TextMarker) Scale(sx, sy float64) {
	avg := (sx + sy) / 2
	m.scaleBox(sx, sy)
	m.scaleStroke(sx, sy)
	m.FontSize *= avg
	m.Padding *= avg
	m.textSize.Width *= avg
	m.textSize.Height *= avg
	m.TipPosition = m.TipPosition.Mul(sx, sy)
	m.SetSize()
}

// SetTipPosition moves the callout tip, given in the box frame.
func (m *TextMarker) SetTipPosition(p annogeom.Point) {
	m.TipPosition = p
	m.SetSize()
}

func (m *TextMarker) Destroy() {
	m.RectangularBox.Destroy()
	m.group, m.bg, m.node = nil, nil, nil
}

// calloutOutline returns the rectangle with a triangular tip
// going out of the edge facing tip.
func calloutOutline(w, h float64, tip annogeom.Point) annopath.Path {
	corners := []annogeom.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	inside := tip.X >= 0 && tip.X <= w && tip.Y >= 0 && tip.Y <= h
	if inside || w <= 0 || h <= 0 {
		return annopath.Polyline(corners, true)
	}
	// edge index, clockwise from the top edge
	var edge int
	switch {
	case tip.Y < 0:
		edge = 0
	case tip.X > w:
		edge = 1
	case tip.Y > h:
		edge = 2
	default:
		edge = 3
	}
	a, b := corners[edge], corners[(edge+1)%4]
	length := a.Dist(b)
	half := min(10, length/4)
	// position of the tip base along the edge
	var t float64
	if edge%2 == 0 {
		t = (tip.X - a.X) / (b.X - a.X) * length
	} else {
		t = (tip.Y - a.Y) / (b.Y - a.Y) * length
	}
	t = max(half, min(length-half, t))
	along := func(d float64) annogeom.Point {
		return annogeom.Pt(a.X+(b.X-a.X)*d/length, a.Y+(b.Y-a.Y)*d/length)
	}
	var pts []annogeom.Point
	for i := 0; i < 4; i++ {
		pts = append(pts, corners[i])
		if i == edge {
			pts = append(pts, along(t-half), tip, along(t+half))
		}
	}
	return annopath.Polyline(pts, true)
}
