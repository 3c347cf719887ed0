package annomarker

import (
	"context"
	"math"
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNamesAreUnique(t *testing.T) {
	names := DefaultRegistry.TypeNames()
	require.Len(t, names, 13)
	for _, name := range names {
		m, err := DefaultRegistry.New(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.TypeName())

		s, err := DefaultRegistry.NewState(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
}

func TestUnknownVariant(t *testing.T) {
	_, err := DefaultRegistry.New("frameMarker") // case sensitive
	assert.ErrorIs(t, err, ErrUnknownVariant)
	_, ok := DefaultRegistry.Lookup("NeonMarker")
	assert.False(t, ok)
	_, err = DefaultRegistry.FromState(&LinearState{BaseState: BaseState{TypeName: "NeonMarker"}})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestRotateUnrotate(t *testing.T) {
	b := NewFrameMarker()
	b.SetRect(annogeom.Rect{Left: 10, Top: 20, Width: 100, Height: 80})
	points := []annogeom.Point{{X: 0, Y: 0}, {X: 60, Y: 60}, {X: -340.5, Y: 17}, {X: 1e4, Y: -3e3}}
	for angle := -360.; angle <= 360; angle += 7.5 {
		b.SetRotationAngle(angle)
		for _, p := range points {
			back := b.UnrotatePoint(b.RotatePoint(p))
			assert.True(t, back.Near(p), "angle %g: %v != %v", angle, back, p)
		}
	}

	// the center is the pivot
	b.SetRotationAngle(33)
	c := annogeom.Pt(b.CenterX(), b.CenterY())
	assert.True(t, b.RotatePoint(c).Near(c))
	// rotation never changes left/top
	assert.Equal(t, 10., b.Left)
	assert.Equal(t, 20., b.Top)
}

func TestRotationAngleSweep(t *testing.T) {
	b := NewFrameMarker()
	b.SetRect(annogeom.Rect{Left: 0, Top: 0, Width: 40, Height: 40})
	const radius = 50
	for deg := -180.; deg <= 360; deg += 0.5 {
		rad := deg * math.Pi / 180
		p := annogeom.Pt(20+radius*math.Sin(rad), 20-radius*math.Cos(rad))
		got := b.RotationAngleFor(p)
		assert.True(t, annogeom.Identity.Rotate(got).Near(annogeom.Identity.Rotate(deg)),
			"angle %g: got %g", deg, got)
	}

	// dead zone around the vertical through the center
	for _, dx := range []float64{-0.1, -0.05, 0, 0.05, 0.1} {
		above := b.RotationAngleFor(annogeom.Pt(20+dx, -30))
		below := b.RotationAngleFor(annogeom.Pt(20+dx, 70))
		assert.InDelta(t, 0, above, 0.2)
		assert.InDelta(t, 180, math.Abs(below), 0.2)
	}
	// on the center, the angle is kept
	b.SetRotationAngle(12)
	assert.Equal(t, 12., b.RotationAngleFor(annogeom.Pt(20, 20)))
}

func TestRotateKeepsPivot(t *testing.T) {
	b := NewFrameMarker()
	b.SetRect(annogeom.Rect{Left: 0, Top: 0, Width: 40, Height: 20})
	b.Rotate(annogeom.Pt(100, 10)) // to the right of the center
	assert.InDelta(t, 90, b.RotationAngle, 1e-9)
	assert.Equal(t, 0., b.Left)
	assert.Equal(t, Rotation{Angle: 90, CX: 20, CY: 10}, b.Placement.Rotation)
	assert.Equal(t, Translation{}, b.Placement.Translation)
}

func TestRecenter(t *testing.T) {
	b := NewFrameMarker()
	b.SetRect(annogeom.Rect{Left: 0, Top: 0, Width: 40, Height: 20})
	b.SetRotationAngle(90)
	start := b.Placement.ContainerMatrix()
	topLeft := start.Apply(annogeom.Pt(0, 0))

	// grow from the top left corner, computed in the start frame
	b.Width, b.Height = 80, 60
	b.Recenter(start)
	got := b.Placement.ContainerMatrix().Apply(annogeom.Pt(b.Left, b.Top))
	assert.True(t, got.Near(topLeft), "%v != %v", got, topLeft)
}

func newSampleMarkers(t *testing.T) []Marker {
	frame := NewFrameMarker()
	frame.SetRect(annogeom.Rect{Left: 10, Top: 20, Width: 100, Height: 50})
	frame.SetRotationAngle(30)
	frame.SetStrokeDasharray("3 3")
	frame.Notes = "check this"

	ellipse := NewEllipseMarker()
	ellipse.SetRect(annogeom.Rect{Left: 1, Top: 2, Width: 3, Height: 4})
	ellipse.SetFillColor("#00ff00")

	arrow := NewArrowMarker()
	arrow.SetEndpoints(annogeom.Pt(1, 2), annogeom.Pt(30, 40))
	arrow.SetArrowType(ArrowBoth)

	measure := NewMeasurementMarker()
	measure.SetEndpoints(annogeom.Pt(5, 5), annogeom.Pt(5, 90))

	poly := NewPolygonMarker()
	poly.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	poly.State = StateSelect

	free := NewFreehandMarker()
	free.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 1, Y: 3}, {X: 4, Y: 5}}

	text := NewTextMarker()
	require.NoError(t, text.SetText(context.Background(), "Hello\nworld"))
	text.MoveVisual(annogeom.Pt(40, 40))

	callout := NewCalloutMarker()
	require.NoError(t, callout.SetText(context.Background(), "Look"))
	callout.SetTipPosition(annogeom.Pt(-20, 80))

	img := NewCustomImageMarker()
	img.SetRect(annogeom.Rect{Left: 5, Top: 5, Width: 20, Height: 20})
	img.SetImage(ImageSVG, `<svg xmlns="http://www.w3.org/2000/svg"/>`)

	return []Marker{frame, ellipse, NewCoverMarker(), NewHighlightMarker(), NewEllipseFrameMarker(),
		NewLineMarker(), arrow, measure, poly, free, text, callout, img}
}

func TestStateRoundTrip(t *testing.T) {
	for _, m := range newSampleMarkers(t) {
		state := m.GetState()
		assert.Equal(t, m.TypeName(), state.Common().TypeName)

		restored, err := DefaultRegistry.FromState(state)
		require.NoError(t, err, m.TypeName())
		assert.Equal(t, state, restored.GetState(), m.TypeName())
	}
}

func TestStateMismatch(t *testing.T) {
	assert.ErrorIs(t, NewLineMarker().RestoreState(&ArrowState{}), ErrStateMismatch)
	assert.ErrorIs(t, NewArrowMarker().RestoreState(&LinearState{}), ErrStateMismatch)
	assert.ErrorIs(t, NewTextMarker().RestoreState(&CalloutState{}), ErrStateMismatch)
	assert.ErrorIs(t, NewFrameMarker().RestoreState(&PolygonState{}), ErrStateMismatch)
}

func TestStateClone(t *testing.T) {
	poly := NewPolygonMarker()
	poly.Points = []annogeom.Point{{X: 1, Y: 1}}
	s := poly.GetState().(*PolygonState)
	c := s.Clone().(*PolygonState)
	c.Points[0].X = 99
	assert.Equal(t, 1., s.Points[0].X)
	// the marker does not share its points with its state
	s.Points[0].Y = 42
	assert.Equal(t, 1., poly.Points[0].Y)
}

func TestStaleContainerMatrix(t *testing.T) {
	// a box rotated by 90 degrees about the origin instead of its center
	s := &ShapeState{RectangularBoxState: RectangularBoxState{
		BaseState:                BaseState{TypeName: "FrameMarker", StrokeWidth: 1, Opacity: 1},
		Left:                     10,
		Top:                      0,
		Width:                    20,
		Height:                   10,
		RotationAngle:            90,
		ContainerTransformMatrix: annogeom.Identity.RotateAbout(90, 0, 0),
	}}
	m, err := DefaultRegistry.FromState(s)
	require.NoError(t, err)
	box := m.(BoxMarker).Box()
	// the center (20, 5) was shown at (-5, 20)
	assert.InDelta(t, -5, box.CenterX(), 1e-9)
	assert.InDelta(t, 20, box.CenterY(), 1e-9)
}

func TestScale(t *testing.T) {
	frame := NewFrameMarker()
	frame.SetRect(annogeom.Rect{Left: 10, Top: 20, Width: 100, Height: 50})
	frame.SetStrokeWidth(4)
	frame.Scale(0.5, 0.5)
	assert.Equal(t, annogeom.Rect{Left: 5, Top: 10, Width: 50, Height: 25}, frame.Rect())
	assert.Equal(t, 2., frame.StrokeWidth)

	line := NewLineMarker()
	line.SetEndpoints(annogeom.Pt(10, 10), annogeom.Pt(20, 40))
	line.SetStrokeWidth(3)
	line.Scale(2, 1)
	assert.Equal(t, []annogeom.Point{{X: 20, Y: 10}, {X: 40, Y: 40}}, line.PointList())
	assert.Equal(t, 4.5, line.StrokeWidth)

	poly := NewPolygonMarker()
	poly.Points = []annogeom.Point{{X: 2, Y: 4}, {X: 6, Y: 8}}
	poly.Scale(0.5, 0.25)
	assert.Equal(t, []annogeom.Point{{X: 1, Y: 1}, {X: 3, Y: 2}}, poly.Points)

	text := NewTextMarker()
	text.FontSize = 20
	text.Scale(0.5, 0.5)
	assert.Equal(t, 10., text.FontSize)
}

func TestVisual(t *testing.T) {
	s := annosurface.New(200, 200)
	frame := NewFrameMarker()
	frame.SetRect(annogeom.Rect{Left: 10, Top: 20, Width: 30, Height: 40})
	frame.CreateVisual(s)
	require.Len(t, s.Root.Children, 1)
	assert.Equal(t, frame.Container(), s.Root.Children[0])

	node := frame.node
	assert.True(t, frame.OwnsTarget(node))
	assert.False(t, frame.OwnsTarget(s.Root))
	assert.Equal(t, "M0 0 L30 0 L30 40 L0 40 Z", node.D.ToSVGPath())
	assert.Equal(t, "translate(10 20)", annosurface.Transforms(node).String())

	frame.SetStrokeColor("blue")
	frame.SetStrokeWidth(7)
	assert.Equal(t, "blue", annosurface.Attr(node, "stroke"))
	assert.Equal(t, "7", annosurface.Attr(node, "stroke-width"))

	frame.SetRotationAngle(45)
	assert.Equal(t, "rotate(45 25 40)", annosurface.Transforms(frame.Container()).String())

	other := NewLineMarker()
	other.CreateVisual(s)
	assert.False(t, frame.OwnsTarget(other.line))
	other.SetEndpoints(annogeom.Pt(1, 2), annogeom.Pt(30, 40))
	assert.Equal(t, [4]float64{1, 2, 30, 40}, [4]float64{other.line.X1, other.line.Y1, other.line.X2, other.line.Y2})
	assert.Equal(t, "none", annosurface.Attr(other.line, "fill"))

	frame.Destroy()
	assert.Len(t, s.Root.Children, 1)
	assert.Nil(t, frame.Container())
}

func TestCreateVisualWithoutSurface(t *testing.T) {
	assert.PanicsWithValue(t, annosurface.ErrNoSurface, func() {
		NewFrameMarker().CreateVisual(nil)
	})
}

func TestPolygonPoints(t *testing.T) {
	poly := NewPolygonMarker()
	poly.State = StateSelect
	poly.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	assert.True(t, poly.Closed())
	assert.Equal(t, "M0 0 L10 0 L10 10 Z", poly.Path().ToSVGPath())

	// closing edge
	i, proj := poly.NearestSegment(annogeom.Pt(4, 6))
	assert.Equal(t, 2, i)
	assert.True(t, proj.Near(annogeom.Pt(5, 5)))

	poly.InsertPoint(i+1, proj)
	assert.Len(t, poly.Points, 4)
	assert.True(t, poly.DeletePoint(3))
	assert.False(t, poly.DeletePoint(0), "minimum of 3 points")

	free := NewFreehandMarker()
	free.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	assert.False(t, free.Closed())
	assert.Equal(t, "M0 0 L10 0 L10 10", free.Path().ToSVGPath())
}

func TestHitTest(t *testing.T) {
	frame := NewFrameMarker()
	frame.SetRect(annogeom.Rect{Left: 0, Top: 0, Width: 100, Height: 10})
	assert.True(t, HitTest(frame, annogeom.Pt(90, 5), 0))
	frame.SetRotationAngle(90) // now vertical, centered on (50, 5)
	assert.False(t, HitTest(frame, annogeom.Pt(90, 5), 0))
	assert.True(t, HitTest(frame, annogeom.Pt(50, 45), 0))

	line := NewLineMarker()
	line.SetStrokeWidth(2)
	line.SetEndpoints(annogeom.Pt(0, 0), annogeom.Pt(100, 0))
	assert.True(t, HitTest(line, annogeom.Pt(50, 2.5), 2))
	assert.False(t, HitTest(line, annogeom.Pt(50, 10), 2))

	poly := NewPolygonMarker()
	poly.State = StateSelect
	poly.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	assert.True(t, HitTest(poly, annogeom.Pt(50, 50), 0))
	assert.False(t, HitTest(poly, annogeom.Pt(150, 50), 1))

	free := NewFreehandMarker()
	free.Points = poly.Points
	assert.False(t, HitTest(free, annogeom.Pt(50, 50), 1))
	assert.True(t, HitTest(free, annogeom.Pt(50, 1), 1))

	// self intersecting: only the outline
	bowtie := NewPolygonMarker()
	bowtie.State = StateSelect
	bowtie.Points = []annogeom.Point{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	assert.False(t, HitTest(bowtie, annogeom.Pt(90, 50), 1))
	assert.True(t, HitTest(bowtie, annogeom.Pt(50, 50), 0))

	dot := NewPolygonMarker()
	dot.State = StateSelect
	dot.Points = []annogeom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}
	assert.True(t, HitTest(dot, annogeom.Pt(6, 5), 1))
	assert.False(t, HitTest(dot, annogeom.Pt(20, 5), 1))
}

func TestBounds(t *testing.T) {
	frame := NewFrameMarker()
	frame.SetRect(annogeom.Rect{Left: 0, Top: 0, Width: 100, Height: 10})
	frame.SetRotationAngle(90)
	b := Bounds(frame)
	assert.InDelta(t, 45, b.Left, 1e-9)
	assert.InDelta(t, 10, b.Width, 1e-9)
	assert.InDelta(t, 100, b.Height, 1e-9)

	line := NewLineMarker()
	line.SetEndpoints(annogeom.Pt(10, 30), annogeom.Pt(0, 0))
	assert.Equal(t, annogeom.Rect{Left: 0, Top: 0, Width: 10, Height: 30}, Bounds(line))
}

func TestStateKeepsID(t *testing.T) {
	frame := NewFrameMarker()
	other := NewFrameMarker()
	assert.NotEmpty(t, frame.ID)
	assert.NotEqual(t, frame.ID, other.ID)

	s := frame.GetState()
	assert.Equal(t, frame.ID, s.Common().ID)
	m, err := DefaultRegistry.FromState(s)
	require.NoError(t, err)
	assert.Equal(t, frame.ID, m.MarkerBase().ID)

	// older snapshots have no id: the generated one is kept
	s.Common().ID = ""
	require.NoError(t, other.RestoreState(s))
	assert.NotEmpty(t, other.ID)
	assert.NotEqual(t, frame.ID, other.ID)
}
