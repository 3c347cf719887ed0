package annoraster

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annostate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// sampleState holds a red frame and a black cover on a 100 x 100 canvas.
func sampleState() *annostate.AnnotationState {
	frame := annomarker.NewFrameMarker()
	frame.Left, frame.Top, frame.Width, frame.Height = 10, 10, 50, 40
	frame.StrokeColor, frame.StrokeWidth = "#ff0000", 4

	cover := annomarker.NewCoverMarker()
	cover.Left, cover.Top, cover.Width, cover.Height = 70, 70, 20, 20

	st := annostate.New(100, 100)
	st.Markers = append(st.Markers, frame.GetState(), cover.GetState())
	return st
}

func TestRender(t *testing.T) {
	st := sampleState()
	backing := uniform(200, 200, white)
	out, err := Render(context.Background(), st, backing, Options{})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 200, 200), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(20, 60))     // left edge of the frame, scaled x2
	assert.Equal(t, white, out.RGBAAt(70, 60))   // inside the frame
	assert.Equal(t, white, out.RGBAAt(5, 5))     // outside
	assert.Equal(t, black, out.RGBAAt(160, 160)) // cover

	// the snapshot is not modified
	assert.Equal(t, 100., st.Width)
	assert.Equal(t, 10., st.Markers[0].(*annomarker.ShapeState).Left)
}

func TestRenderOptions(t *testing.T) {
	ctx := context.Background()

	out, err := Render(ctx, sampleState(), uniform(200, 200, white), Options{MarkersOnly: true})
	require.NoError(t, err)
	assert.Equal(t, red, out.RGBAAt(20, 60))
	assert.Equal(t, uint8(0), out.RGBAAt(70, 60).A)

	// no backing image, explicit size
	out, err = Render(ctx, sampleState(), nil, Options{Width: 50, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(5, 15))

	// no backing image, snapshot size
	out, err = Render(ctx, sampleState(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(10, 30))

	_, err = Render(ctx, annostate.New(0, 0), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptySize)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Render(cancelled, sampleState(), nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderSkipsUnknown(t *testing.T) {
	st := sampleState()
	unknown := &annostate.UnknownState{Raw: []byte(`{"typeName":"FutureMarker"}`)}
	unknown.TypeName = "FutureMarker"
	st.Markers = append([]annomarker.MarkerState{unknown}, st.Markers...)

	out, err := Render(context.Background(), st, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, red, out.RGBAAt(10, 30))
}

func countPixels(img *image.RGBA, keep func(c color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if keep(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestRenderText(t *testing.T) {
	text := annomarker.NewTextMarker()
	text.Text = "Hello\nworld"
	text.Color = "#0000ff"
	text.Left, text.Top, text.Width, text.Height = 0, 0, 100, 60

	st := annostate.New(100, 60)
	st.Markers = append(st.Markers, text.GetState())
	out, err := Render(context.Background(), st, nil, Options{})
	require.NoError(t, err)

	isBlue := func(c color.RGBA) bool { return c.B > 128 && c.R == 0 && c.G == 0 }
	straight := countPixels(out, isBlue)
	assert.Greater(t, straight, 50)
	// the padding is left empty
	assert.Equal(t, uint8(0), out.RGBAAt(1, 1).A)

	text.RotationAngle = 90
	st.Markers[0] = text.GetState()
	out, err = Render(context.Background(), st, nil, Options{})
	require.NoError(t, err)
	assert.Greater(t, countPixels(out, isBlue), 0)
}

const greenSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 10 10">
<rect width="10" height="10" fill="#00ff00"/></svg>`

var green = color.RGBA{G: 255, A: 255}

func TestRenderImages(t *testing.T) {
	svg := annomarker.NewCustomImageMarker()
	svg.SetImage(annomarker.ImageSVG, greenSVG)
	svg.Left, svg.Top, svg.Width, svg.Height = 10, 10, 20, 20

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniform(2, 2, red)))
	bitmap := annomarker.NewCustomImageMarker()
	bitmap.SetImage(annomarker.ImageBitmap, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
	bitmap.Left, bitmap.Top, bitmap.Width, bitmap.Height = 50, 10, 20, 20
	bitmap.Opacity = 0.5

	st := annostate.New(80, 40)
	st.Markers = append(st.Markers, svg.GetState(), bitmap.GetState())
	out, err := Render(context.Background(), st, uniform(80, 40, white), Options{})
	require.NoError(t, err)

	assert.Equal(t, green, out.RGBAAt(20, 20))
	assert.Equal(t, white, out.RGBAAt(5, 5))
	// half transparent red over white
	c := out.RGBAAt(60, 20)
	assert.Equal(t, uint8(255), c.R)
	assert.InDelta(t, 128, int(c.G), 2)
	assert.InDelta(t, 128, int(c.B), 2)
}

func TestLoader(t *testing.T) {
	img, err := Loader{}.Load(annomarker.ImageSVG, greenSVG)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	r, g, _, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), a)

	_, err = Loader{}.Load(annomarker.ImageSVG, "<svg></svg>")
	assert.ErrorIs(t, err, ErrEmptySize)

	_, err = Loader{}.Load(annomarker.ImageBitmap, "not a data url")
	assert.Error(t, err)

	// the marker takes the natural size of the image
	m := annomarker.NewCustomImageMarker()
	m.SetImage(annomarker.ImageSVG, greenSVG)
	require.NoError(t, m.Load(context.Background(), Loader{}))
	assert.Equal(t, 20., m.Width)
	assert.Equal(t, 20., m.Height)
}

func TestRenderLine(t *testing.T) {
	line := annomarker.NewLineMarker()
	line.SetEndpoints(annogeom.Pt(10, 50), annogeom.Pt(90, 50))
	line.StrokeColor, line.StrokeWidth = "#ff0000", 4

	st := annostate.New(100, 100)
	st.Markers = append(st.Markers, line.GetState())
	out, err := Render(context.Background(), st, uniform(100, 100, white), Options{})
	require.NoError(t, err)
	assert.Equal(t, red, out.RGBAAt(50, 50))
	assert.Equal(t, white, out.RGBAAt(50, 40))
	assert.Equal(t, white, out.RGBAAt(5, 50)) // before the start
}
