package annomarker

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReady(t *testing.T) {
	r := Retry{Attempts: 3}

	calls := 0
	err := WaitReady(context.Background(), r, func() error {
		calls++
		if calls < 3 {
			return ErrNotReady
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = WaitReady(context.Background(), r, func() error { calls++; return ErrNotReady })
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 3, calls)

	// other errors are not retried
	calls = 0
	boom := errors.New("boom")
	err = WaitReady(context.Background(), r, func() error { calls++; return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	// at least one attempt
	calls = 0
	_ = WaitReady(context.Background(), Retry{}, func() error { calls++; return ErrNotReady })
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = WaitReady(ctx, Retry{Attempts: 5, Delay: 1e9}, func() error { return ErrNotReady })
	assert.ErrorIs(t, err, context.Canceled)
}

// slowLayout is not ready for its first calls.
type slowLayout struct {
	pending int
}

func (l *slowLayout) Measure(text, _ string, size float64) (annogeom.Size, error) {
	if l.pending > 0 {
		l.pending--
		return annogeom.Size{}, ErrNotReady
	}
	return annogeom.Size{Width: float64(len(text)) * size / 2, Height: size}, nil
}

func TestTextLayout(t *testing.T) {
	m := NewTextMarker()
	m.Layout = &slowLayout{pending: 2}
	m.Retry = Retry{Attempts: 3}
	m.Padding = 5
	m.FontSize = 10
	require.NoError(t, m.SetText(context.Background(), "abcd"))
	assert.Equal(t, annogeom.Size{Width: 20, Height: 10}, m.TextSize())
	assert.Equal(t, 30., m.Width)
	assert.Equal(t, 20., m.Height)

	m.Layout = &slowLayout{pending: 5}
	err := m.SetText(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)
}

func TestFontLayout(t *testing.T) {
	l, err := DefaultLayout()
	require.NoError(t, err)
	one, err := l.Measure("Hello", "", 20)
	require.NoError(t, err)
	two, err := l.Measure("Hello\nHello", "", 20)
	require.NoError(t, err)
	assert.Greater(t, one.Width, 0.)
	assert.Equal(t, one.Width, two.Width)
	assert.InDelta(t, 2*one.Height, two.Height, 1e-9)

	big, err := l.Measure("Hello", "", 40)
	require.NoError(t, err)
	assert.Greater(t, big.Width, one.Width)
}

func TestTextVisual(t *testing.T) {
	s := annosurface.New(400, 400)
	m := NewTextMarker()
	m.Layout = &slowLayout{}
	m.Padding = 0
	m.FontSize = 10
	require.NoError(t, m.SetText(context.Background(), "ab\ncd"))
	m.CreateVisual(s)
	assert.Equal(t, []string{"ab", "cd"}, m.node.Lines)
	assert.Equal(t, 5., m.node.LineHeight)

	// the text is scaled with the box
	m.Width, m.Height = 20, 40
	m.SetSize()
	tr := annosurface.Transforms(m.node).Consolidate()
	assert.True(t, tr.Apply(annogeom.Pt(10, 10)).Near(annogeom.Pt(8, 24)))
}

func TestCalloutOutline(t *testing.T) {
	p := calloutOutline(100, 50, annogeom.Pt(50, 80))
	pts := p.Points()
	require.Len(t, pts, 7)
	assert.Equal(t, annogeom.Pt(50, 80), pts[4])

	// tip inside the box: plain rectangle
	assert.Len(t, calloutOutline(100, 50, annogeom.Pt(10, 10)).Points(), 4)
}

func pngDataURL(t *testing.T) string {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestImageLoad(t *testing.T) {
	m := NewCustomImageMarker()
	m.SetImage(ImageBitmap, pngDataURL(t))
	require.NoError(t, m.Load(context.Background(), DataURLLoader{}))
	require.NotNil(t, m.Image())
	// natural size
	assert.Equal(t, 4., m.Width)
	assert.Equal(t, 3., m.Height)

	m.SetImage(ImageSVG, "<svg/>")
	assert.Nil(t, m.Image())
	assert.Error(t, m.Load(context.Background(), DataURLLoader{}))
	assert.Contains(t, m.Href(), "data:image/svg+xml;base64,")
}

func TestDecodeDataURL(t *testing.T) {
	data, err := DecodeDataURL("data:text/plain,a%20b")
	require.NoError(t, err)
	assert.Equal(t, "a b", string(data))

	_, err = DecodeDataURL("http://example.com/a.png")
	assert.ErrorIs(t, err, errInvalidDataURL)
	_, err = DecodeDataURL("data:image/png;base64,!!")
	assert.ErrorIs(t, err, errInvalidDataURL)
}
