package annomarker

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/benoitkugler/okmarker/annopath"
	"github.com/benoitkugler/okmarker/annosurface"
)

// ImageType is the format of the payload of an image marker.
type ImageType string

const (
	ImageSVG    ImageType = "svg"
	ImageBitmap ImageType = "bitmap"
)

var errInvalidDataURL = errors.New("annomarker: invalid data URL")

// ImageLoader decodes the payload of an image marker.
// It may return ErrNotReady while the payload is loading.
type ImageLoader interface {
	Load(t ImageType, src string) (image.Image, error)
}

// CustomImageMarker is a box variant showing an image stretched
// to the box.
type CustomImageMarker struct {
	RectangularBox
	ImageType ImageType
	// ImageSrc is the SVG markup for ImageSVG, or a data URL for ImageBitmap.
	ImageSrc string

	Retry Retry

	node    *annosurface.Image
	frame   *annosurface.Path
	decoded image.Image
}

func NewCustomImageMarker() *CustomImageMarker {
	return &CustomImageMarker{RectangularBox: newBox(), ImageType: ImageSVG, Retry: DefaultRetry}
}

func (m *CustomImageMarker) TypeName() string { return "CustomImageMarker" }

// Href returns the image as an URL usable by an SVG document.
func (m *CustomImageMarker) Href() string {
	if m.ImageType == ImageSVG {
		return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(m.ImageSrc))
	}
	return m.ImageSrc
}

// Image returns the decoded payload, or nil if Load has not succeeded.
func (m *CustomImageMarker) Image() image.Image { return m.decoded }

// Load decodes the payload with l, retrying while it is not ready.
// A marker without size takes the natural size of the image.
func (m *CustomImageMarker) Load(ctx context.Context, l ImageLoader) error {
	var img image.Image
	err := WaitReady(ctx, m.Retry, func() error {
		var err error
		img, err = l.Load(m.ImageType, m.ImageSrc)
		return err
	})
	if err != nil {
		return fmt.Errorf("loading %s image: %w", m.ImageType, err)
	}
	m.decoded = img
	if m.Width == 0 && m.Height == 0 {
		b := img.Bounds()
		m.Width, m.Height = float64(b.Dx()), float64(b.Dy())
	}
	m.SetSize()
	return nil
}

func (m *CustomImageMarker) CreateVisual(s *annosurface.Surface) {
	g := annosurface.NewGroup()
	m.node = &annosurface.Image{Href: m.Href()}
	m.frame = annosurface.NewPath(nil)
	annosurface.SetAttr(m.frame, "fill", "transparent")
	g.Append(m.node, m.frame)
	m.attachBox(s, g)
	m.SetSize()
}

func (m *CustomImageMarker) SetSize() {
	m.applyPlacement()
	if m.node == nil {
		return
	}
	m.node.Width, m.node.Height = m.Width, m.Height
	m.node.Href = m.Href()
	m.node.Data = m.decoded
	m.frame.D = annopath.Rectangle(m.Width, m.Height)
}

// SetImage changes the payload. The decoded image is dropped
// until the next Load.
func (m *CustomImageMarker) SetImage(t ImageType, src string) {
	m.ImageType, m.ImageSrc = t, src
	m.decoded = nil
	m.SetSize()
}

func (m *CustomImageMarker) GetState() MarkerState {
	return &CustomImageState{
		RectangularBoxState: m.boxState(m.TypeName()),
		ImageType:           m.ImageType,
		ImageSrc:            m.ImageSrc,
	}
}

func (m *CustomImageMarker) RestoreState(state MarkerState) error {
	s, ok := state.(*CustomImageState)
	if !ok {
		return ErrStateMismatch
	}
	m.restoreBox(&s.RectangularBoxState)
	m.SetImage(s.ImageType, s.ImageSrc)
	return nil
}

func (m *CustomImageMarker) Scale(sx, sy float64) {
	m.scaleBox(sx, sy)
	m.scaleStroke(sx, sy)
	m.SetSize()
}

func (m *CustomImageMarker) Destroy() {
	m.RectangularBox.Destroy()
	m.node, m.frame = nil, nil
}

// DataURLLoader decodes bitmap payloads given as data URLs
// (PNG, JPEG or GIF). It does not support SVG payloads.
type DataURLLoader struct{}

func (DataURLLoader) Load(t ImageType, src string) (image.Image, error) {
	if t != ImageBitmap {
		return nil, fmt.Errorf("annomarker: unsupported image type %q", t)
	}
	data, err := DecodeDataURL(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding bitmap: %w", err)
	}
	return img, nil
}

// DecodeDataURL returns the content of a `data:` URL.
func DecodeDataURL(src string) ([]byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, errInvalidDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errInvalidDataURL
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidDataURL, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDataURL, err)
	}
	return []byte(s), nil
}
