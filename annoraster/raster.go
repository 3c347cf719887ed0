// Implements a raster backend for annotations, by wrapping rasterx:
// a snapshot is drawn over its backing image into an RGBA bitmap.
package annoraster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/benoitkugler/okmarker/annogeom"
	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annostate"
	"github.com/benoitkugler/okmarker/annosurface"
	"github.com/benoitkugler/okmarker/annosvg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
)

// ErrEmptySize is returned when no output size can be inferred.
var ErrEmptySize = errors.New("annoraster: empty output size")

// Options configure Render.
type Options struct {
	// Width and Height give the output size in pixels. When zero, the
	// size of the backing image is used, or the size of the snapshot.
	Width, Height int
	// MarkersOnly draws the markers on a transparent background.
	MarkersOnly bool
}

func (o Options) size(state *annostate.AnnotationState, backing image.Image) (int, int) {
	if o.Width > 0 && o.Height > 0 {
		return o.Width, o.Height
	}
	if backing != nil {
		b := backing.Bounds()
		return b.Dx(), b.Dy()
	}
	return int(math.Round(state.Width)), int(math.Round(state.Height))
}

// Render draws the markers of state over backing. The snapshot
// is scaled to the output size; entries with an unknown variant
// are skipped.
func Render(ctx context.Context, state *annostate.AnnotationState, backing image.Image, opts Options) (*image.RGBA, error) {
	w, h := opts.size(state, backing)
	if w <= 0 || h <= 0 {
		return nil, ErrEmptySize
	}
	s := BuildSurface(annostate.Rescale(state, float64(w), float64(h)), float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if backing != nil && !opts.MarkersOnly {
		draw.CatmullRom.Scale(dst, dst.Bounds(), backing, backing.Bounds(), draw.Src, nil)
	}
	if err := Draw(ctx, dst, s); err != nil {
		return nil, err
	}
	return dst, nil
}

// BuildSurface creates the visuals of the markers of state on a new
// surface, without scaling them.
func BuildSurface(state *annostate.AnnotationState, width, height float64) *annosurface.Surface {
	s := annosurface.New(width, height)
	for i, st := range state.Markers {
		typeName := st.Common().TypeName
		m, err := annomarker.DefaultRegistry.New(typeName)
		if err != nil {
			annolog.Logger().Warn().Err(err).Int("index", i).Msg("render: marker skipped")
			continue
		}
		if err := m.RestoreState(st); err != nil {
			annolog.Logger().Warn().Err(err).Int("index", i).Str("typeName", typeName).Msg("render: marker skipped")
			continue
		}
		m.CreateVisual(s)
	}
	return s
}

// Draw paints the visible nodes of s on dst.
// Text is drawn with the Go regular font.
func Draw(ctx context.Context, dst *image.RGBA, s *annosurface.Surface) error {
	var f *sfnt.Font
	if l, err := annomarker.DefaultLayout(); err != nil {
		annolog.Logger().Warn().Err(err).Msg("text disabled")
	} else {
		f = l.Font()
	}
	rd := newRenderer(dst, f)
	return s.Walk(func(n annosurface.Node, m annogeom.Matrix) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rd.drawNode(n, m)
		return nil
	})
}

// Loader decodes the payloads of image markers, rasterizing SVG
// payloads at their intrinsic size.
type Loader struct{}

func (Loader) Load(t annomarker.ImageType, src string) (image.Image, error) {
	if t != annomarker.ImageSVG {
		return annomarker.DataURLLoader{}.Load(t, src)
	}
	img, err := annosvg.ReadImage(bytes.NewReader([]byte(src)))
	if err != nil {
		return nil, fmt.Errorf("decoding svg: %w", err)
	}
	w, h := int(math.Ceil(img.Width)), int(math.Ceil(img.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("decoding svg: %w", ErrEmptySize)
	}
	return RasterizeSVG(img, w, h), nil
}

// RasterizeSVG draws img stretched to a width x height bitmap.
func RasterizeSVG(img *annosvg.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	rd := newRenderer(dst, nil)
	rd.drawSVG(img, img.ViewBoxMatrix(float64(width), float64(height)), 1)
	return dst
}
