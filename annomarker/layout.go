package annomarker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benoitkugler/okmarker/annogeom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextLayout measures a block of text. It may return ErrNotReady
// while its fonts are loading.
type TextLayout interface {
	Measure(text, fontFamily string, fontSize float64) (annogeom.Size, error)
}

// FontLayout measures text with the Go regular font, whatever
// the requested family. Lines are separated by '\n'.
type FontLayout struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontLayout parses the embedded font.
func NewFontLayout() (*FontLayout, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &FontLayout{font: f, faces: make(map[float64]font.Face)}, nil
}

// Font returns the parsed font, for backends drawing glyph outlines.
func (l *FontLayout) Font() *opentype.Font { return l.font }

// Face returns the font face at the given size, cached.
func (l *FontLayout) Face(size float64) (font.Face, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if face, ok := l.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(l.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	l.faces[size] = face
	return face, nil
}

// LineHeight returns the distance between two baselines.
func (l *FontLayout) LineHeight(size float64) (float64, error) {
	face, err := l.Face(size)
	if err != nil {
		return 0, err
	}
	return float64(face.Metrics().Height) / 64, nil
}

func (l *FontLayout) Measure(text, _ string, fontSize float64) (annogeom.Size, error) {
	if fontSize <= 0 {
		return annogeom.Size{}, nil
	}
	face, err := l.Face(fontSize)
	if err != nil {
		return annogeom.Size{}, err
	}
	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		width = max(width, float64(font.MeasureString(face, line))/64)
	}
	height := float64(face.Metrics().Height) / 64 * float64(len(lines))
	return annogeom.Size{Width: width, Height: height}, nil
}

var (
	defaultLayout     *FontLayout
	defaultLayoutErr  error
	defaultLayoutOnce sync.Once
)

// DefaultLayout returns the shared FontLayout.
func DefaultLayout() (*FontLayout, error) {
	defaultLayoutOnce.Do(func() {
		defaultLayout, defaultLayoutErr = NewFontLayout()
	})
	return defaultLayout, defaultLayoutErr
}
