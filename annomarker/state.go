package annomarker

import "github.com/benoitkugler/okmarker/annogeom"

// MarkerState is the serializable snapshot of a marker.
// A state is never modified once produced: callers
// needing to change it work on a Clone.
type MarkerState interface {
	Common() *BaseState
	// Clone returns a deep copy.
	Clone() MarkerState
}

// BaseState holds the fields shared by every variant.
type BaseState struct {
	TypeName        string  `json:"typeName"`
	// ID identifies the marker across snapshots. Older snapshots have none.
	ID              string  `json:"id,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	StrokeColor     string  `json:"strokeColor,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty"`
	Opacity         float64 `json:"opacity"`
}

func (s *BaseState) Common() *BaseState { return s }

type RectangularBoxState struct {
	BaseState
	Left          float64 `json:"left"`
	Top           float64 `json:"top"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	RotationAngle float64 `json:"rotationAngle"`

	VisualTransformMatrix    annogeom.Matrix `json:"visualTransformMatrix"`
	ContainerTransformMatrix annogeom.Matrix `json:"containerTransformMatrix"`
}

func (s *RectangularBoxState) Clone() MarkerState { c := *s; return &c }

// ShapeState is used by the filled box variants.
type ShapeState struct {
	RectangularBoxState
	FillColor string `json:"fillColor,omitempty"`
}

func (s *ShapeState) Clone() MarkerState { c := *s; return &c }

type LinearState struct {
	BaseState
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (s *LinearState) Clone() MarkerState { c := *s; return &c }

type ArrowState struct {
	LinearState
	ArrowType ArrowType `json:"arrowType"`
}

func (s *ArrowState) Clone() MarkerState { c := *s; return &c }

// PolygonState is used by the polygon and freehand variants.
type PolygonState struct {
	BaseState
	FillColor string           `json:"fillColor,omitempty"`
	Points    []annogeom.Point `json:"points"`
}

func (s *PolygonState) Clone() MarkerState {
	c := *s
	c.Points = append([]annogeom.Point(nil), s.Points...)
	return &c
}

type TextState struct {
	RectangularBoxState
	Text       string  `json:"text"`
	Color      string  `json:"color"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Padding    float64 `json:"padding"`
}

func (s *TextState) Clone() MarkerState { c := *s; return &c }

type CalloutState struct {
	TextState
	BgColor     string         `json:"bgColor"`
	TipPosition annogeom.Point `json:"tipPosition"`
}

func (s *CalloutState) Clone() MarkerState { c := *s; return &c }

type CustomImageState struct {
	RectangularBoxState
	ImageType ImageType `json:"imageType"`
	ImageSrc  string    `json:"imageSrc"`
}

func (s *CustomImageState) Clone() MarkerState { c := *s; return &c }
