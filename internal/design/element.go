package design

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Kind is the element discriminator written to the "type" field of the JSON form.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindLine      Kind = "line"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Shape is the variant-specific part of an element. The set of shapes is
// closed: only the types in this package implement it.
type Shape interface {
	Kind() Kind
	shape()
}

// Rectangle is an axis-aligned box anchored at its top-left corner.
type Rectangle struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Fill         string  `json:"fill"`
	Stroke       string  `json:"stroke"`
	StrokeWidth  float64 `json:"strokeWidth"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
}

// Circle is anchored at its center.
type Circle struct {
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Line runs from the element position to (X2, Y2).
type Line struct {
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	DashArray   string  `json:"dashArray,omitempty"`
}

// Text is anchored at its baseline origin.
type Text struct {
	Content    string   `json:"content"`
	FontSize   float64  `json:"fontSize"`
	FontFamily string   `json:"fontFamily"`
	Fill       string   `json:"fill"`
	FontWeight string   `json:"fontWeight"`
	TextType   TextType `json:"textType"`
	LinkURL    string   `json:"linkUrl,omitempty"`
}

// Image is anchored at its top-left corner. Source is a URL or a data URI.
type Image struct {
	Source              string  `json:"source"`
	Width               float64 `json:"width"`
	Height              float64 `json:"height"`
	OriginalWidth       float64 `json:"originalWidth"`
	OriginalHeight      float64 `json:"originalHeight"`
	PreserveAspectRatio bool    `json:"preserveAspectRatio"`
}

func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Circle) Kind() Kind    { return KindCircle }
func (*Line) Kind() Kind      { return KindLine }
func (*Text) Kind() Kind      { return KindText }
func (*Image) Kind() Kind     { return KindImage }

func (*Rectangle) shape() {}
func (*Circle) shape()    {}
func (*Line) shape()      {}
func (*Text) shape()      {}
func (*Image) shape()     {}

// Element is one shape placed on the canvas.
//
// Parent holds the name of the View element this element belongs to; an empty
// Parent means the element lives at the root. The reference is resolved by
// name, so a parent that names no view leaves the element unreachable from
// navigation without being an error.
type Element struct {
	ID          string
	X           float64
	Y           float64
	Rotation    float64
	Name        string
	Description string
	Meaning     Meaning
	Parent      string
	Shape       Shape

	// Selected is UI state and is never serialized.
	Selected bool
}

// NewElement creates an element with a fresh id.
func NewElement(x, y float64, s Shape) *Element {
	return &Element{ID: uuid.NewString(), X: x, Y: y, Meaning: MeaningNone, Shape: s}
}

// NewRectangle returns a rectangle with the editor's default styling.
func NewRectangle(x, y, width, height float64) *Element {
	return NewElement(x, y, &Rectangle{
		Width:       width,
		Height:      height,
		Fill:        "#ffffff",
		Stroke:      "#000000",
		StrokeWidth: 2,
	})
}

// NewCircle returns a circle centered at (x, y).
func NewCircle(x, y, radius float64) *Element {
	return NewElement(x, y, &Circle{
		Radius:      radius,
		Fill:        "#ffffff",
		Stroke:      "#000000",
		StrokeWidth: 2,
	})
}

// NewLine returns a solid line from (x1, y1) to (x2, y2).
func NewLine(x1, y1, x2, y2 float64) *Element {
	return NewElement(x1, y1, &Line{X2: x2, Y2: y2, Stroke: "#000000", StrokeWidth: 2})
}

// NewText returns a paragraph text with its baseline at (x, y).
func NewText(x, y float64, content string) *Element {
	return NewElement(x, y, &Text{
		Content:    content,
		FontSize:   16,
		FontFamily: "Arial, sans-serif",
		Fill:       "#000000",
		FontWeight: "normal",
		TextType:   TextParagraph,
	})
}

// NewImage returns an image box that preserves the source aspect ratio.
func NewImage(x, y, width, height float64, source string) *Element {
	return NewElement(x, y, &Image{
		Source:              source,
		Width:               width,
		Height:              height,
		OriginalWidth:       width,
		OriginalHeight:      height,
		PreserveAspectRatio: true,
	})
}

// Kind returns the variant of the element, or "" when it has no shape.
func (e *Element) Kind() Kind {
	if e.Shape == nil {
		return ""
	}
	return e.Shape.Kind()
}

// IsView reports whether e can act as a navigation container.
func (e *Element) IsView() bool { return e.Meaning.IsView() }

// DisplayText is the string used to size a text element: its name when set,
// its content otherwise.
func (e *Element) DisplayText() string {
	if e.Name != "" {
		return e.Name
	}
	if t, ok := e.Shape.(*Text); ok {
		return t.Content
	}
	return ""
}

// ContainsPoint hit-tests (px, py) against the element geometry. Text uses an
// approximate box derived from character count and font size, not glyph metrics.
func (e *Element) ContainsPoint(px, py float64) bool {
	switch s := e.Shape.(type) {
	case *Rectangle:
		return inBox(px, py, e.X, e.Y, s.Width, s.Height)
	case *Image:
		return inBox(px, py, e.X, e.Y, s.Width, s.Height)
	case *Circle:
		dx, dy := px-e.X, py-e.Y
		return dx*dx+dy*dy <= s.Radius*s.Radius
	case *Line:
		tolerance := math.Max(2*s.StrokeWidth, 10)
		return segmentDistance(px, py, e.X, e.Y, s.X2, s.Y2) <= tolerance
	case *Text:
		size, _ := s.EffectiveFont()
		n := float64(utf8.RuneCountInString(e.DisplayText()))
		w, h := n*size*0.6, size*1.2
		return inBox(px, py, e.X, e.Y-h, w, h)
	default:
		return false
	}
}

// Center returns the point rotations are applied around.
func (e *Element) Center() (cx, cy float64) {
	switch s := e.Shape.(type) {
	case *Rectangle:
		return e.X + s.Width/2, e.Y + s.Height/2
	case *Image:
		return e.X + s.Width/2, e.Y + s.Height/2
	case *Line:
		return (e.X + s.X2) / 2, (e.Y + s.Y2) / 2
	case *Text:
		size, _ := s.EffectiveFont()
		n := float64(utf8.RuneCountInString(e.DisplayText()))
		return e.X + n*size*0.3, e.Y - size*0.6
	default:
		return e.X, e.Y
	}
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	c := *e
	switch s := e.Shape.(type) {
	case *Rectangle:
		v := *s
		c.Shape = &v
	case *Circle:
		v := *s
		c.Shape = &v
	case *Line:
		v := *s
		c.Shape = &v
	case *Text:
		v := *s
		c.Shape = &v
	case *Image:
		v := *s
		c.Shape = &v
	}
	return &c
}

// Translate moves the element by (dx, dy). Lines move both end points.
func (e *Element) Translate(dx, dy float64) {
	e.X += dx
	e.Y += dy
	if l, ok := e.Shape.(*Line); ok {
		l.X2 += dx
		l.Y2 += dy
	}
}

func inBox(px, py, x, y, w, h float64) bool {
	return px >= x && px <= x+w && py >= y && py <= y+h
}

func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq != 0 {
		t = ((px-x1)*dx + (py-y1)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// elementHeader carries the fields shared by every variant.
type elementHeader struct {
	ID          string  `json:"id"`
	Type        Kind    `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Meaning     Meaning `json:"meaning,omitempty"`
	Parent      string  `json:"parent,omitempty"`
}

// UnknownKindError is returned when decoding an element with an unrecognized type.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown element type %q", string(e.Kind))
}

// MarshalJSON writes the element as one flat object with a "type" discriminator.
func (e *Element) MarshalJSON() ([]byte, error) {
	h := elementHeader{
		ID:          e.ID,
		Type:        e.Kind(),
		X:           e.X,
		Y:           e.Y,
		Rotation:    e.Rotation,
		Name:        e.Name,
		Description: e.Description,
		Meaning:     e.Meaning,
		Parent:      e.Parent,
	}
	switch s := e.Shape.(type) {
	case *Rectangle:
		return json.Marshal(struct {
			elementHeader
			*Rectangle
		}{h, s})
	case *Circle:
		return json.Marshal(struct {
			elementHeader
			*Circle
		}{h, s})
	case *Line:
		return json.Marshal(struct {
			elementHeader
			*Line
		}{h, s})
	case *Text:
		return json.Marshal(struct {
			elementHeader
			*Text
		}{h, s})
	case *Image:
		return json.Marshal(struct {
			elementHeader
			*Image
		}{h, s})
	default:
		return nil, fmt.Errorf("element %s has no shape", e.ID)
	}
}

// UnmarshalJSON reads the flat form written by MarshalJSON.
func (e *Element) UnmarshalJSON(b []byte) error {
	var h elementHeader
	if err := json.Unmarshal(b, &h); err != nil {
		return err
	}
	var s Shape
	switch h.Type {
	case KindRectangle:
		s = &Rectangle{}
	case KindCircle:
		s = &Circle{}
	case KindLine:
		s = &Line{}
	case KindText:
		s = &Text{}
	case KindImage:
		s = &Image{}
	default:
		return &UnknownKindError{Kind: h.Type}
	}
	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("decode %s %s: %w", h.Type, h.ID, err)
	}
	if !h.Meaning.Valid() {
		return fmt.Errorf("element %s: unknown meaning %q", h.ID, string(h.Meaning))
	}
	*e = Element{
		ID:          h.ID,
		X:           h.X,
		Y:           h.Y,
		Rotation:    h.Rotation,
		Name:        h.Name,
		Description: h.Description,
		Meaning:     h.Meaning,
		Parent:      h.Parent,
		Shape:       s,
	}
	return nil
}
