package design

import (
	"time"

	"github.com/google/uuid"
)

// Default canvas settings for a new document.
const (
	DefaultTitle           = "Untitled Sketch"
	DefaultCanvasWidth     = 800
	DefaultCanvasHeight    = 600
	DefaultBackgroundColor = "#ffffff"
)

// Document is the root object for save/load and export.
type Document struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	CanvasWidth     float64    `json:"canvasWidth"`
	CanvasHeight    float64    `json:"canvasHeight"`
	BackgroundColor string     `json:"backgroundColor"`
	Elements        []*Element `json:"elements"`
	Prompt          string     `json:"prompt,omitempty"`
	AIContext       string     `json:"aiContext,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ModifiedAt      time.Time  `json:"modifiedAt"`
}

// Canvas holds the size and background applied to new documents.
type Canvas struct {
	Width      float64
	Height     float64
	Background string
}

// DefaultCanvas returns the built-in canvas settings.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight, Background: DefaultBackgroundColor}
}

// NewDocument returns an empty document sized by c. Zero fields in c fall
// back to the defaults.
func NewDocument(c Canvas) *Document {
	d := DefaultCanvas()
	if c.Width > 0 {
		d.Width = c.Width
	}
	if c.Height > 0 {
		d.Height = c.Height
	}
	if c.Background != "" {
		d.Background = c.Background
	}
	now := Now()
	return &Document{
		ID:              uuid.NewString(),
		Title:           DefaultTitle,
		CanvasWidth:     d.Width,
		CanvasHeight:    d.Height,
		BackgroundColor: d.Background,
		Elements:        []*Element{},
		CreatedAt:       now,
		ModifiedAt:      now,
	}
}

// Now is the clock used for document timestamps. It returns UTC without a
// monotonic reading so timestamps survive a JSON round trip unchanged.
var Now = func() time.Time { return time.Now().UTC() }

// Touch bumps ModifiedAt.
func (d *Document) Touch() { d.ModifiedAt = Now() }

// Find returns the element with the given id and its index, or (nil, -1).
func (d *Document) Find(id string) (*Element, int) {
	for i, e := range d.Elements {
		if e.ID == id {
			return e, i
		}
	}
	return nil, -1
}

// FindView returns the first View element named name.
func (d *Document) FindView(name string) *Element {
	if name == "" {
		return nil
	}
	for _, e := range d.Elements {
		if e.IsView() && e.Name == name {
			return e
		}
	}
	return nil
}

// Views returns every View element in paint order.
func (d *Document) Views() []*Element {
	var out []*Element
	for _, e := range d.Elements {
		if e.IsView() {
			out = append(out, e)
		}
	}
	return out
}

// ChildrenOf returns the elements whose parent is view ("" for root).
func (d *Document) ChildrenOf(view string) []*Element {
	out := []*Element{}
	for _, e := range d.Elements {
		if e.Parent == view {
			out = append(out, e)
		}
	}
	return out
}

// Orphans returns elements whose parent names no existing view.
func (d *Document) Orphans() []*Element {
	var out []*Element
	for _, e := range d.Elements {
		if e.Parent != "" && d.FindView(e.Parent) == nil {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	c.Elements = make([]*Element, len(d.Elements))
	for i, e := range d.Elements {
		c.Elements[i] = e.Clone()
	}
	return &c
}
