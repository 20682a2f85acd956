package library

import "time"

// Source records how a sketch entered the library.
type Source string

const (
	SourceSaved    Source = "saved"
	SourceSketch   Source = "sketch"
	SourceImported Source = "imported"
)

// Sketch is one stored design with its rendered SVG.
type Sketch struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Prompt       string    `json:"prompt,omitempty"`
	AIContext    string    `json:"aiContext,omitempty"`
	CanvasWidth  float64   `json:"canvasWidth"`
	CanvasHeight float64   `json:"canvasHeight"`
	Source       Source    `json:"source"`
	DesignJSON   string    `json:"json"`
	SVG          string    `json:"svg"`
	SVGPath      string    `json:"svgPath,omitempty"`
	MarkdownPath string    `json:"markdownPath,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Elements []ElementSummary `json:"elements,omitempty"`
}

// ElementSummary is the indexed part of one element.
type ElementSummary struct {
	ID      string `json:"id"`
	Kind    string `json:"type"`
	Name    string `json:"name,omitempty"`
	Meaning string `json:"meaning,omitempty"`
	Parent  string `json:"parent,omitempty"`
}

// SketchSummary is a lightweight listing of sketches (no design data).
type SketchSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Source       Source    `json:"source"`
	ElementCount int       `json:"elementCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
