package app

import (
	"encoding/json"
	"fmt"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
)

// NewDesign discards the current design and starts an empty one.
func (a *App) NewDesign() {
	a.session.Reset()
}

// LoadDesign replaces the current design with the given JSON. Malformed JSON
// leaves the current design in place.
func (a *App) LoadDesign(js string) error {
	return a.session.Load(js)
}

// DocumentJSON returns the current design as JSON.
func (a *App) DocumentJSON() (string, error) {
	return a.session.JSON()
}

// RenderSVG returns the current design as SVG.
func (a *App) RenderSVG() string {
	return export.ToSVG(a.session.Document())
}

// AddElement decodes one element JSON object, adds it to the current view and
// returns its id.
func (a *App) AddElement(elementJSON string) (string, error) {
	var e design.Element
	if err := json.Unmarshal([]byte(elementJSON), &e); err != nil {
		return "", fmt.Errorf("decode element: %w", err)
	}
	return a.session.AddElement(&e)
}

// RemoveElement deletes an element.
func (a *App) RemoveElement(id string) error {
	return a.session.RemoveElement(id)
}

// SelectElement selects an element; an empty id clears the selection.
func (a *App) SelectElement(id string) error {
	return a.session.SelectElement(id)
}

// ClearCanvas removes the elements of the current view.
func (a *App) ClearCanvas() int {
	return a.session.ClearCanvas()
}

// MoveElement translates an element.
func (a *App) MoveElement(id string, dx, dy float64) error {
	return a.session.MoveElement(id, dx, dy)
}

// BringToFront paints an element above all others.
func (a *App) BringToFront(id string) error {
	return a.session.BringToFront(id)
}

// SendToBack paints an element below all others.
func (a *App) SendToBack(id string) error {
	return a.session.SendToBack(id)
}

// HitTest returns the id of the top-most element at (x, y) in the current
// view, or "".
func (a *App) HitTest(x, y float64) string {
	if e := a.session.ElementAt(x, y); e != nil {
		return e.ID
	}
	return ""
}

// SetMetadata sets the design title and description.
func (a *App) SetMetadata(title, description string) {
	a.session.SetMetadata(title, description)
}

// SetCanvas resizes the canvas.
func (a *App) SetCanvas(width, height float64, background string) {
	a.session.SetCanvas(width, height, background)
}

// EnterView drills into the named view.
func (a *App) EnterView(name string) bool {
	return a.session.EnterView(name)
}

// ExitToParent leaves the current view.
func (a *App) ExitToParent() {
	a.session.ExitToParent()
}

// ExitToRoot leaves every view.
func (a *App) ExitToRoot() {
	a.session.ExitToRoot()
}

// ViewContext returns the current view name, "" at the root.
func (a *App) ViewContext() string {
	return a.session.ViewContext()
}

// Breadcrumb returns the views above the current one.
func (a *App) Breadcrumb() []string {
	return a.session.Breadcrumb()
}

// CurrentViewElements returns the elements of the current view as a JSON array.
func (a *App) CurrentViewElements() (string, error) {
	b, err := json.Marshal(a.session.CurrentViewElements())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CancelSketch cancels the pending AI sketch request, if any.
func (a *App) CancelSketch(reason string) bool {
	return a.sketches.Cancel(reason)
}
