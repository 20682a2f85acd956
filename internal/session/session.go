// Package session owns the in-memory design document being edited: its
// mutations, the current selection and the view the user has drilled into.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
	"sketchstudio/internal/logging"
)

// ErrNoElement is returned when an operation names an element that does not exist.
var ErrNoElement = errors.New("element not found")

// ChangeKind describes what a Change did to the session.
type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeRemoved    ChangeKind = "removed"
	ChangeUpdated    ChangeKind = "updated"
	ChangeReordered  ChangeKind = "reordered"
	ChangeCleared    ChangeKind = "cleared"
	ChangeSelection  ChangeKind = "selection"
	ChangeNavigation ChangeKind = "navigation"
	ChangeMetadata   ChangeKind = "metadata"
	ChangeLoaded     ChangeKind = "loaded"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind      ChangeKind
	ElementID string
	// Document is a snapshot taken when the change was committed.
	Document    *design.Document
	ViewContext string
}

// Session is the process-wide editing state. All methods are safe for
// concurrent use; subscribers run after the lock is released.
type Session struct {
	mu         sync.Mutex
	doc        *design.Document
	canvas     design.Canvas
	view       string
	breadcrumb []string

	observers map[int]func(Change)
	nextObs   int

	log *logging.Logger
}

// New returns a session holding an empty document sized by canvas.
func New(canvas design.Canvas, log *logging.Logger) *Session {
	return &Session{
		doc:       design.NewDocument(canvas),
		canvas:    canvas,
		observers: map[int]func(Change){},
		log:       log.WithPrefix("session"),
	}
}

// Subscribe registers fn for every change and returns a function removing it.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// changed snapshots the state for a change. Call with s.mu held and invoke
// the returned function after unlocking.
func (s *Session) changed(kind ChangeKind, id string) func() {
	if len(s.observers) == 0 {
		return func() {}
	}
	c := Change{Kind: kind, ElementID: id, Document: s.doc.Clone(), ViewContext: s.view}
	fns := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// Document returns a copy of the current document.
func (s *Session) Document() *design.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// JSON serializes the current document.
func (s *Session) JSON() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.ToJSON(s.doc)
}

// AddElement appends e to the document inside the current view, selects it and
// returns its id. An element without an id, or with one already in use, is
// given a fresh id.
func (s *Session) AddElement(e *design.Element) (string, error) {
	if e == nil || e.Shape == nil {
		return "", fmt.Errorf("add element: missing shape")
	}
	if e.Meaning != "" && !e.Meaning.Valid() {
		return "", fmt.Errorf("add element: unknown meaning %q", string(e.Meaning))
	}
	s.mu.Lock()
	if dup, _ := s.doc.Find(e.ID); e.ID == "" || dup != nil {
		e.ID = uuid.NewString()
	}
	e.Parent = s.view
	s.doc.Elements = append(s.doc.Elements, e)
	s.selectPtrLocked(e)
	s.doc.Touch()
	notify := s.changed(ChangeAdded, e.ID)
	s.mu.Unlock()
	notify()
	return e.ID, nil
}

// RemoveElement deletes the element with the given id.
func (s *Session) RemoveElement(id string) error {
	s.mu.Lock()
	_, i := s.doc.Find(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrNoElement)
	}
	s.doc.Elements = append(s.doc.Elements[:i], s.doc.Elements[i+1:]...)
	s.doc.Touch()
	notify := s.changed(ChangeRemoved, id)
	s.mu.Unlock()
	notify()
	return nil
}

// ClearCanvas removes the elements of the current view and returns how many
// were removed. Elements nested in other views survive a clear at the root.
func (s *Session) ClearCanvas() int {
	s.mu.Lock()
	kept := s.doc.Elements[:0]
	removed := 0
	for _, e := range s.doc.Elements {
		if e.Parent == s.view {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// drop references held past the new length
	for i := len(kept); i < len(s.doc.Elements); i++ {
		s.doc.Elements[i] = nil
	}
	s.doc.Elements = kept
	s.doc.Touch()
	notify := s.changed(ChangeCleared, "")
	s.mu.Unlock()
	notify()
	return removed
}

// SelectElement selects the element with the given id, or clears the
// selection when id is empty. At most one element is selected afterwards.
func (s *Session) SelectElement(id string) error {
	s.mu.Lock()
	if id != "" {
		if e, _ := s.doc.Find(id); e == nil {
			s.mu.Unlock()
			return fmt.Errorf("select %s: %w", id, ErrNoElement)
		}
	}
	s.selectLocked(id)
	notify := s.changed(ChangeSelection, id)
	s.mu.Unlock()
	notify()
	return nil
}

func (s *Session) selectLocked(id string) {
	e, _ := s.doc.Find(id)
	s.selectPtrLocked(e)
}

// selectPtrLocked selects sel (nil clears the selection).
func (s *Session) selectPtrLocked(sel *design.Element) {
	for _, e := range s.doc.Elements {
		e.Selected = e == sel
	}
}

// Selected returns a copy of the selected element, or nil.
func (s *Session) Selected() *design.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.doc.Elements {
		if e.Selected {
			return e.Clone()
		}
	}
	return nil
}

// UpdateElement applies fn to the element with the given id. The id and
// selection state are restored if fn changes them.
func (s *Session) UpdateElement(id string, fn func(*design.Element)) error {
	s.mu.Lock()
	e, _ := s.doc.Find(id)
	if e == nil {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNoElement)
	}
	work := e.Clone()
	fn(work)
	if work.Shape == nil || (work.Meaning != "" && !work.Meaning.Valid()) {
		s.mu.Unlock()
		return fmt.Errorf("update %s: invalid element", id)
	}
	work.ID, work.Selected = e.ID, e.Selected
	*e = *work
	s.doc.Touch()
	notify := s.changed(ChangeUpdated, id)
	s.mu.Unlock()
	notify()
	return nil
}

// MoveElement translates an element by (dx, dy).
func (s *Session) MoveElement(id string, dx, dy float64) error {
	return s.UpdateElement(id, func(e *design.Element) { e.Translate(dx, dy) })
}

// BringToFront moves an element to the end of the paint order.
func (s *Session) BringToFront(id string) error {
	return s.reorder(id, true)
}

// SendToBack moves an element to the start of the paint order.
func (s *Session) SendToBack(id string) error {
	return s.reorder(id, false)
}

func (s *Session) reorder(id string, front bool) error {
	s.mu.Lock()
	e, i := s.doc.Find(id)
	if e == nil {
		s.mu.Unlock()
		return fmt.Errorf("reorder %s: %w", id, ErrNoElement)
	}
	rest := append(s.doc.Elements[:i:i], s.doc.Elements[i+1:]...)
	if front {
		s.doc.Elements = append(rest, e)
	} else {
		s.doc.Elements = append([]*design.Element{e}, rest...)
	}
	s.doc.Touch()
	notify := s.changed(ChangeReordered, id)
	s.mu.Unlock()
	notify()
	return nil
}

// ElementAt returns a copy of the top-most element of the current view
// containing (x, y), or nil.
func (s *Session) ElementAt(x, y float64) *design.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.doc.Elements) - 1; i >= 0; i-- {
		e := s.doc.Elements[i]
		if e.Parent == s.view && e.ContainsPoint(x, y) {
			return e.Clone()
		}
	}
	return nil
}

// SetCanvas resizes the canvas. Non-positive sizes and an empty background
// leave the current value in place.
func (s *Session) SetCanvas(width, height float64, background string) {
	s.mu.Lock()
	if width > 0 {
		s.doc.CanvasWidth = width
	}
	if height > 0 {
		s.doc.CanvasHeight = height
	}
	if background != "" {
		s.doc.BackgroundColor = background
	}
	s.doc.Touch()
	notify := s.changed(ChangeMetadata, "")
	s.mu.Unlock()
	notify()
}

// SetMetadata sets the document title and description.
func (s *Session) SetMetadata(title, description string) {
	s.mu.Lock()
	if title == "" {
		title = design.DefaultTitle
	}
	s.doc.Title, s.doc.Description = title, description
	s.doc.Touch()
	notify := s.changed(ChangeMetadata, "")
	s.mu.Unlock()
	notify()
}

// SetAIContext records the prompt and context of the sketch request the
// document answers.
func (s *Session) SetAIContext(prompt, context string) {
	s.mu.Lock()
	s.doc.Prompt, s.doc.AIContext = prompt, context
	s.doc.Touch()
	notify := s.changed(ChangeMetadata, "")
	s.mu.Unlock()
	notify()
}

// Load replaces the document with the one encoded in js. Malformed input is
// logged and returned; the current document is kept.
func (s *Session) Load(js string) error {
	d, err := export.FromJSON(js)
	if err != nil {
		s.log.Errorf("load design: %v", err)
		return err
	}
	s.Open(d)
	return nil
}

// Open replaces the document with d and returns to the root view.
func (s *Session) Open(d *design.Document) {
	s.mu.Lock()
	s.doc = d
	s.view, s.breadcrumb = "", nil
	s.selectLocked("")
	notify := s.changed(ChangeLoaded, "")
	s.mu.Unlock()
	s.log.Debugf("opened %q with %d elements", d.Title, len(d.Elements))
	notify()
}

// Replace swaps in d without leaving the current view, for designs the
// surface already shows. Navigation falls back to the root only when the
// current view no longer exists in d; breadcrumb entries naming removed views
// are dropped.
func (s *Session) Replace(d *design.Document) {
	s.mu.Lock()
	s.doc = d
	if s.view != "" && d.FindView(s.view) == nil {
		s.view, s.breadcrumb = "", nil
	} else {
		kept := s.breadcrumb[:0]
		for _, name := range s.breadcrumb {
			if d.FindView(name) != nil {
				kept = append(kept, name)
			}
		}
		s.breadcrumb = kept
	}
	s.selectLocked("")
	notify := s.changed(ChangeLoaded, "")
	s.mu.Unlock()
	notify()
}

// Reset discards the document and starts an empty one.
func (s *Session) Reset() {
	s.Open(design.NewDocument(s.canvas))
}
