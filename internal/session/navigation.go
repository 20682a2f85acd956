package session

import "sketchstudio/internal/design"

// EnterView makes the named view the editing context. It reports false and
// does nothing when no view element has that name.
func (s *Session) EnterView(name string) bool {
	s.mu.Lock()
	if s.doc.FindView(name) == nil {
		s.mu.Unlock()
		return false
	}
	if s.view != "" {
		s.breadcrumb = append(s.breadcrumb, s.view)
	}
	s.view = name
	s.selectLocked("")
	notify := s.changed(ChangeNavigation, "")
	s.mu.Unlock()
	notify()
	return true
}

// ExitToParent returns to the view the current one was entered from.
func (s *Session) ExitToParent() {
	s.mu.Lock()
	if n := len(s.breadcrumb); n > 0 {
		s.view = s.breadcrumb[n-1]
		s.breadcrumb = s.breadcrumb[:n-1]
	} else {
		s.view = ""
	}
	s.selectLocked("")
	notify := s.changed(ChangeNavigation, "")
	s.mu.Unlock()
	notify()
}

// ExitToRoot leaves every view.
func (s *Session) ExitToRoot() {
	s.mu.Lock()
	s.view, s.breadcrumb = "", nil
	s.selectLocked("")
	notify := s.changed(ChangeNavigation, "")
	s.mu.Unlock()
	notify()
}

// ViewContext returns the name of the current view, "" at the root.
func (s *Session) ViewContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Breadcrumb returns the views above the current one, outermost first.
func (s *Session) Breadcrumb() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.breadcrumb...)
}

// CurrentViewElements returns copies of the elements whose parent is the
// current view.
func (s *Session) CurrentViewElements() []*design.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.doc.ChildrenOf(s.view)
	out := make([]*design.Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
