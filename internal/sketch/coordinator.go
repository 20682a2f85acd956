// Package sketch coordinates AI sketch requests with the editor. At most one
// request is outstanding at a time; a new request supersedes the old one.
package sketch

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a waiter whose request was replaced by a newer one.
var ErrSuperseded = errors.New("sketch request superseded by a newer request")

// Result is the outcome reported back to the requester.
type Result struct {
	Success bool   `json:"success"`
	Title   string `json:"title,omitempty"`
	SVG     string `json:"svg,omitempty"`
	JSON    string `json:"json,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Request describes the outstanding sketch request.
type Request struct {
	Title  string
	Prompt string
}

// Ticket is the requester's handle on a pending request.
type Ticket struct {
	Request
	c    *Coordinator
	done chan struct{}
	res  Result
	err  error
}

// Wait blocks until the request settles. Cancelling ctx cancels the request.
func (t *Ticket) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		t.c.settle(t, Result{Success: false, Error: "User cancelled the sketch request: " + ctx.Err().Error()}, nil)
		<-t.done
	}
	return t.res, t.err
}

// Done is closed when the request settles.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Coordinator holds the single pending request slot.
type Coordinator struct {
	mu      sync.Mutex
	pending *Ticket
}

// NewCoordinator returns an idle coordinator.
func NewCoordinator() *Coordinator { return &Coordinator{} }

// Request installs a new pending request. A request already pending is
// rejected with ErrSuperseded first.
func (c *Coordinator) Request(title, prompt string) *Ticket {
	t := &Ticket{Request: Request{Title: title, Prompt: prompt}, c: c, done: make(chan struct{})}
	c.mu.Lock()
	old := c.pending
	c.pending = t
	c.mu.Unlock()
	if old != nil {
		c.settle(old, Result{}, ErrSuperseded)
	}
	return t
}

// Complete resolves the pending request with the editor's sketch. It reports
// false when nothing was pending.
func (c *Coordinator) Complete(title, svg, json string) bool {
	c.mu.Lock()
	t := c.pending
	c.mu.Unlock()
	if t == nil {
		return false
	}
	return c.settle(t, Result{Success: true, Title: title, SVG: svg, JSON: json}, nil)
}

// Cancel resolves the pending request as unsuccessful with reason. It
// reports false when nothing was pending.
func (c *Coordinator) Cancel(reason string) bool {
	c.mu.Lock()
	t := c.pending
	c.mu.Unlock()
	if t == nil {
		return false
	}
	if reason == "" {
		reason = "User cancelled the sketch request"
	}
	return c.settle(t, Result{Success: false, Error: reason}, nil)
}

// Pending returns the outstanding request, if any.
func (c *Coordinator) Pending() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Request{}, false
	}
	return c.pending.Request, true
}

// settle resolves t once and frees the slot if t still holds it.
func (c *Coordinator) settle(t *Ticket, res Result, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-t.done:
		return false
	default:
	}
	t.res, t.err = res, err
	close(t.done)
	if c.pending == t {
		c.pending = nil
	}
	return true
}
