package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sketchstudio/internal/logging"
)

// Handler processes one decoded message.
type Handler func(ctx context.Context, m Message) error

// Router dispatches raw messages to the handler registered for their type.
type Router struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
	log      *logging.Logger
}

// NewRouter returns a router with no handlers.
func NewRouter(log *logging.Logger) *Router {
	return &Router{handlers: map[Type]Handler{}, log: log.WithPrefix("protocol")}
}

// Handle registers h for messages of type t, replacing any previous handler.
func (r *Router) Handle(t Type, h Handler) {
	r.mu.Lock()
	r.handlers[t] = h
	r.mu.Unlock()
}

// Dispatch decodes data and runs the matching handler. Unknown and unhandled
// message kinds are logged and ignored. A panicking handler is reported as an
// error.
func (r *Router) Dispatch(ctx context.Context, data []byte) (err error) {
	m, err := Decode(data)
	if errors.Is(err, ErrUnknownType) {
		r.log.Warnf("ignoring message: %v", err)
		return nil
	}
	if err != nil {
		r.log.Errorf("%v", err)
		return err
	}
	r.mu.RLock()
	h := r.handlers[m.MessageType()]
	r.mu.RUnlock()
	if h == nil {
		r.log.Debugf("no handler for %s", m.MessageType())
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handle %s: panic: %v", m.MessageType(), p)
			r.log.Errorf("%v", err)
		}
	}()
	if err := h(ctx, m); err != nil {
		r.log.Errorf("handle %s: %v", m.MessageType(), err)
		return err
	}
	return nil
}
