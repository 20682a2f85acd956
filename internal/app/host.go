package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sketchstudio/internal/export"
	"sketchstudio/internal/library"
	"sketchstudio/internal/protocol"
	"sketchstudio/internal/session"
)

// ErrExportTimeout is returned by requestExport when the surface does not answer.
var ErrExportTimeout = errors.New("surface did not answer the export request")

func (a *App) routes() {
	a.router.Handle(protocol.TypeReady, a.onReady)
	a.router.Handle(protocol.TypeSaveDesign, a.onSaveDesign)
	a.router.Handle(protocol.TypeExportResult, a.onExportResult)
	a.router.Handle(protocol.TypeConfirmSketch, a.onConfirmSketch)
	a.router.Handle(protocol.TypeAskUser, a.onAskUser)
	a.router.Handle(protocol.TypeError, a.onError)
	a.router.Handle(protocol.TypeLog, a.onLog)
}

// send posts m to the surface; failures are logged because no caller can
// act on them.
func (a *App) send(m protocol.Message) {
	if a.transport == nil {
		return
	}
	if err := a.transport.Send(m); err != nil {
		a.log.Errorf("send %s: %v", m.MessageType(), err)
	}
}

func (a *App) notify(level NotifyLevel, title, message string) {
	switch level {
	case NotifyError:
		a.log.Errorf("%s: %s", title, message)
	case NotifyWarning:
		a.log.Warnf("%s: %s", title, message)
	default:
		a.log.Infof("%s: %s", title, message)
	}
	if a.dialogs == nil {
		return
	}
	if err := a.dialogs.Notify(a.ctx, level, title, message); err != nil {
		a.log.Warnf("notify: %v", err)
	}
}

// loadFromSurface applies a design the surface already shows, without
// echoing it back. The current view is kept.
func (a *App) loadFromSurface(js string) error {
	d, err := export.FromJSON(js)
	if err != nil {
		a.log.Errorf("load design: %v", err)
		return err
	}
	a.syncing.Add(1)
	defer a.syncing.Add(-1)
	a.session.Replace(d)
	return nil
}

// pushChange mirrors host-side session changes to the surface.
func (a *App) pushChange(c session.Change) {
	if a.syncing.Load() > 0 {
		return
	}
	switch c.Kind {
	case session.ChangeSelection, session.ChangeNavigation:
		// surface-local state
		return
	}
	js, err := export.ToJSON(c.Document)
	if err != nil {
		a.log.Errorf("encode design: %v", err)
		return
	}
	a.send(protocol.DesignChanged{JSON: js})
}

// presentSketchRequest resets the editor for a new AI sketch request.
func (a *App) presentSketchRequest(title, prompt, context string) {
	a.session.Reset()
	a.session.SetMetadata(title, "")
	a.session.SetAIContext(prompt, context)
	js, err := a.session.JSON()
	if err != nil {
		a.log.Errorf("encode design: %v", err)
		return
	}
	a.send(protocol.LoadDesign{JSON: js})
	a.send(protocol.MCPContext{Title: title, Prompt: prompt})
}

func (a *App) onReady(ctx context.Context, _ protocol.Message) error {
	js, err := a.session.JSON()
	if err != nil {
		return err
	}
	a.send(protocol.LoadDesign{JSON: js})
	if req, ok := a.sketches.Pending(); ok {
		a.send(protocol.MCPContext{Title: req.Title, Prompt: req.Prompt})
	}
	return nil
}

func (a *App) onSaveDesign(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.SaveDesign)
	if msg.JSON != "" {
		if err := a.loadFromSurface(msg.JSON); err != nil {
			a.notify(NotifyError, "Save failed", "The design data could not be read.")
			return nil
		}
	}
	if msg.Title != "" || msg.Prompt != "" {
		a.syncing.Add(1)
		d := a.session.Document()
		if msg.Title != "" {
			a.session.SetMetadata(msg.Title, d.Description)
		}
		if msg.Prompt != "" {
			a.session.SetAIContext(msg.Prompt, d.AIContext)
		}
		a.syncing.Add(-1)
	}
	d := a.session.Document()

	path, err := a.dialogs.SaveFile(ctx, "Save Sketch", export.FileName(d.Title)+".svg", a.saveDir())
	if err != nil {
		a.notify(NotifyError, "Save failed", err.Error())
		return err
	}
	if path == "" {
		a.log.Infof("save cancelled")
		return nil
	}
	pair, err := export.WritePair(path, d, msg.SVG)
	if err != nil {
		a.notify(NotifyError, "Save failed", err.Error())
		return err
	}
	if a.library != nil {
		if _, err := a.library.Record(d, msg.SVG, pair, library.SourceSaved); err != nil {
			a.log.Warnf("record in library: %v", err)
		}
		if err := a.library.SetSetting("last_save_dir", filepath.Dir(pair.SVGPath)); err != nil {
			a.log.Warnf("remember save dir: %v", err)
		}
	}
	a.notify(NotifyInfo, "Sketch saved", fmt.Sprintf("Saved %s and %s", filepath.Base(pair.SVGPath), filepath.Base(pair.MarkdownPath)))
	return nil
}

func (a *App) onExportResult(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.ExportResult)
	a.mu.Lock()
	waiters := a.exportWaiters
	a.exportWaiters = nil
	a.mu.Unlock()
	if len(waiters) == 0 {
		a.log.Debugf("export result with no waiter")
		return nil
	}
	for _, ch := range waiters {
		ch <- msg
	}
	return nil
}

func (a *App) onConfirmSketch(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.ConfirmSketch)
	if msg.JSON != "" {
		if err := a.loadFromSurface(msg.JSON); err != nil {
			a.notify(NotifyError, "Sketch not sent", "The design data could not be read.")
			return nil
		}
	}
	if !a.sketches.Complete(msg.Title, msg.SVG, msg.JSON) {
		a.notify(NotifyWarning, "No sketch requested", "There is no pending sketch request to answer.")
		return nil
	}
	if a.library != nil {
		if _, err := a.library.Record(a.session.Document(), msg.SVG, export.Pair{}, library.SourceSketch); err != nil {
			a.log.Warnf("record in library: %v", err)
		}
	}
	a.notify(NotifyInfo, "Sketch sent", fmt.Sprintf("%q was sent to the assistant", msg.Title))
	return nil
}

func (a *App) onAskUser(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.AskUser)
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
		a.log.Warnf("askUser without requestId, assigned %s", msg.RequestID)
	}
	// dialogs block; answer off the dispatch path
	go a.answer(msg)
	return nil
}

// answer shows q and replies with userResponse. A dialog that outlives the
// configured timeout is answered with nil.
func (a *App) answer(q protocol.AskUser) {
	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.AskTimeout())
	defer cancel()

	type reply struct {
		value any
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		v, err := a.dialogs.Ask(ctx, q)
		ch <- reply{v, err}
	}()

	var value any
	select {
	case r := <-ch:
		if r.err != nil {
			a.log.Errorf("ask %s: %v", q.RequestID, r.err)
		} else {
			value = r.value
		}
	case <-ctx.Done():
		a.log.Warnf("ask %s: %v", q.RequestID, ctx.Err())
	}
	a.send(protocol.UserResponse{RequestID: q.RequestID, Value: value})
}

func (a *App) onError(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.Error)
	if msg.Stack != "" {
		a.log.Errorf("surface: %s\n%s", msg.Message, msg.Stack)
		return nil
	}
	a.log.Errorf("surface: %s", msg.Message)
	return nil
}

func (a *App) onLog(ctx context.Context, m protocol.Message) error {
	msg := m.(protocol.Log)
	line := msg.Message
	if len(msg.Data) > 0 {
		line += " " + string(msg.Data)
	}
	switch msg.Level {
	case "debug", "trace":
		a.log.Debugf("surface: %s", line)
	case "warn", "warning":
		a.log.Warnf("surface: %s", line)
	case "error":
		a.log.Errorf("surface: %s", line)
	default:
		a.log.Infof("surface: %s", line)
	}
	return nil
}

// requestExport asks the surface for its rendered design and waits for the
// answer, ctx or the configured export timeout.
func (a *App) requestExport(ctx context.Context) (protocol.ExportResult, error) {
	ch := make(chan protocol.ExportResult, 1)
	a.mu.Lock()
	a.exportWaiters = append(a.exportWaiters, ch)
	a.mu.Unlock()

	a.send(protocol.ExportDesign{})

	timer := time.NewTimer(a.cfg.ExportTimeout())
	defer timer.Stop()
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		a.dropWaiter(ch)
		return protocol.ExportResult{}, ctx.Err()
	case <-timer.C:
		a.dropWaiter(ch)
		return protocol.ExportResult{}, ErrExportTimeout
	}
}

func (a *App) dropWaiter(ch chan protocol.ExportResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, w := range a.exportWaiters {
		if w == ch {
			a.exportWaiters = append(a.exportWaiters[:i], a.exportWaiters[i+1:]...)
			return
		}
	}
}
