package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"sketchstudio/internal/logging"
	"sketchstudio/internal/protocol"
)

// Event channels between the host and the editor surface.
const (
	SurfaceChannel = "sketch:surface"
	HostChannel    = "sketch:host"
)

// Transport carries protocol messages to and from the editor surface.
type Transport interface {
	Send(m protocol.Message) error
	// Listen delivers each raw surface message to fn until the returned
	// function is called.
	Listen(fn func(data []byte)) (stop func())
}

// NotifyLevel selects the notification style.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)

// Dialogs are the host's native dialogs.
type Dialogs interface {
	// SaveFile returns the chosen path, or "" when cancelled.
	SaveFile(ctx context.Context, title, defaultName, dir string) (string, error)
	// Ask shows q and returns the answer: a bool for confirmations, a string
	// otherwise, nil when cancelled.
	Ask(ctx context.Context, q protocol.AskUser) (any, error)
	Notify(ctx context.Context, level NotifyLevel, title, message string) error
}

type wailsTransport struct {
	ctx context.Context
}

// NewWailsTransport sends on HostChannel and listens on SurfaceChannel.
func NewWailsTransport(ctx context.Context) Transport {
	return &wailsTransport{ctx: ctx}
}

func (t *wailsTransport) Send(m protocol.Message) error {
	b, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	runtime.EventsEmit(t.ctx, HostChannel, string(b))
	return nil
}

func (t *wailsTransport) Listen(fn func(data []byte)) func() {
	return runtime.EventsOn(t.ctx, SurfaceChannel, func(optionalData ...interface{}) {
		for _, d := range optionalData {
			switch v := d.(type) {
			case string:
				fn([]byte(v))
			default:
				// the surface may emit objects instead of encoded strings
				b, err := json.Marshal(v)
				if err == nil {
					fn(b)
				}
			}
		}
	})
}

type wailsDialogs struct {
	ctx context.Context
	log *logging.Logger
}

// NewWailsDialogs returns dialogs backed by the Wails runtime. Free-text
// questions have no native dialog; each one is logged and answered with nil.
func NewWailsDialogs(ctx context.Context, log *logging.Logger) Dialogs {
	return &wailsDialogs{ctx: ctx, log: log.WithPrefix("dialogs")}
}

func (d *wailsDialogs) SaveFile(_ context.Context, title, defaultName, dir string) (string, error) {
	return runtime.SaveFileDialog(d.ctx, runtime.SaveDialogOptions{
		Title:            title,
		DefaultFilename:  defaultName,
		DefaultDirectory: dir,
		Filters: []runtime.FileFilter{
			{DisplayName: "SVG Image (*.svg)", Pattern: "*.svg"},
		},
	})
}

func (d *wailsDialogs) Ask(_ context.Context, q protocol.AskUser) (any, error) {
	switch q.QuestionType {
	case protocol.QuestionConfirm:
		res, err := runtime.MessageDialog(d.ctx, runtime.MessageDialogOptions{
			Type:          runtime.QuestionDialog,
			Title:         q.Title,
			Message:       q.Placeholder,
			Buttons:       []string{"Yes", "No"},
			DefaultButton: "Yes",
			CancelButton:  "No",
		})
		if err != nil {
			return nil, err
		}
		return res == "Yes", nil
	case protocol.QuestionSelect:
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("select question %s has no options", q.RequestID)
		}
		res, err := runtime.MessageDialog(d.ctx, runtime.MessageDialogOptions{
			Type:          runtime.QuestionDialog,
			Title:         q.Title,
			Message:       q.Placeholder,
			Buttons:       q.Options,
			DefaultButton: q.Options[0],
		})
		if err != nil {
			return nil, err
		}
		for _, o := range q.Options {
			if o == res {
				return res, nil
			}
		}
		return nil, nil
	default:
		d.log.Warnf("ask %s: %q questions have no native dialog, answering null", q.RequestID, string(q.QuestionType))
		return nil, nil
	}
}

func (d *wailsDialogs) Notify(_ context.Context, level NotifyLevel, title, message string) error {
	typ := runtime.InfoDialog
	switch level {
	case NotifyWarning:
		typ = runtime.WarningDialog
	case NotifyError:
		typ = runtime.ErrorDialog
	}
	_, err := runtime.MessageDialog(d.ctx, runtime.MessageDialogOptions{
		Type:    typ,
		Title:   title,
		Message: message,
	})
	return err
}
