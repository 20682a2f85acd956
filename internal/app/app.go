package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"sketchstudio/internal/config"
	"sketchstudio/internal/export"
	"sketchstudio/internal/importers"
	"sketchstudio/internal/library"
	"sketchstudio/internal/logging"
	"sketchstudio/internal/mcptool"
	"sketchstudio/internal/protocol"
	"sketchstudio/internal/session"
	"sketchstudio/internal/sketch"
)

// App is the Wails-bound host: it owns the editing session, answers the
// editor surface's messages and serves sketch requests to AI tools.
type App struct {
	ctx     context.Context
	version string
	cfg     *config.Global
	log     *logging.Logger

	session  *session.Session
	sketches *sketch.Coordinator
	library  *library.Repo
	router   *protocol.Router

	transport Transport
	dialogs   Dialogs
	mcp       *mcptool.Server

	stopListen  func()
	unsubscribe func()

	// syncing counts surface-originated loads in flight; their session
	// changes are not echoed back as designChanged.
	syncing atomic.Int32

	mu            sync.Mutex
	exportWaiters []chan protocol.ExportResult
}

// Option configures an App.
type Option func(*App)

// WithTransport replaces the Wails event transport.
func WithTransport(t Transport) Option { return func(a *App) { a.transport = t } }

// WithDialogs replaces the Wails dialogs.
func WithDialogs(d Dialogs) Option { return func(a *App) { a.dialogs = d } }

// WithLibrary uses an already open library instead of opening cfg.LibraryPath.
func WithLibrary(r *library.Repo) Option { return func(a *App) { a.library = r } }

// NewApp returns a new App. version is the application version (e.g. "0.2.0").
// Call Startup with the Wails context before using dialogs.
func NewApp(version string, cfg *config.Global, log *logging.Logger, opts ...Option) *App {
	a := &App{
		version:  version,
		cfg:      cfg,
		log:      log.WithPrefix("host"),
		session:  session.New(cfg.Canvas(), log),
		sketches: sketch.NewCoordinator(),
		router:   protocol.NewRouter(log),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.routes()
	return a
}

// Version returns the application version.
func (a *App) Version() string {
	return a.version
}

// Session returns the editing session.
func (a *App) Session() *session.Session { return a.session }

// Sketches returns the sketch request coordinator.
func (a *App) Sketches() *sketch.Coordinator { return a.sketches }

// Startup is called by Wails when the app starts; store context for dialogs
// and start listening to the surface.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	if a.transport == nil {
		a.transport = NewWailsTransport(ctx)
	}
	if a.dialogs == nil {
		a.dialogs = NewWailsDialogs(ctx, a.log)
	}
	if a.library == nil && a.cfg.LibraryPath != "" {
		repo, err := library.Open(a.cfg.LibraryPath)
		if err != nil {
			a.log.Errorf("open library: %v", err)
		} else {
			a.library = repo
		}
	}

	a.stopListen = a.transport.Listen(func(data []byte) {
		a.router.Dispatch(a.ctx, data)
	})
	a.unsubscribe = a.session.Subscribe(a.pushChange)

	if a.cfg.MCPEnabled {
		a.mcp = mcptool.New(a.version, a.mcpOptions())
		go func() {
			if err := a.mcp.ServeSSE(a.cfg.MCPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Errorf("mcp server: %v", err)
			}
		}()
	}
	a.log.Infof("started %s", a.version)
}

// mcpOptions binds the AI tools to this editor.
func (a *App) mcpOptions() mcptool.Options {
	return mcptool.Options{
		Sketches: a.sketches,
		Library:  a.library,
		Session:  a.session,
		Present:  a.presentSketchRequest,
		Export:   a.requestExport,
		Log:      a.log,
	}
}

// Shutdown is called by Wails when the window closes. A pending sketch request
// is cancelled so the waiting AI tool gets an answer.
func (a *App) Shutdown(ctx context.Context) {
	a.sketches.Cancel("User cancelled the sketch request: editor closed")
	if a.mcp != nil {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.mcp.Shutdown(sctx); err != nil {
			a.log.Warnf("stop mcp server: %v", err)
		}
		cancel()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.stopListen != nil {
		a.stopListen()
	}
	if a.library != nil {
		if err := a.library.Close(); err != nil {
			a.log.Warnf("close library: %v", err)
		}
	}
}

// SaveFileDialog opens a save file dialog and returns the chosen path, or empty string if cancelled.
func (a *App) SaveFileDialog(title string, defaultFilename string) (string, error) {
	return a.dialogs.SaveFile(a.ctx, title, defaultFilename, a.saveDir())
}

// OpenFileDialog opens a file dialog for designs and returns the chosen path, or empty string if cancelled.
func (a *App) OpenFileDialog(title string) (string, error) {
	return runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title:            title,
		DefaultDirectory: a.saveDir(),
		Filters: []runtime.FileFilter{
			{DisplayName: "Sketches (*.md;*.svg;*.json)", Pattern: "*.md;*.svg;*.json"},
		},
	})
}

// ImportFile opens a markdown companion, SVG or JSON design in the editor.
func (a *App) ImportFile(path string) error {
	d, err := importers.ImportFile(path)
	if err != nil {
		a.log.Errorf("%v", err)
		return err
	}
	a.session.Open(d)
	return nil
}

// ListFiles returns sketch markdown files in rootPath, relative to rootPath.
func (a *App) ListFiles(rootPath string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(rootPath, "*.md"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, filepath.Base(m))
	}
	sort.Strings(out)
	return out, nil
}

// ListSketches returns the library listing.
func (a *App) ListSketches() ([]library.SketchSummary, error) {
	if a.library == nil {
		return []library.SketchSummary{}, nil
	}
	return a.library.ListSketches()
}

// OpenSketch loads a library sketch into the editor.
func (a *App) OpenSketch(id string) error {
	if a.library == nil {
		return library.ErrNotFound
	}
	d, err := a.library.Document(id)
	if err != nil {
		return err
	}
	a.session.Open(d)
	return nil
}

// DeleteSketch removes a sketch from the library. Files on disk are kept.
func (a *App) DeleteSketch(id string) error {
	if a.library == nil {
		return library.ErrNotFound
	}
	return a.library.DeleteSketch(id)
}

// ExportAs renders the current design in the given format (svg, json, markdown).
func (a *App) ExportAs(format string) (string, error) {
	return export.Export(format, a.session.Document())
}

// saveDir is the directory offered by save dialogs: the last one used, or
// the configured default.
func (a *App) saveDir() string {
	if a.library != nil {
		if dir, err := a.library.GetSetting("last_save_dir"); err == nil && dir != "" {
			return dir
		}
	}
	return a.cfg.SaveDir
}
