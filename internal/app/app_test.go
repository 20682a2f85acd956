package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sketchstudio/internal/config"
	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
	"sketchstudio/internal/library"
	"sketchstudio/internal/logging"
	"sketchstudio/internal/protocol"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   []protocol.Message
	listen func([]byte)
}

func (f *fakeTransport) Send(m protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeTransport) Listen(fn func([]byte)) func() {
	f.listen = fn
	return func() { f.listen = nil }
}

func (f *fakeTransport) deliver(raw string) { f.listen([]byte(raw)) }

func (f *fakeTransport) messages() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Message(nil), f.sent...)
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

type notification struct {
	level NotifyLevel
	title string
}

type fakeDialogs struct {
	mu       sync.Mutex
	savePath string
	saveErr  error
	answer   any
	block    chan struct{}
	notes    []notification
}

func (f *fakeDialogs) SaveFile(ctx context.Context, title, defaultName, dir string) (string, error) {
	return f.savePath, f.saveErr
}

func (f *fakeDialogs) Ask(ctx context.Context, q protocol.AskUser) (any, error) {
	if f.block != nil {
		<-f.block
	}
	return f.answer, nil
}

func (f *fakeDialogs) Notify(ctx context.Context, level NotifyLevel, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, notification{level, title})
	return nil
}

func (f *fakeDialogs) last() notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notes) == 0 {
		return notification{}
	}
	return f.notes[len(f.notes)-1]
}

type harness struct {
	app     *App
	tr      *fakeTransport
	dlg     *fakeDialogs
	repo    *library.Repo
	logs    *bytes.Buffer
	saveDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo, err := library.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{tr: &fakeTransport{}, dlg: &fakeDialogs{}, repo: repo, logs: &bytes.Buffer{}, saveDir: t.TempDir()}
	cfg := &config.Global{
		CanvasWidth:      800,
		CanvasHeight:     600,
		BackgroundColor:  "#ffffff",
		SaveDir:          h.saveDir,
		AskTimeoutSec:    1,
		ExportTimeoutSec: 1,
	}
	log := logging.New(&syncWriter{buf: h.logs}, logging.LevelDebug, "test")
	h.app = NewApp("test", cfg, log, WithTransport(h.tr), WithDialogs(h.dlg), WithLibrary(repo))
	h.app.Startup(context.Background())
	t.Cleanup(func() { h.app.Shutdown(context.Background()) })
	return h
}

type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func surfaceJSON(t *testing.T, title string) string {
	t.Helper()
	d := design.NewDocument(design.Canvas{})
	d.Title = title
	d.Elements = append(d.Elements, design.NewRectangle(1, 2, 3, 4))
	js, err := export.ToJSON(d)
	if err != nil {
		t.Fatal(err)
	}
	return js
}

func encode(t *testing.T, m protocol.Message) string {
	t.Helper()
	b, err := protocol.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestReady_SendsDesignAndPendingContext(t *testing.T) {
	h := newHarness(t)
	h.tr.deliver(`{"type":"ready"}`)
	msgs := h.tr.messages()
	if len(msgs) != 1 || msgs[0].MessageType() != protocol.TypeLoadDesign {
		t.Fatalf("expected loadDesign, got %v", msgs)
	}

	h.app.sketches.Request("Login", "a login form")
	h.tr.reset()
	h.tr.deliver(`{"type":"ready"}`)
	msgs = h.tr.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected loadDesign and mcpContext, got %v", msgs)
	}
	if ctx, ok := msgs[1].(protocol.MCPContext); !ok || ctx.Title != "Login" || ctx.Prompt != "a login form" {
		t.Errorf("unexpected context message %#v", msgs[1])
	}
}

func TestSaveDesign_WritesPairAndRecords(t *testing.T) {
	h := newHarness(t)
	h.dlg.savePath = filepath.Join(h.saveDir, "login.svg")
	js := surfaceJSON(t, "ignored")

	h.tr.deliver(encode(t, protocol.SaveDesign{SVG: "<svg>surface</svg>", JSON: js, Title: "Login", Prompt: "make it simple"}))

	svg, err := os.ReadFile(filepath.Join(h.saveDir, "login.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(svg) != "<svg>surface</svg>" {
		t.Errorf("surface svg should be written as-is, got %s", svg)
	}
	md, err := os.ReadFile(filepath.Join(h.saveDir, "login.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# Login\n") || !strings.Contains(string(md), "make it simple") {
		t.Errorf("markdown:\n%s", md)
	}
	if n := h.dlg.last(); n.level != NotifyInfo || n.title != "Sketch saved" {
		t.Errorf("notification: %+v", n)
	}
	list, _ := h.repo.ListSketches()
	if len(list) != 1 || list[0].Title != "Login" || list[0].Source != library.SourceSaved {
		t.Errorf("library: %+v", list)
	}
	if dir, _ := h.repo.GetSetting("last_save_dir"); dir != h.saveDir {
		t.Errorf("last_save_dir = %q", dir)
	}
	for _, m := range h.tr.messages() {
		if m.MessageType() == protocol.TypeDesignChanged {
			t.Error("surface save should not echo designChanged")
		}
	}
}

func TestSaveDesign_Cancelled(t *testing.T) {
	h := newHarness(t)
	h.tr.deliver(encode(t, protocol.SaveDesign{JSON: surfaceJSON(t, "x"), Title: "x"}))
	entries, _ := os.ReadDir(h.saveDir)
	if len(entries) != 0 {
		t.Errorf("cancelled save wrote files: %v", entries)
	}
	if n := h.dlg.last(); n.title != "" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestSaveDesign_Failures(t *testing.T) {
	h := newHarness(t)
	before := h.app.session.Document()

	h.tr.deliver(encode(t, protocol.SaveDesign{JSON: "{broken", Title: "x"}))
	if n := h.dlg.last(); n.level != NotifyError {
		t.Errorf("expected error notification, got %+v", n)
	}
	if h.app.session.Document().ID != before.ID {
		t.Error("malformed save replaced the document")
	}

	h.dlg.saveErr = errors.New("dialog crashed")
	h.tr.deliver(encode(t, protocol.SaveDesign{Title: "x"}))
	if n := h.dlg.last(); n.level != NotifyError || n.title != "Save failed" {
		t.Errorf("expected save failure notification, got %+v", n)
	}
}

func TestConfirmSketch(t *testing.T) {
	h := newHarness(t)
	ticket := h.app.sketches.Request("Login", "p")
	js := surfaceJSON(t, "Login")

	h.tr.deliver(encode(t, protocol.ConfirmSketch{SVG: "<svg/>", JSON: js, Title: "Login"}))
	res, err := ticket.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.JSON != js {
		t.Errorf("unexpected result %+v", res)
	}
	list, _ := h.repo.ListSketches()
	if len(list) != 1 || list[0].Source != library.SourceSketch {
		t.Errorf("library: %+v", list)
	}

	h.tr.deliver(encode(t, protocol.ConfirmSketch{SVG: "<svg/>", JSON: js, Title: "Login"}))
	if n := h.dlg.last(); n.level != NotifyWarning {
		t.Errorf("expected warning without pending request, got %+v", n)
	}
}

func lastUserResponse(h *harness) (protocol.UserResponse, bool) {
	for _, m := range h.tr.messages() {
		if r, ok := m.(protocol.UserResponse); ok {
			return r, true
		}
	}
	return protocol.UserResponse{}, false
}

func TestAskUser(t *testing.T) {
	tests := []struct {
		name   string
		answer any
	}{
		{"confirm", true},
		{"select", "Mobile"},
		{"cancelled", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.dlg.answer = tt.answer
			h.tr.deliver(`{"type":"askUser","requestId":"r1","questionType":"select","title":"Target?","options":["Mobile","Desktop"]}`)
			waitFor(t, func() bool { _, ok := lastUserResponse(h); return ok })
			r, _ := lastUserResponse(h)
			if r.RequestID != "r1" || r.Value != tt.answer {
				t.Errorf("got %+v, want value %v", r, tt.answer)
			}
		})
	}
}

func TestAskUser_TimeoutAnswersNull(t *testing.T) {
	h := newHarness(t)
	h.dlg.answer = "late"
	h.dlg.block = make(chan struct{})
	defer close(h.dlg.block)

	h.tr.deliver(`{"type":"askUser","requestId":"r2","questionType":"text","title":"Name?"}`)
	waitFor(t, func() bool { _, ok := lastUserResponse(h); return ok })
	r, _ := lastUserResponse(h)
	if r.RequestID != "r2" || r.Value != nil {
		t.Errorf("expected null answer after timeout, got %+v", r)
	}
}

func (f *fakeTransport) sentType(t protocol.Type) bool {
	for _, m := range f.messages() {
		if m.MessageType() == t {
			return true
		}
	}
	return false
}

func TestRequestExport(t *testing.T) {
	h := newHarness(t)
	go func() {
		for !h.tr.sentType(protocol.TypeExportDesign) {
			time.Sleep(5 * time.Millisecond)
		}
		h.tr.deliver(`{"type":"exportResult","svg":"<svg/>","json":"{}","title":"T"}`)
	}()
	res, err := h.app.requestExport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.SVG != "<svg/>" || res.Title != "T" {
		t.Errorf("unexpected export %+v", res)
	}

	if _, err := h.app.requestExport(context.Background()); !errors.Is(err, ErrExportTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
	h.app.mu.Lock()
	n := len(h.app.exportWaiters)
	h.app.mu.Unlock()
	if n != 0 {
		t.Error("timed out waiter not dropped")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.app.requestExport(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUnknownAndDiagnosticMessages(t *testing.T) {
	h := newHarness(t)
	h.tr.deliver(`{"type":"warpDrive"}`)
	h.tr.deliver(`{"type":"error","message":"render failed","stack":"at draw()"}`)
	h.tr.deliver(`{"type":"log","level":"warn","message":"slow","data":{"ms":900}}`)
	out := h.logs.String()
	for _, want := range []string{"ignoring message", "surface: render failed", `surface: slow {"ms":900}`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in logs:\n%s", want, out)
		}
	}
}

func TestHostMutationsPushDesignChanged(t *testing.T) {
	h := newHarness(t)
	id, err := h.app.AddElement(`{"id":"e1","type":"circle","x":5,"y":5,"radius":3,"fill":"#fff","stroke":"#000","strokeWidth":1}`)
	if err != nil || id != "e1" {
		t.Fatalf("AddElement: %q %v", id, err)
	}
	msgs := h.tr.messages()
	if len(msgs) != 1 || msgs[0].MessageType() != protocol.TypeDesignChanged {
		t.Fatalf("expected designChanged, got %v", msgs)
	}
	if !strings.Contains(msgs[0].(protocol.DesignChanged).JSON, `"id": "e1"`) {
		t.Error("designChanged should carry the new element")
	}

	h.tr.reset()
	h.app.SelectElement("")
	if len(h.tr.messages()) != 0 {
		t.Error("selection changes are not pushed")
	}
	if h.app.HitTest(5, 5) != "e1" || h.app.HitTest(50, 50) != "" {
		t.Error("HitTest")
	}
}

func TestPresentSketchRequest(t *testing.T) {
	h := newHarness(t)
	h.app.AddElement(`{"id":"old","type":"circle","x":5,"y":5,"radius":3,"fill":"#fff","stroke":"#000","strokeWidth":1}`)
	h.tr.reset()

	h.app.presentSketchRequest("Checkout", "one-page checkout", "uses Stripe")
	d := h.app.session.Document()
	if d.Title != "Checkout" || d.Prompt != "one-page checkout" || d.AIContext != "uses Stripe" || len(d.Elements) != 0 {
		t.Errorf("document not prepared: %+v", d)
	}
	var sawLoad, sawContext bool
	for _, m := range h.tr.messages() {
		switch v := m.(type) {
		case protocol.LoadDesign:
			sawLoad = strings.Contains(v.JSON, `"title": "Checkout"`)
		case protocol.MCPContext:
			sawContext = v.Title == "Checkout"
		}
	}
	if !sawLoad || !sawContext {
		t.Errorf("expected loadDesign and mcpContext, got %v", h.tr.messages())
	}
}

func TestShutdownCancelsPendingSketch(t *testing.T) {
	h := newHarness(t)
	ticket := h.app.sketches.Request("A", "p")
	h.app.Shutdown(context.Background())
	res, err := ticket.Wait(context.Background())
	if err != nil || res.Success || !strings.Contains(res.Error, "editor closed") {
		t.Errorf("unexpected result %+v %v", res, err)
	}
}

func TestLibraryBindings(t *testing.T) {
	h := newHarness(t)
	d := design.NewDocument(design.Canvas{})
	d.Title = "Stored"
	h.repo.Record(d, "", export.Pair{}, library.SourceSaved)

	list, err := h.app.ListSketches()
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSketches: %v %v", list, err)
	}
	if err := h.app.OpenSketch(d.ID); err != nil {
		t.Fatal(err)
	}
	if h.app.session.Document().Title != "Stored" {
		t.Error("OpenSketch did not load the design")
	}
	if err := h.app.OpenSketch("missing"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	out, err := h.app.ExportAs("markdown")
	if err != nil || !strings.HasPrefix(out, "# Stored") {
		t.Errorf("ExportAs: %v\n%s", err, out)
	}
}

func TestSurfaceLoadsKeepCurrentView(t *testing.T) {
	tests := []struct {
		name    string
		message func(js string) protocol.Message
	}{
		{"saveDesign", func(js string) protocol.Message { return protocol.SaveDesign{JSON: js, Title: "Settings"} }},
		{"confirmSketch", func(js string) protocol.Message { return protocol.ConfirmSketch{JSON: js, Title: "Settings"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.dlg.savePath = filepath.Join(h.saveDir, "settings.svg")
			h.app.sketches.Request("Settings", "p")
			if _, err := h.app.AddElement(`{"id":"v","type":"rectangle","x":0,"y":0,"width":200,"height":200,"fill":"#fff","stroke":"#000","strokeWidth":1,"name":"Settings","meaning":"view"}`); err != nil {
				t.Fatal(err)
			}
			if !h.app.EnterView("Settings") {
				t.Fatal("EnterView(Settings) failed")
			}
			js, err := h.app.DocumentJSON()
			if err != nil {
				t.Fatal(err)
			}

			h.tr.deliver(encode(t, tt.message(js)))
			if got := h.app.ViewContext(); got != "Settings" {
				t.Fatalf("view after %s = %q", tt.name, got)
			}
			id, err := h.app.AddElement(`{"type":"circle","x":5,"y":5,"radius":3,"fill":"#fff","stroke":"#000","strokeWidth":1}`)
			if err != nil {
				t.Fatal(err)
			}
			if e, _ := h.app.session.Document().Find(id); e == nil || e.Parent != "Settings" {
				t.Errorf("element added after %s should live in Settings, got %+v", tt.name, e)
			}
		})
	}
}

func TestCurrentDesignUsesSurfaceExport(t *testing.T) {
	h := newHarness(t)
	opts := h.app.mcpOptions()
	if opts.Export == nil || opts.Session == nil || opts.Present == nil {
		t.Fatal("MCP tools not bound to the editor")
	}
	go func() {
		for !h.tr.sentType(protocol.TypeExportDesign) {
			time.Sleep(5 * time.Millisecond)
		}
		h.tr.deliver(`{"type":"exportResult","svg":"<svg>live</svg>","json":"{}","title":"Live"}`)
	}()
	res, err := opts.Export(context.Background())
	if err != nil || res.SVG != "<svg>live</svg>" {
		t.Errorf("Export = %+v, %v", res, err)
	}
}

func TestWailsDialogs_TextQuestionLogged(t *testing.T) {
	var buf bytes.Buffer
	d := NewWailsDialogs(context.Background(), logging.New(&buf, logging.LevelDebug, ""))
	v, err := d.Ask(context.Background(), protocol.AskUser{RequestID: "r9", QuestionType: protocol.QuestionText, Title: "Name?"})
	if err != nil || v != nil {
		t.Fatalf("Ask = %v, %v; want nil, nil", v, err)
	}
	if !strings.Contains(buf.String(), `ask r9: "text" questions have no native dialog`) {
		t.Errorf("missing warning: %q", buf.String())
	}
}
