package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
)

func openTemp(t *testing.T) *Repo {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "lib", "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func nestedDocument() *design.Document {
	d := design.NewDocument(design.Canvas{})
	d.Title = "Dashboard"
	d.Prompt = "admin dashboard"
	v := design.NewRectangle(0, 0, 300, 200)
	v.Name = "Main"
	v.Meaning = design.MeaningView
	btn := design.NewRectangle(10, 10, 50, 20)
	btn.Name = "Refresh"
	btn.Meaning = design.MeaningControl
	btn.Parent = "Main"
	d.Elements = append(d.Elements, v, btn, design.NewCircle(5, 5, 5))
	return d
}

func TestRecordAndGet(t *testing.T) {
	r := openTemp(t)
	d := nestedDocument()
	pair := export.Pair{SVGPath: "/tmp/dashboard.svg", MarkdownPath: "/tmp/dashboard.md"}
	if _, err := r.Record(d, "", pair, SourceSaved); err != nil {
		t.Fatal(err)
	}

	s, err := r.GetSketch(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Dashboard" || s.Prompt != "admin dashboard" || s.Source != SourceSaved {
		t.Errorf("unexpected sketch: %+v", s)
	}
	if s.SVG != export.ToSVG(d) {
		t.Error("svg should be rendered when not supplied")
	}
	if s.SVGPath != pair.SVGPath || s.MarkdownPath != pair.MarkdownPath {
		t.Errorf("paths: %q %q", s.SVGPath, s.MarkdownPath)
	}
	if !s.UpdatedAt.Equal(d.ModifiedAt) {
		t.Errorf("UpdatedAt = %v, want %v", s.UpdatedAt, d.ModifiedAt)
	}
	if len(s.Elements) != 3 || s.Elements[1].Parent != "Main" || s.Elements[1].Meaning != "control" {
		t.Errorf("element index: %+v", s.Elements)
	}

	back, err := r.Document(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if back.Title != d.Title || len(back.Elements) != 3 {
		t.Error("stored design did not decode")
	}

	views, err := r.Views(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0] != "Main" {
		t.Errorf("Views() = %v", views)
	}
}

func TestRecord_UpsertKeepsPaths(t *testing.T) {
	r := openTemp(t)
	d := nestedDocument()
	r.Record(d, "", export.Pair{SVGPath: "/a.svg", MarkdownPath: "/a.md"}, SourceSaved)

	d.Title = "Dashboard v2"
	d.Elements = d.Elements[:1]
	d.ModifiedAt = d.ModifiedAt.Add(time.Hour)
	if _, err := r.Record(d, "<svg/>", export.Pair{}, SourceSketch); err != nil {
		t.Fatal(err)
	}
	s, err := r.GetSketch(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Dashboard v2" || s.SVG != "<svg/>" || s.Source != SourceSketch {
		t.Errorf("upsert lost changes: %+v", s)
	}
	if s.SVGPath != "/a.svg" {
		t.Error("empty path should not erase the stored one")
	}
	if len(s.Elements) != 1 {
		t.Errorf("element index not replaced: %d", len(s.Elements))
	}
}

func TestListAndDelete(t *testing.T) {
	r := openTemp(t)
	older := nestedDocument()
	newer := design.NewDocument(design.Canvas{})
	newer.Title = "Login"
	newer.ModifiedAt = older.ModifiedAt.Add(time.Minute)
	r.Record(older, "", export.Pair{}, SourceSaved)
	r.Record(newer, "", export.Pair{}, SourceSketch)

	list, err := r.ListSketches()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title != "Login" || list[1].ElementCount != 3 {
		t.Errorf("ListSketches() = %+v", list)
	}

	if err := r.DeleteSketch(older.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetSketch(older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.DeleteSketch(older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if els, _ := r.getElements(older.ID); len(els) != 0 {
		t.Error("element index should cascade")
	}
}

func TestSettings(t *testing.T) {
	r := openTemp(t)
	if v, err := r.GetSetting("last_save_dir"); err != nil || v != "" {
		t.Errorf("missing setting: %q %v", v, err)
	}
	r.SetSetting("last_save_dir", "/a")
	r.SetSetting("last_save_dir", "/b")
	if v, _ := r.GetSetting("last_save_dir"); v != "/b" {
		t.Errorf("GetSetting = %q", v)
	}
}

func TestOpen_ReopenAndVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	d := nestedDocument()
	r.Record(d, "", export.Pair{}, SourceSaved)
	r.db.Exec("INSERT INTO schema_version (version) VALUES (99)")
	r.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error for a newer library version")
	}
}

func TestImportFolder(t *testing.T) {
	r := openTemp(t)
	dir := t.TempDir()

	withMD := nestedDocument()
	if _, err := export.WritePair(filepath.Join(dir, "dashboard"), withMD, ""); err != nil {
		t.Fatal(err)
	}
	bare := design.NewDocument(design.Canvas{})
	bare.Elements = append(bare.Elements, design.NewCircle(1, 1, 1))
	os.WriteFile(filepath.Join(dir, "loose.svg"), []byte(export.ToSVG(bare)), 0644)
	os.WriteFile(filepath.Join(dir, "broken.md"), []byte("# Broken\n\nno data\n"), 0644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644)

	res, err := r.ImportFolder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || res.Skipped != 1 || len(res.Errors) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	s, err := r.GetSketch(withMD.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Source != SourceImported || s.MarkdownPath == "" || s.SVGPath == "" {
		t.Errorf("imported sketch: %+v", s)
	}
	if len(s.Elements) != 3 || s.Elements[0].Name != "Main" {
		t.Error("markdown import should keep names and meanings")
	}
}
