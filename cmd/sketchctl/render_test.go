package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
)

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	d := design.NewDocument(design.Canvas{})
	d.Title = "Checkout"
	d.Elements = append(d.Elements, design.NewCircle(40, 40, 12))
	js, err := export.ToJSON(d)
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(dir, "checkout.json")
	if err := os.WriteFile(src, []byte(js), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"svg", `<circle cx="40" cy="40" r="12"`, false},
		{"markdown", "# Checkout\n", false},
		{"json", `"title": "Checkout"`, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := renderFile(src, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("renderFile error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	if _, err := renderFile(filepath.Join(dir, "notes.txt"), "svg"); err == nil {
		t.Error("expected error for missing or unsupported file")
	}
}
