// Package importers turns files written by Sketch Studio, or plain SVG drawn
// elsewhere, back into design documents.
package importers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
)

// Importer converts file content into a document.
type Importer interface {
	CanImport(filename string) bool
	Import(content string) (*design.Document, error)
}

var registry []Importer

// Register adds an importer to the registry.
func Register(i Importer) {
	registry = append(registry, i)
}

// ImportFile picks an importer by file name and reads path. A document still
// carrying the default title is named after the file.
func ImportFile(path string) (*design.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	for _, imp := range registry {
		if !imp.CanImport(path) {
			continue
		}
		d, err := imp.Import(string(data))
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", filepath.Base(path), err)
		}
		if d.Title == "" || d.Title == design.DefaultTitle {
			d.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return d, nil
	}
	return nil, fmt.Errorf("import %s: unsupported file type", filepath.Base(path))
}

// CanImport reports whether any registered importer accepts filename.
func CanImport(filename string) bool {
	for _, imp := range registry {
		if imp.CanImport(filename) {
			return true
		}
	}
	return false
}

type markdownImporter struct{}

func (markdownImporter) CanImport(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

func (markdownImporter) Import(content string) (*design.Document, error) {
	return ParseMarkdown(content)
}

type jsonImporter struct{}

func (jsonImporter) CanImport(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonImporter) Import(content string) (*design.Document, error) {
	return export.FromJSON(content)
}

type svgImporter struct{}

func (svgImporter) CanImport(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".svg")
}

func (svgImporter) Import(content string) (*design.Document, error) {
	return ParseSVG(content)
}

func init() {
	Register(markdownImporter{})
	Register(jsonImporter{})
	Register(svgImporter{})
}

// ParseMarkdown reads a markdown companion file. Line endings are normalized
// before the design data block is located.
func ParseMarkdown(md string) (*design.Document, error) {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	d, err := export.FromMarkdown(md)
	if err != nil {
		return nil, err
	}
	if d.Title == "" {
		d.Title = markdownTitle(md)
	}
	return d, nil
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}
