package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sketchstudio/internal/design"
)

// Exporter renders a document to one output format.
type Exporter interface {
	Format() string
	Export(d *design.Document) (string, error)
}

type svgExporter struct{}

func (svgExporter) Format() string                            { return "svg" }
func (svgExporter) Export(d *design.Document) (string, error) { return ToSVG(d), nil }

type jsonExporter struct{}

func (jsonExporter) Format() string                            { return "json" }
func (jsonExporter) Export(d *design.Document) (string, error) { return ToJSON(d) }

type markdownExporter struct{}

func (markdownExporter) Format() string { return "markdown" }
func (markdownExporter) Export(d *design.Document) (string, error) {
	return ToMarkdown(d, FileName(d.Title)+".svg")
}

var registry = map[string]Exporter{
	"svg":      svgExporter{},
	"json":     jsonExporter{},
	"markdown": markdownExporter{},
	"md":       markdownExporter{},
}

// Register adds an exporter under a format name.
func Register(name string, e Exporter) {
	registry[name] = e
}

// Export renders d in the named format, or returns an error if unknown.
func Export(format string, d *design.Document) (string, error) {
	e, ok := registry[strings.ToLower(format)]
	if !ok {
		return "", fmt.Errorf("unknown export format: %s", format)
	}
	return e.Export(d)
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FileName turns a title into a kebab-case file base name.
func FileName(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	var out strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			out.WriteRune(r)
		}
	}
	name := strings.Trim(out.String(), "-")
	if name == "" {
		return "sketch"
	}
	return name
}

// Pair is the location of a saved design.
type Pair struct {
	SVGPath      string
	MarkdownPath string
}

// WritePair writes <base>.svg and <base>.md next to each other. base may carry
// a .svg or .md extension, which is stripped. When svg is empty it is rendered
// from d.
func WritePair(base string, d *design.Document, svg string) (Pair, error) {
	ext := filepath.Ext(base)
	if ext == ".svg" || ext == ".md" {
		base = strings.TrimSuffix(base, ext)
	}
	if svg == "" {
		svg = ToSVG(d)
	}
	p := Pair{SVGPath: base + ".svg", MarkdownPath: base + ".md"}

	md, err := ToMarkdown(d, filepath.Base(p.SVGPath))
	if err != nil {
		return Pair{}, err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return Pair{}, fmt.Errorf("create directory: %w", err)
	}
	if err := safeWriteFile(p.SVGPath, []byte(svg)); err != nil {
		return Pair{}, err
	}
	if err := safeWriteFile(p.MarkdownPath, []byte(md)); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// safeWriteFile writes data to a temp file and atomically renames it into place.
func safeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
