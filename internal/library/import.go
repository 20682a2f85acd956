package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sketchstudio/internal/export"
	"sketchstudio/internal/importers"
)

// ImportResult reports the outcome of a folder import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// ImportFolder records every importable file in dir. Markdown companions win
// over their sibling SVG, which would only carry the rendered shapes.
func (r *Repo) ImportFolder(dir string) (ImportResult, error) {
	result := ImportResult{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("read folder: %w", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		if !importers.CanImport(name) {
			result.Skipped++
			continue
		}
		ext := filepath.Ext(name)
		base := name[:len(name)-len(ext)]
		if ext == ".svg" && names[base+".md"] {
			continue
		}
		path := filepath.Join(dir, name)
		d, err := importers.ImportFile(path)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		pair := export.Pair{}
		switch ext {
		case ".md":
			pair.MarkdownPath = path
			if names[base+".svg"] {
				pair.SVGPath = filepath.Join(dir, base+".svg")
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: sibling %s.svg not found; rendering from design data", name, base))
			}
		case ".svg":
			pair.SVGPath = path
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no markdown companion; names and meanings are not recoverable", name))
		}
		svg := ""
		if pair.SVGPath != "" {
			if b, err := os.ReadFile(pair.SVGPath); err == nil {
				svg = string(b)
			}
		}
		if _, err := r.Record(d, svg, pair, SourceImported); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("save %q: %s", name, err.Error()))
			continue
		}
		result.Imported++
	}
	return result, nil
}
