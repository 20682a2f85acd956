package export

import (
	"errors"
	"fmt"
	"strings"

	"sketchstudio/internal/design"
)

// ErrNoDesignData is returned when a markdown companion has no fenced JSON block.
var ErrNoDesignData = errors.New("no design data block found")

const jsonFence = "```json"

// ToMarkdown renders the markdown companion for a saved design: the title,
// a reference to the sibling SVG, optional prompt and description sections,
// a structure summary, and the full document JSON in a fenced block. Files
// written by earlier versions follow the same section order, so it must not
// change.
func ToMarkdown(d *design.Document, svgFileName string) (string, error) {
	data, err := ToJSON(d)
	if err != nil {
		return "", err
	}

	title := oneLine(d.Title)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	// angle brackets keep spaces and parentheses in the file name intact
	sb.WriteString(fmt.Sprintf("![%s](<./%s>)\n\n", altText.Replace(title), svgFileName))

	if d.Prompt != "" {
		sb.WriteString("## Prompt\n\n")
		sb.WriteString(strings.TrimSpace(d.Prompt))
		sb.WriteString("\n\n")
	}
	if d.Description != "" {
		sb.WriteString("## Description\n\n")
		sb.WriteString(strings.TrimSpace(d.Description))
		sb.WriteString("\n\n")
	}
	writeStructure(&sb, d)
	sb.WriteString("## Design Data\n\n")
	sb.WriteString(jsonFence + "\n")
	sb.WriteString(data)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

var altText = strings.NewReplacer("[", "\\[", "]", "\\]")

// oneLine collapses runs of whitespace, newlines included, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// writeStructure summarizes views, meanings and orphans for readers of the
// companion. Empty documents get no section.
func writeStructure(sb *strings.Builder, d *design.Document) {
	if len(d.Elements) == 0 {
		return
	}
	sb.WriteString("## Structure\n\n")
	sb.WriteString(fmt.Sprintf("- Root: %s\n", countNoun(len(d.ChildrenOf("")), "element")))
	for _, v := range d.Views() {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", oneLine(v.Name), v.Meaning.Label(), countNoun(len(d.ChildrenOf(v.Name)), "element")))
	}

	counts := map[design.Meaning]int{}
	for _, e := range d.Elements {
		counts[e.Meaning]++
	}
	var parts []string
	for _, m := range design.Meanings() {
		if m == design.MeaningNone || m == design.MeaningView || counts[m] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", m.Label(), counts[m]))
	}
	if len(parts) > 0 {
		sb.WriteString("- Meanings: " + strings.Join(parts, ", ") + "\n")
	}

	if orphans := d.Orphans(); len(orphans) > 0 {
		sb.WriteString(fmt.Sprintf("- Orphans: %s whose parent view is missing\n", countNoun(len(orphans), "element")))
	}
	sb.WriteString("\n")
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ExtractJSON returns the contents of the last fenced JSON block in md.
func ExtractJSON(md string) (string, error) {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	start := strings.LastIndex(md, jsonFence+"\n")
	if start < 0 {
		return "", ErrNoDesignData
	}
	body := md[start+len(jsonFence)+1:]
	end := strings.Index(body, "\n```")
	if end < 0 {
		return "", fmt.Errorf("unterminated design data block: %w", ErrNoDesignData)
	}
	return body[:end], nil
}

// FromMarkdown decodes the document embedded in a markdown companion.
func FromMarkdown(md string) (*design.Document, error) {
	data, err := ExtractJSON(md)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}
