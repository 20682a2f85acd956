package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sketchstudio/internal/design"
)

// ErrEmptyDocument is returned when decoding blank input.
var ErrEmptyDocument = errors.New("empty design document")

// ToJSON returns the persisted form of d. Transient selection state is not written.
func ToJSON(d *design.Document) (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	return string(b), nil
}

// FromJSON parses a document written by ToJSON.
func FromJSON(s string) (*design.Document, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyDocument
	}
	var d design.Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, fmt.Errorf("parse design: %w", err)
	}
	if d.Elements == nil {
		d.Elements = []*design.Element{}
	}
	for i, e := range d.Elements {
		if e == nil {
			return nil, fmt.Errorf("parse design: element %d is null", i)
		}
	}
	return &d, nil
}
