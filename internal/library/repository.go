// Package library stores saved and AI-requested sketches in a SQLite file so
// they can be listed, reopened and served after the editor closes.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sketchstudio/internal/design"
	"sketchstudio/internal/export"
)

// ErrNotFound is returned when a sketch id is not in the library.
var ErrNotFound = errors.New("sketch not found")

// Repo provides CRUD operations against a library SQLite database.
type Repo struct {
	db       *sql.DB
	filePath string
}

// Open opens the library at filePath, creating and migrating it as needed.
func Open(filePath string) (*Repo, error) {
	db, err := OpenDB(filePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := MigrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return NewRepo(db, filePath), nil
}

// NewRepo wraps an open database connection.
func NewRepo(db *sql.DB, filePath string) *Repo {
	return &Repo{db: db, filePath: filePath}
}

// FilePath returns the path to the library file.
func (r *Repo) FilePath() string { return r.filePath }

// Close closes the underlying database connection.
func (r *Repo) Close() error { return r.db.Close() }

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// GetSetting returns a single setting value. Returns "" if not found.
func (r *Repo) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM library_settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting upserts a setting key-value pair.
func (r *Repo) SetSetting(key, value string) error {
	_, err := r.db.Exec(
		"INSERT INTO library_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// ---------------------------------------------------------------------------
// Sketches
// ---------------------------------------------------------------------------

// Record stores d under its document id together with its SVG and, when the
// design was written to disk, the paths of the file pair.
func (r *Repo) Record(d *design.Document, svg string, pair export.Pair, source Source) (*Sketch, error) {
	js, err := export.ToJSON(d)
	if err != nil {
		return nil, err
	}
	if svg == "" {
		svg = export.ToSVG(d)
	}
	s := Sketch{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Prompt:       d.Prompt,
		AIContext:    d.AIContext,
		CanvasWidth:  d.CanvasWidth,
		CanvasHeight: d.CanvasHeight,
		Source:       source,
		DesignJSON:   js,
		SVG:          svg,
		SVGPath:      pair.SVGPath,
		MarkdownPath: pair.MarkdownPath,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.ModifiedAt,
	}
	for _, e := range d.Elements {
		s.Elements = append(s.Elements, ElementSummary{
			ID:      e.ID,
			Kind:    string(e.Kind()),
			Name:    e.Name,
			Meaning: string(e.Meaning),
			Parent:  e.Parent,
		})
	}
	if err := r.SaveSketch(s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSketch upserts a sketch and replaces its element index.
func (r *Repo) SaveSketch(s Sketch) error {
	if s.ID == "" {
		return fmt.Errorf("save sketch: missing id")
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sketches (id, title, description, prompt, ai_context, canvas_width, canvas_height,
		   source, design_json, svg, svg_path, markdown_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, prompt=excluded.prompt,
		   ai_context=excluded.ai_context, canvas_width=excluded.canvas_width,
		   canvas_height=excluded.canvas_height, source=excluded.source,
		   design_json=excluded.design_json, svg=excluded.svg,
		   svg_path=COALESCE(excluded.svg_path, sketches.svg_path),
		   markdown_path=COALESCE(excluded.markdown_path, sketches.markdown_path),
		   updated_at=excluded.updated_at`,
		s.ID, s.Title, nullIfEmpty(s.Description), nullIfEmpty(s.Prompt), nullIfEmpty(s.AIContext),
		s.CanvasWidth, s.CanvasHeight, string(s.Source), s.DesignJSON, s.SVG,
		nullIfEmpty(s.SVGPath), nullIfEmpty(s.MarkdownPath),
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert sketch: %w", err)
	}

	// Replace element index.
	if _, err := tx.Exec("DELETE FROM sketch_elements WHERE sketch_id = ?", s.ID); err != nil {
		return err
	}
	for i, e := range s.Elements {
		_, err := tx.Exec(
			"INSERT INTO sketch_elements (sketch_id, element_id, kind, name, meaning, parent, sort_order) VALUES (?, ?, ?, ?, ?, ?, ?)",
			s.ID, e.ID, e.Kind, nullIfEmpty(e.Name), nullIfEmpty(e.Meaning), nullIfEmpty(e.Parent), i,
		)
		if err != nil {
			return fmt.Errorf("insert element: %w", err)
		}
	}
	return tx.Commit()
}

// GetSketch loads a full sketch including its element index.
func (r *Repo) GetSketch(id string) (*Sketch, error) {
	var (
		s                                   Sketch
		desc, prompt, aiCtx, svgPath, mdPth sql.NullString
		source, created, updated            string
	)
	err := r.db.QueryRow(
		`SELECT id, title, description, prompt, ai_context, canvas_width, canvas_height, source,
		        design_json, svg, svg_path, markdown_path, created_at, updated_at
		   FROM sketches WHERE id = ?`, id,
	).Scan(&s.ID, &s.Title, &desc, &prompt, &aiCtx, &s.CanvasWidth, &s.CanvasHeight, &source,
		&s.DesignJSON, &s.SVG, &svgPath, &mdPth, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	s.Description, s.Prompt, s.AIContext = desc.String, prompt.String, aiCtx.String
	s.SVGPath, s.MarkdownPath = svgPath.String, mdPth.String
	s.Source = Source(source)
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)

	if s.Elements, err = r.getElements(id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Document decodes the stored design of a sketch.
func (r *Repo) Document(id string) (*design.Document, error) {
	s, err := r.GetSketch(id)
	if err != nil {
		return nil, err
	}
	return export.FromJSON(s.DesignJSON)
}

// ListSketches returns summaries of all sketches, most recently updated first.
func (r *Repo) ListSketches() ([]SketchSummary, error) {
	rows, err := r.db.Query(
		`SELECT s.id, s.title, s.source, s.updated_at,
		        (SELECT COUNT(*) FROM sketch_elements e WHERE e.sketch_id = s.id)
		   FROM sketches s ORDER BY s.updated_at DESC, s.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sketches := []SketchSummary{}
	for rows.Next() {
		var (
			s               SketchSummary
			source, updated string
		)
		if err := rows.Scan(&s.ID, &s.Title, &source, &updated, &s.ElementCount); err != nil {
			return nil, err
		}
		s.Source = Source(source)
		s.UpdatedAt = parseTime(updated)
		sketches = append(sketches, s)
	}
	return sketches, rows.Err()
}

// Views returns the names of the View elements of a sketch in paint order.
func (r *Repo) Views(id string) ([]string, error) {
	rows, err := r.db.Query(
		"SELECT name FROM sketch_elements WHERE sketch_id = ? AND meaning = ? AND name IS NOT NULL ORDER BY sort_order",
		id, string(design.MeaningView),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteSketch removes a sketch and its element index (via CASCADE).
func (r *Repo) DeleteSketch(id string) error {
	res, err := r.db.Exec("DELETE FROM sketches WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *Repo) getElements(sketchID string) ([]ElementSummary, error) {
	rows, err := r.db.Query(
		"SELECT element_id, kind, name, meaning, parent FROM sketch_elements WHERE sketch_id = ? ORDER BY sort_order",
		sketchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ElementSummary
	for rows.Next() {
		var (
			e                     ElementSummary
			name, meaning, parent sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Kind, &name, &meaning, &parent); err != nil {
			return nil, err
		}
		e.Name, e.Meaning, e.Parent = name.String, meaning.String, parent.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
