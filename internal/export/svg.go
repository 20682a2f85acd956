package export

import (
	"fmt"
	"strconv"
	"strings"

	"sketchstudio/internal/design"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes s for use in text nodes and attribute values.
func EscapeXML(s string) string { return xmlEscaper.Replace(s) }

// ToSVG renders d as standalone SVG markup. Elements are painted in document
// order regardless of the current view context. It never fails: a document
// without elements yields only the background.
func ToSVG(d *design.Document) string {
	var b strings.Builder
	w, h := formatFloat(d.CanvasWidth), formatFloat(d.CanvasHeight)

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, w, h, w, h)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s"/>`, EscapeXML(d.BackgroundColor))
	b.WriteString("\n")

	for _, e := range d.Elements {
		if s := renderElement(e); s != "" {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// RotationTransform returns the transform attribute value for e, or "" when
// the element is not rotated.
func RotationTransform(e *design.Element) string {
	if e.Rotation == 0 {
		return ""
	}
	cx, cy := e.Center()
	return fmt.Sprintf("rotate(%s %s %s)", formatFloat(e.Rotation), formatFloat(cx), formatFloat(cy))
}

func renderElement(e *design.Element) string {
	a := &attrs{}
	switch s := e.Shape.(type) {
	case *design.Rectangle:
		a.num("x", e.X).num("y", e.Y).num("width", s.Width).num("height", s.Height)
		if s.CornerRadius > 0 {
			a.num("rx", s.CornerRadius).num("ry", s.CornerRadius)
		}
		a.str("fill", s.Fill).str("stroke", s.Stroke).num("stroke-width", s.StrokeWidth)
		a.opt("transform", RotationTransform(e))
		return "<rect" + a.String() + "/>"

	case *design.Circle:
		a.num("cx", e.X).num("cy", e.Y).num("r", s.Radius)
		a.str("fill", s.Fill).str("stroke", s.Stroke).num("stroke-width", s.StrokeWidth)
		a.opt("transform", RotationTransform(e))
		return "<circle" + a.String() + "/>"

	case *design.Line:
		a.num("x1", e.X).num("y1", e.Y).num("x2", s.X2).num("y2", s.Y2)
		a.str("stroke", s.Stroke).num("stroke-width", s.StrokeWidth)
		a.opt("stroke-dasharray", s.DashArray)
		a.opt("transform", RotationTransform(e))
		return "<line" + a.String() + "/>"

	case *design.Text:
		size, weight := s.EffectiveFont()
		a.num("x", e.X).num("y", e.Y).num("font-size", size)
		a.str("font-family", s.FontFamily).str("fill", s.Fill)
		a.opt("font-weight", weight)
		if s.IsLink() {
			a.str("text-decoration", "underline")
		}
		a.opt("transform", RotationTransform(e))
		text := "<text" + a.String() + ">" + EscapeXML(s.Content) + "</text>"
		if s.IsLink() && s.LinkURL != "" {
			return `<a href="` + EscapeXML(s.LinkURL) + `">` + text + "</a>"
		}
		return text

	case *design.Image:
		a.str("href", s.Source)
		a.num("x", e.X).num("y", e.Y).num("width", s.Width).num("height", s.Height)
		if !s.PreserveAspectRatio {
			a.str("preserveAspectRatio", "none")
		}
		a.opt("transform", RotationTransform(e))
		return "<image" + a.String() + "/>"
	}
	return ""
}

// attrs accumulates escaped attributes in insertion order.
type attrs struct {
	b strings.Builder
}

func (a *attrs) str(name, value string) *attrs {
	fmt.Fprintf(&a.b, ` %s="%s"`, name, EscapeXML(value))
	return a
}

func (a *attrs) num(name string, value float64) *attrs {
	fmt.Fprintf(&a.b, ` %s="%s"`, name, formatFloat(value))
	return a
}

// opt writes the attribute only when value is non-empty.
func (a *attrs) opt(name, value string) *attrs {
	if value != "" {
		a.str(name, value)
	}
	return a
}

func (a *attrs) String() string { return a.b.String() }

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
