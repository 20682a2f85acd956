package importers

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"sketchstudio/internal/design"
)

var rotateRe = regexp.MustCompile(`rotate\(\s*(-?[\d.]+)`)

// ParseSVG builds a document from the primitives Sketch Studio emits: rect,
// circle, line, text (optionally wrapped in a link) and image. Other nodes
// are skipped. A full-size rect is taken as the background.
func ParseSVG(content string) (*design.Document, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	d := design.NewDocument(design.Canvas{})

	var (
		seenRoot bool
		linkURL  string
		text     *design.Element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			a := attrMap(t.Attr)
			switch t.Name.Local {
			case "svg":
				seenRoot = true
				if w := a.num("width"); w > 0 {
					d.CanvasWidth = w
				}
				if h := a.num("height"); h > 0 {
					d.CanvasHeight = h
				}
			case "title":
				var s string
				if err := dec.DecodeElement(&s, &t); err == nil && strings.TrimSpace(s) != "" {
					d.Title = strings.TrimSpace(s)
				}
			case "a":
				linkURL = a.str("href", "")
			case "rect":
				if a["width"] == "100%" && a["height"] == "100%" {
					d.BackgroundColor = a.str("fill", d.BackgroundColor)
					continue
				}
				e := design.NewRectangle(a.num("x"), a.num("y"), a.num("width"), a.num("height"))
				r := e.Shape.(*design.Rectangle)
				r.Fill = a.str("fill", r.Fill)
				r.Stroke = a.str("stroke", r.Stroke)
				r.StrokeWidth = a.numOr("stroke-width", r.StrokeWidth)
				r.CornerRadius = a.num("rx")
				d.Elements = append(d.Elements, withCommon(e, a))
			case "circle":
				e := design.NewCircle(a.num("cx"), a.num("cy"), a.num("r"))
				c := e.Shape.(*design.Circle)
				c.Fill = a.str("fill", c.Fill)
				c.Stroke = a.str("stroke", c.Stroke)
				c.StrokeWidth = a.numOr("stroke-width", c.StrokeWidth)
				d.Elements = append(d.Elements, withCommon(e, a))
			case "line":
				e := design.NewLine(a.num("x1"), a.num("y1"), a.num("x2"), a.num("y2"))
				l := e.Shape.(*design.Line)
				l.Stroke = a.str("stroke", l.Stroke)
				l.StrokeWidth = a.numOr("stroke-width", l.StrokeWidth)
				l.DashArray = a["stroke-dasharray"]
				d.Elements = append(d.Elements, withCommon(e, a))
			case "text":
				text = design.NewText(a.num("x"), a.num("y"), "")
				tx := text.Shape.(*design.Text)
				tx.FontSize = a.numOr("font-size", tx.FontSize)
				tx.FontFamily = a.str("font-family", tx.FontFamily)
				tx.Fill = a.str("fill", tx.Fill)
				tx.FontWeight = a.str("font-weight", tx.FontWeight)
				if linkURL != "" || a["text-decoration"] == "underline" {
					tx.TextType = design.TextLink
					tx.LinkURL = linkURL
				}
				withCommon(text, a)
			case "image":
				e := design.NewImage(a.num("x"), a.num("y"), a.num("width"), a.num("height"), a.str("href", ""))
				if a["preserveAspectRatio"] == "none" {
					e.Shape.(*design.Image).PreserveAspectRatio = false
				}
				d.Elements = append(d.Elements, withCommon(e, a))
			}
		case xml.CharData:
			if text != nil {
				tx := text.Shape.(*design.Text)
				tx.Content += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "text":
				if text != nil {
					d.Elements = append(d.Elements, text)
					text = nil
				}
			case "a":
				linkURL = ""
			}
		}
	}
	if !seenRoot {
		return nil, fmt.Errorf("parse svg: no <svg> root element")
	}
	return d, nil
}

func withCommon(e *design.Element, a attrs) *design.Element {
	if m := rotateRe.FindStringSubmatch(a["transform"]); m != nil {
		e.Rotation, _ = strconv.ParseFloat(m[1], 64)
	}
	if id := a["id"]; id != "" {
		e.Name = id
	}
	return e
}

type attrs map[string]string

// attrMap keys attributes by local name so xlink:href and href collapse.
func attrMap(list []xml.Attr) attrs {
	m := make(attrs, len(list))
	for _, at := range list {
		m[at.Name.Local] = at.Value
	}
	return m
}

func (a attrs) str(name, def string) string {
	if v, ok := a[name]; ok && v != "" {
		return v
	}
	return def
}

func (a attrs) num(name string) float64 {
	return a.numOr(name, 0)
}

func (a attrs) numOr(name string, def float64) float64 {
	v, ok := a[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return def
	}
	return f
}
