package design

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestContainsPoint(t *testing.T) {
	rect := &Element{X: 10, Y: 10, Shape: &Rectangle{Width: 100, Height: 50}}
	line := &Element{X: 0, Y: 0, Shape: &Line{X2: 100, Y2: 0, StrokeWidth: 2}}
	thick := &Element{X: 0, Y: 0, Shape: &Line{X2: 100, Y2: 0, StrokeWidth: 8}}
	circle := &Element{X: 50, Y: 50, Shape: &Circle{Radius: 10}}
	img := &Element{X: 0, Y: 0, Shape: &Image{Width: 20, Height: 20}}
	text := &Element{X: 10, Y: 100, Shape: &Text{Content: "Hello", FontSize: 10, TextType: TextParagraph}}

	tests := []struct {
		name string
		e    *Element
		x, y float64
		want bool
	}{
		{"rect inside", rect, 50, 30, true},
		{"rect outside", rect, 200, 30, false},
		{"rect corner inclusive", rect, 10, 10, true},
		{"rect far corner inclusive", rect, 110, 60, true},
		{"line on segment", line, 50, 0, true},
		{"line too far", line, 50, 20, false},
		{"line within tolerance", line, 50, 9, true},
		{"line just outside tolerance", line, 50, 11, false},
		{"line beyond end clamps to segment", line, 109, 0, true},
		{"line beyond end outside", line, 111, 0, false},
		{"thick line widens tolerance", thick, 50, 15, true},
		{"circle center", circle, 50, 50, true},
		{"circle edge", circle, 60, 50, true},
		{"circle outside", circle, 58, 58, false},
		{"image inside", img, 5, 5, true},
		{"image outside", img, 25, 5, false},
		// "Hello": 5 chars * 10 * 0.6 = 30 wide, 12 tall above baseline.
		{"text above baseline", text, 20, 95, true},
		{"text below baseline", text, 20, 101, false},
		{"text past width", text, 41, 95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.ContainsPoint(tt.x, tt.y); got != tt.want {
				t.Errorf("ContainsPoint(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestTextUsesNameAndHeadingPreset(t *testing.T) {
	e := &Element{X: 0, Y: 100, Name: "Hi", Shape: &Text{Content: "a much longer content", FontSize: 10, TextType: TextH1}}
	// H1 forces 32px: "Hi" -> 2 * 32 * 0.6 = 38.4 wide.
	if !e.ContainsPoint(38, 90) {
		t.Error("expected point inside heading box")
	}
	if e.ContainsPoint(40, 90) {
		t.Error("expected name, not content, to size the box")
	}
	size := 32.0
	cx, cy := e.Center()
	if cx != 2*size*0.3 || cy != 100-size*0.6 {
		t.Errorf("Center() = (%v, %v)", cx, cy)
	}
}

func TestEffectiveFont(t *testing.T) {
	tests := []struct {
		typ        TextType
		wantSize   float64
		wantWeight string
	}{
		{TextH1, 32, "bold"},
		{TextH5, 18, "600"},
		{TextParagraph, 14, "normal"},
		{TextLink, 14, "normal"},
	}
	for _, tt := range tests {
		txt := &Text{FontSize: 14, FontWeight: "normal", TextType: tt.typ}
		size, weight := txt.EffectiveFont()
		if size != tt.wantSize || weight != tt.wantWeight {
			t.Errorf("%s: got %v/%s, want %v/%s", tt.typ, size, weight, tt.wantSize, tt.wantWeight)
		}
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name   string
		e      *Element
		cx, cy float64
	}{
		{"rectangle", &Element{X: 10, Y: 20, Shape: &Rectangle{Width: 100, Height: 50}}, 60, 45},
		{"image", &Element{X: 0, Y: 0, Shape: &Image{Width: 8, Height: 4}}, 4, 2},
		{"circle", &Element{X: 7, Y: 9, Shape: &Circle{Radius: 3}}, 7, 9},
		{"line", &Element{X: 0, Y: 0, Shape: &Line{X2: 10, Y2: 20}}, 5, 10},
	}
	for _, tt := range tests {
		cx, cy := tt.e.Center()
		if cx != tt.cx || cy != tt.cy {
			t.Errorf("%s: Center() = (%v, %v), want (%v, %v)", tt.name, cx, cy, tt.cx, tt.cy)
		}
	}
}

func TestElementJSON_Discriminator(t *testing.T) {
	e := NewLine(1, 2, 3, 4)
	e.Parent = "Home"
	e.Shape.(*Line).DashArray = "4 2"
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "line" || m["x2"] != 3.0 || m["parent"] != "Home" {
		t.Errorf("unexpected JSON: %s", b)
	}
	if _, ok := m["isSelected"]; ok {
		t.Errorf("selection leaked into JSON: %s", b)
	}

	var back Element
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&back, e) {
		t.Errorf("round-trip: got %+v, want %+v", back, *e)
	}
}

func TestElementJSON_SelectedNotPersisted(t *testing.T) {
	e := NewRectangle(0, 0, 10, 10)
	e.Selected = true
	b, _ := json.Marshal(e)
	var back Element
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Selected {
		t.Error("Selected should not survive serialization")
	}
}

func TestElementJSON_UnknownKind(t *testing.T) {
	var e Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"hexagon","x":0,"y":0}`), &e)
	var uk *UnknownKindError
	if !errors.As(err, &uk) || uk.Kind != "hexagon" {
		t.Fatalf("expected UnknownKindError, got %v", err)
	}
}

func TestElementJSON_OmitsOptional(t *testing.T) {
	e := NewRectangle(0, 0, 10, 10)
	e.Meaning = ""
	b, _ := json.Marshal(e)
	var m map[string]any
	json.Unmarshal(b, &m)
	for _, key := range []string{"cornerRadius", "parent", "name", "description", "meaning"} {
		if _, ok := m[key]; ok {
			t.Errorf("expected %q to be omitted: %s", key, b)
		}
	}
}

func TestMeaning(t *testing.T) {
	if !MeaningView.IsView() || MeaningPanel.IsView() {
		t.Error("IsView")
	}
	if Meaning("bogus").Valid() {
		t.Error("bogus meaning should be invalid")
	}
	if !Meaning("").Valid() {
		t.Error("empty meaning should be valid")
	}
	if got := MeaningNavBar.Label(); got != "Nav Bar" {
		t.Errorf("Label() = %q", got)
	}
	if got := MeaningFooter.Label(); got != "Footer" {
		t.Errorf("Label() = %q", got)
	}
	if len(Meanings()) != 9 {
		t.Errorf("Meanings() = %v", Meanings())
	}
}

func TestCloneAndTranslate(t *testing.T) {
	e := NewLine(0, 0, 10, 10)
	c := e.Clone()
	c.Translate(5, 5)
	if e.X != 0 || e.Shape.(*Line).X2 != 10 {
		t.Error("Clone shares shape with original")
	}
	if c.X != 5 || c.Shape.(*Line).X2 != 15 || c.Shape.(*Line).Y2 != 15 {
		t.Errorf("Translate: %+v %+v", c, c.Shape)
	}
}
