package design

// TextType selects a typographic preset for a text element.
type TextType string

const (
	TextParagraph TextType = "paragraph"
	TextH1        TextType = "h1"
	TextH2        TextType = "h2"
	TextH3        TextType = "h3"
	TextH4        TextType = "h4"
	TextH5        TextType = "h5"
	TextLink      TextType = "link"
)

type fontPreset struct {
	size   float64
	weight string
}

var headingPresets = map[TextType]fontPreset{
	TextH1: {32, "bold"},
	TextH2: {28, "bold"},
	TextH3: {24, "bold"},
	TextH4: {20, "600"},
	TextH5: {18, "600"},
}

// EffectiveFont returns the font size and weight used to render and hit-test
// t. Headings override the stored values; paragraphs and links use them as is.
func (t *Text) EffectiveFont() (size float64, weight string) {
	if p, ok := headingPresets[t.TextType]; ok {
		return p.size, p.weight
	}
	return t.FontSize, t.FontWeight
}

// IsLink reports whether the text renders as a hyperlink.
func (t *Text) IsLink() bool { return t.TextType == TextLink }
