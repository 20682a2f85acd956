package design

// Meaning is a semantic hint attached to an element. It is read by downstream
// consumers (an AI assistant, exporters) and never affects rendering.
type Meaning string

const (
	MeaningNone             Meaning = "none"
	MeaningControl          Meaning = "control"
	MeaningNavBar           Meaning = "navBar"
	MeaningToolbar          Meaning = "toolbar"
	MeaningBody             Meaning = "body"
	MeaningPanel            Meaning = "panel"
	MeaningFooter           Meaning = "footer"
	MeaningView             Meaning = "view"
	MeaningImagePlaceholder Meaning = "imagePlaceholder"
)

var meanings = []Meaning{
	MeaningNone,
	MeaningControl,
	MeaningNavBar,
	MeaningToolbar,
	MeaningBody,
	MeaningPanel,
	MeaningFooter,
	MeaningView,
	MeaningImagePlaceholder,
}

// Meanings returns every known meaning in declaration order.
func Meanings() []Meaning {
	out := make([]Meaning, len(meanings))
	copy(out, meanings)
	return out
}

// Valid reports whether m is a known meaning. The empty value counts as none.
func (m Meaning) Valid() bool {
	if m == "" {
		return true
	}
	for _, k := range meanings {
		if k == m {
			return true
		}
	}
	return false
}

// IsView reports whether the element can contain other elements.
func (m Meaning) IsView() bool { return m == MeaningView }

// Label returns a human readable name, used in markdown summaries.
func (m Meaning) Label() string {
	switch m {
	case "", MeaningNone:
		return "None"
	case MeaningNavBar:
		return "Nav Bar"
	case MeaningImagePlaceholder:
		return "Image Placeholder"
	default:
		s := string(m)
		return string(s[0]-'a'+'A') + s[1:]
	}
}
