package docconv

import (
	"encoding/xml"
	"strings"
)

// styleSheet is the subset of word/styles.xml needed to name paragraph styles.
type styleSheet struct {
	Styles []styleDef `xml:"style"`
}

type styleDef struct {
	Type    string   `xml:"type,attr"`
	StyleID string   `xml:"styleId,attr"`
	Name    *valAttr `xml:"name"`
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

func parseStyles(data []byte) (*styleSheet, error) {
	sheet := &styleSheet{}
	if err := xml.Unmarshal(data, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// displayName returns the name Word shows for a style id. Unknown ids are returned as is,
// which keeps ids such as "Heading2" usable when the styles part is missing.
func (s *styleSheet) displayName(styleID string) string {
	if styleID == "" {
		return ""
	}
	if s != nil {
		for _, st := range s.Styles {
			if st.StyleID == styleID && st.Name != nil && st.Name.Val != "" {
				return uiName(st.Name.Val)
			}
		}
	}
	return styleID
}

// uiName maps the lowercase names of built-in styles ("heading 1") to their UI form ("Heading 1").
func uiName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "heading "):
		return "Heading" + name[len("heading"):]
	case lower == "title":
		return "Title"
	case lower == "normal":
		return "Normal"
	}
	return name
}

// headingLevel returns N for a style named "Heading N" (or "HeadingN"), 0 otherwise.
func headingLevel(styleName string) int {
	rest, ok := strings.CutPrefix(styleName, "Heading")
	if !ok {
		return 0
	}
	rest = strings.TrimSpace(rest)
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return 0
	}
	return int(rest[0] - '0')
}
