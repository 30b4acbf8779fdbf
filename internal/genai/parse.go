package genai

import (
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/tidwall/gjson"
)

// Generation is the outcome of parsing a provider response.
//
// Parsed reports whether a nicknames array was found. Candidates may still be empty when
// the array held nothing usable; callers treat that the same as an unparsed response.
type Generation struct {
	Raw        string
	Candidates []models.Candidate
	Parsed     bool
}

// OK reports whether the response produced at least one candidate.
func (g Generation) OK() bool {
	return g.Parsed && len(g.Candidates) > 0
}

// ParseGeneration extracts nickname candidates from raw provider text.
//
// The nicknames field may hold strings or {name, explanation} objects. Markdown code fences
// and prose around the JSON object are tolerated. Unusable elements are dropped.
func ParseGeneration(raw string) Generation {
	gen := Generation{Raw: raw}

	doc, ok := extractJSONObject(raw)
	if !ok {
		return gen
	}
	nicknames := gjson.Get(doc, "nicknames")
	if !nicknames.IsArray() {
		return gen
	}

	gen.Parsed = true
	nicknames.ForEach(func(_, value gjson.Result) bool {
		var c models.Candidate
		switch {
		case value.Type == gjson.String:
			c.Name = value.String()
		case value.IsObject():
			c.Name = value.Get("name").String()
			c.Explanation = strings.TrimSpace(value.Get("explanation").String())
		default:
			return true
		}
		c.Name = strings.TrimSpace(c.Name)
		if c.Name != "" {
			gen.Candidates = append(gen.Candidates, c)
		}
		return true
	})
	return gen
}

// extractJSONObject finds the outermost JSON object in text.
func extractJSONObject(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if gjson.Valid(text) {
		return text, true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", false
	}
	return candidate, true
}
