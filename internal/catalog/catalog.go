// Package catalog holds the booth's question bank and style modes.
//
// A catalog is loaded once per process, validated at startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the ordered question list plus the ordered style modes.
type Catalog struct {
	Questions    []models.Question `yaml:"questions"`
	Styles       []models.Style    `yaml:"styles"`
	DefaultStyle string            `yaml:"default_style"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Questions:    append([]models.Question(nil), defaultQuestions...),
		Styles:       append([]models.Style(nil), defaultStyles...),
		DefaultStyle: DefaultStyleKey,
	}
}

// Load reads a catalog from a YAML (or JSON) file and validates it.
func Load(path string) (*Catalog, error) {
	slog.Debug("catalog.Load: reading catalog file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	slog.Info("catalog.Load: catalog loaded", "path", path, "questions", len(c.Questions), "styles", len(c.Styles), "default_style", c.DefaultStyle)
	return &c, nil
}

// Validate checks the catalog invariants: at least one question, unique non-empty
// question ids and style keys, and a default style that exists. Style keys are
// compared without regard to case.
func (c *Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return models.ErrNoQuestions
	}
	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: %w", i+1, models.ErrEmptyQuestionID)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: %s", models.ErrDuplicateQuestionID, q.ID)
		}
		seen[q.ID] = true
	}

	keys := make(map[string]bool, len(c.Styles))
	for i, s := range c.Styles {
		if s.Key == "" {
			return fmt.Errorf("style %d: %w", i+1, models.ErrEmptyStyleKey)
		}
		key := strings.ToLower(s.Key)
		if keys[key] {
			return fmt.Errorf("%w: %s", models.ErrDuplicateStyleKey, s.Key)
		}
		keys[key] = true
	}
	if !keys[strings.ToLower(c.DefaultStyle)] {
		return fmt.Errorf("%w: %q", models.ErrUnknownDefaultStyle, c.DefaultStyle)
	}
	return nil
}

// Style looks up a style by key, ignoring case. The returned style carries the catalog's key.
func (c *Catalog) Style(key string) (models.Style, bool) {
	for _, s := range c.Styles {
		if strings.EqualFold(s.Key, key) {
			return s, true
		}
	}
	return models.Style{}, false
}

// Resolve returns the style for key, falling back to the default style for unknown keys.
func (c *Catalog) Resolve(key string) models.Style {
	if s, ok := c.Style(key); ok {
		return s
	}
	s, _ := c.Style(c.DefaultStyle)
	return s
}

// Keys returns the style keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Styles))
	for i, s := range c.Styles {
		keys[i] = s.Key
	}
	return keys
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (models.Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}
