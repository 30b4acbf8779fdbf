// Package prompt turns a questionnaire transcript into the request payload sent to the
// generation provider.
package prompt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/catalog"
	"github.com/BTreeMap/PlayaBooth/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

//go:embed system_prompt.md
var defaultSystemPrompt string

// DefaultSystemPrompt returns the built-in system instructions.
func DefaultSystemPrompt() string {
	return strings.TrimSpace(defaultSystemPrompt)
}

// LoadSystemPrompt reads system instructions from a file, rejecting empty files.
func LoadSystemPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt file: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("system prompt file %s is empty", path)
	}
	slog.Debug("prompt.LoadSystemPrompt: loaded system prompt", "path", path, "length", len(content))
	return content, nil
}

// Opts configures a Builder.
type Opts struct {
	SystemPrompt string
}

// Option modifies Opts.
type Option func(*Opts)

// WithSystemPrompt overrides the embedded system instructions.
func WithSystemPrompt(content string) Option {
	return func(o *Opts) {
		o.SystemPrompt = content
	}
}

// userPayload is the structured user message. Field order is part of the output.
type userPayload struct {
	Style      string                                 `json:"style"`
	Answers    *orderedmap.OrderedMap[string, string] `json:"answers"`
	AvoidNames []string                               `json:"avoid_names,omitempty"`
}

// Builder builds generation requests. It holds no mutable state.
type Builder struct {
	catalog      *catalog.Catalog
	systemPrompt string
}

// NewBuilder creates a builder that resolves styles against cat.
func NewBuilder(cat *catalog.Catalog, opts ...Option) *Builder {
	cfg := Opts{SystemPrompt: DefaultSystemPrompt()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{catalog: cat, systemPrompt: cfg.SystemPrompt}
}

// SystemPrompt returns the instructions placed in the system message.
func (b *Builder) SystemPrompt() string {
	return b.systemPrompt
}

// Build returns the system and user messages for one generation request.
//
// Unknown style keys resolve to the catalog default. Skipped answers are left out of the
// user content, and avoid is included only when non-empty. Output is byte-identical for
// identical inputs.
func (b *Builder) Build(transcript models.Transcript, styleKey string, avoid []string) ([]models.Message, error) {
	style := b.catalog.Resolve(styleKey)

	answers := orderedmap.New[string, string]()
	for _, entry := range transcript.Answered() {
		answers.Set(entry.Question, strings.TrimSpace(entry.Answer))
	}

	payload := userPayload{
		Style:   style.PromptModifier,
		Answers: answers,
	}
	for _, name := range avoid {
		if name = strings.TrimSpace(name); name != "" {
			payload.AvoidNames = append(payload.AvoidNames, name)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode user content: %w", err)
	}

	return []models.Message{
		{Role: models.RoleSystem, Content: b.systemPrompt},
		{Role: models.RoleUser, Content: strings.TrimRight(buf.String(), "\n")},
	}, nil
}
