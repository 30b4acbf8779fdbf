package questionnaire

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadPrefill reads prefilled answers from a JSON or YAML file.
//
// The file holds either a mapping of question_id to answer, or a list of answers applied
// to the questions in catalog order. Unknown ids and non-string values are dropped.
func LoadPrefill(path string, questions []models.Question) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefill file: %w", err)
	}
	return ParsePrefill(data, questions)
}

// ParsePrefill decodes prefill content; see LoadPrefill.
func ParsePrefill(data []byte, questions []models.Question) (map[string]string, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prefill answers: %w", err)
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	prefill := make(map[string]string, len(questions))
	switch v := raw.(type) {
	case map[string]interface{}:
		for id, answer := range v {
			s, ok := answer.(string)
			if !ok || !known[id] {
				slog.Debug("ParsePrefill: dropping prefill entry", "question_id", id, "known", known[id])
				continue
			}
			prefill[id] = s
		}
	case []interface{}:
		for i, answer := range v {
			if i >= len(questions) {
				slog.Debug("ParsePrefill: more answers than questions", "answers", len(v), "questions", len(questions))
				break
			}
			if s, ok := answer.(string); ok {
				prefill[questions[i].ID] = s
			}
		}
	case nil:
		// empty document: every question is skipped
	default:
		slog.Debug("ParsePrefill: unsupported prefill document, treating all questions as skipped", "type", fmt.Sprintf("%T", raw))
	}
	return prefill, nil
}
