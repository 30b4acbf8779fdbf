package questionnaire

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// scriptedPrompter replays canned answers and records what was shown.
type scriptedPrompter struct {
	answers []string
	shown   []string
	asked   int
}

func (p *scriptedPrompter) QuestionnaireIntro(total int) {}

func (p *scriptedPrompter) Question(index, total int, q models.Question) {
	p.shown = append(p.shown, q.Text)
}

func (p *scriptedPrompter) Ask(ctx context.Context, prompt string) (string, error) {
	if p.asked >= len(p.answers) {
		return "", io.EOF
	}
	a := p.answers[p.asked]
	p.asked++
	return a, nil
}

var testQuestions = []models.Question{
	{ID: "vibe", Text: "What's your vibe?", Hint: "e.g., chill"},
	{ID: "quest", Text: "Side quest?"},
	{ID: "weather", Text: "Weather event?"},
}

func TestCollectInteractive(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"neon fog", "", "  dust storm  "}}
	transcript, err := NewCollector(p).Collect(context.Background(), testQuestions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transcript) != len(testQuestions) {
		t.Fatalf("expected %d entries, got %d", len(testQuestions), len(transcript))
	}
	for i, q := range testQuestions {
		if transcript[i].QuestionID != q.ID || transcript[i].Question != q.Text {
			t.Errorf("entry %d out of catalog order: %+v", i, transcript[i])
		}
	}
	if transcript[0].Answer != "neon fog" {
		t.Errorf("expected first answer 'neon fog', got %q", transcript[0].Answer)
	}
	if transcript[1].Answer != "" {
		t.Errorf("expected skipped answer, got %q", transcript[1].Answer)
	}
	if transcript[2].Answer != "  dust storm  " {
		t.Errorf("expected answer stored as typed, got %q", transcript[2].Answer)
	}
	if len(p.shown) != 3 {
		t.Errorf("expected every question to be shown, got %v", p.shown)
	}
}

func TestCollectInteractiveKeepsPartialAnswers(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"first"}}
	transcript, err := NewCollector(p).Collect(context.Background(), testQuestions, nil)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	if len(transcript) != 1 || transcript[0].Answer != "first" {
		t.Errorf("expected partial transcript with one answer, got %+v", transcript)
	}
}

func TestCollectPrefillIsNonInteractive(t *testing.T) {
	prefill := map[string]string{"vibe": "  neon fog  ", "weather": "   ", "unknown": "ignored"}
	transcript, err := NewCollector(nil).Collect(context.Background(), testQuestions, prefill)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transcript) != len(testQuestions) {
		t.Fatalf("expected %d entries, got %d", len(testQuestions), len(transcript))
	}
	for i, q := range testQuestions {
		if transcript[i].QuestionID != q.ID {
			t.Errorf("entry %d has id %q, want %q", i, transcript[i].QuestionID, q.ID)
		}
		if transcript[i].Answer != prefill[q.ID] {
			t.Errorf("entry %d answer %q, want %q", i, transcript[i].Answer, prefill[q.ID])
		}
	}
}

func TestCollectWhitespaceAnswersCountAsSkipped(t *testing.T) {
	prefill := map[string]string{"vibe": "  neon fog  ", "weather": "   "}
	transcript := FromPrefill(testQuestions, prefill)
	answered := transcript.Answered()
	if len(answered) != 1 || answered[0].QuestionID != "vibe" {
		t.Fatalf("expected only vibe answered, got %+v", answered)
	}
	if answered[0].Answer != "  neon fog  " {
		t.Errorf("answered entry should keep the prefill value, got %q", answered[0].Answer)
	}
}

func TestCollectEmptyPrefillSkipsEverything(t *testing.T) {
	transcript, err := NewCollector(nil).Collect(context.Background(), testQuestions, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transcript) != 3 || len(transcript.Answered()) != 0 {
		t.Errorf("expected three skipped entries, got %+v", transcript)
	}
}

func TestParsePrefillMapping(t *testing.T) {
	data := []byte(`{"vibe": "late night", "quest": 42, "nope": "x"}`)
	prefill, err := ParsePrefill(data, testQuestions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefill) != 1 || prefill["vibe"] != "late night" {
		t.Errorf("unexpected prefill: %v", prefill)
	}
}

func TestParsePrefillList(t *testing.T) {
	data := []byte("- neon\n- \n- hail\n- extra\n")
	prefill, err := ParsePrefill(data, testQuestions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefill["vibe"] != "neon" || prefill["weather"] != "hail" {
		t.Errorf("unexpected prefill: %v", prefill)
	}
	if _, ok := prefill["quest"]; ok {
		t.Errorf("null list entry should be dropped, got %q", prefill["quest"])
	}
}

func TestLoadPrefillMissingFile(t *testing.T) {
	_, err := LoadPrefill(filepath.Join(t.TempDir(), "missing.json"), testQuestions)
	if err == nil {
		t.Error("expected error for missing prefill file")
	}
}

func TestLoadPrefillYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte("vibe: glitter\nweather: monsoon\n"), 0o644); err != nil {
		t.Fatalf("write prefill: %v", err)
	}
	prefill, err := LoadPrefill(path, testQuestions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transcript := FromPrefill(testQuestions, prefill)
	if transcript[0].Answer != "glitter" || transcript[1].Answer != "" || transcript[2].Answer != "monsoon" {
		t.Errorf("unexpected transcript: %+v", transcript)
	}
}
