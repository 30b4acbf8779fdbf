// Package questionnaire collects the participant's answers to the catalog questions.
package questionnaire

import (
	"context"
	"log/slog"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// AnswerPrompt is the input prompt shown under each question.
const AnswerPrompt = "> "

// Prompter renders questions and reads one line of input per question.
type Prompter interface {
	QuestionnaireIntro(total int)
	Question(index, total int, q models.Question)
	Ask(ctx context.Context, prompt string) (string, error)
}

// Collector produces a transcript from the question catalog.
type Collector struct {
	prompter Prompter
}

// NewCollector creates a collector that reads answers through prompter.
// The prompter is only used in interactive mode and may be nil for prefilled runs.
func NewCollector(prompter Prompter) *Collector {
	return &Collector{prompter: prompter}
}

// Collect asks every question in order and returns one entry per question.
//
// With a non-nil prefill the run is non-interactive and never blocks. Otherwise each
// question waits for a line of input; an empty line skips the question. When reading
// fails the transcript collected so far is returned together with the error.
func (c *Collector) Collect(ctx context.Context, questions []models.Question, prefill map[string]string) (models.Transcript, error) {
	if prefill != nil {
		slog.Debug("Collector.Collect: using prefilled answers", "questions", len(questions), "prefilled", len(prefill))
		return FromPrefill(questions, prefill), nil
	}

	transcript := make(models.Transcript, 0, len(questions))
	c.prompter.QuestionnaireIntro(len(questions))
	for i, q := range questions {
		c.prompter.Question(i+1, len(questions), q)
		answer, err := c.prompter.Ask(ctx, AnswerPrompt)
		if err != nil {
			slog.Debug("Collector.Collect: input ended before questionnaire completed", "answered", len(transcript), "error", err)
			return transcript, err
		}
		transcript = append(transcript, models.QAEntry{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     answer,
		})
	}
	slog.Debug("Collector.Collect: questionnaire completed", "questions", len(transcript), "answered", len(transcript.Answered()))
	return transcript, nil
}

// FromPrefill builds a transcript without any I/O; questions absent from prefill are skipped.
// Answers are stored exactly as given.
func FromPrefill(questions []models.Question, prefill map[string]string) models.Transcript {
	transcript := make(models.Transcript, 0, len(questions))
	for _, q := range questions {
		transcript = append(transcript, models.QAEntry{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     prefill[q.ID],
		})
	}
	return transcript
}
