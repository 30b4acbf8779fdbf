// Package feedback collects the optional post-generation feedback form.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// Form prompts
const (
	OptInPrompt      = "Give quick feedback? [Y/n]: "
	FavoritePrompt   = "Enter number [0]: "
	SelectionPrompt  = "Enter numbers (e.g. 1,3): "
	FreeTextPrompt   = "> "
	NoFavoriteLabel  = "No favorite"
	skipHint         = "Enter to skip"
	selectionHint    = "Comma-separated numbers, or Enter to skip"
	favoriteQuestion = "Which name is your favorite?"
	helpfulLabel     = "Which questions were most helpful?"
	unhelpfulLabel   = "Which questions were least helpful?"
	suggestLabel     = "What would make this questionnaire more helpful? Feel free to add your own questions."
	selfNameLabel    = "What do you think is a good playa name for you?"
)

// Prompter renders the form and reads one line per prompt.
type Prompter interface {
	FeedbackHeader()
	Heading(text, hint string)
	// Choices lists items numbered from 1; zeroLabel, when set, is listed as [0].
	Choices(items []string, zeroLabel string)
	Error(msg string)
	Thanks()
	Ask(ctx context.Context, prompt string) (string, error)
}

// Form runs the feedback questions.
type Form struct {
	prompter Prompter
}

// NewForm creates a form that talks through prompter.
func NewForm(prompter Prompter) *Form {
	return &Form{prompter: prompter}
}

// Collect offers the form and returns the participant's feedback, or nil when they opt out.
//
// Only "n" or "no" at the opt-in prompt opts out. The favorite prompt loops until it gets
// a valid number or an empty line. The helpful and unhelpful multi-selects list only the
// answered questions and are skipped when nothing was answered. Input errors are returned.
func (f *Form) Collect(ctx context.Context, candidates []models.Candidate, answered models.Transcript) (*models.Feedback, error) {
	p := f.prompter
	p.FeedbackHeader()

	optIn, err := p.Ask(ctx, OptInPrompt)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(optIn)) {
	case "n", "no":
		slog.Debug("Form.Collect: participant skipped feedback")
		return nil, nil
	}

	fb := &models.Feedback{}

	if fb.FavoriteName, err = f.askFavorite(ctx, models.CandidateNames(candidates)); err != nil {
		return nil, err
	}
	if fb.HelpfulQuestions, err = f.askQuestions(ctx, answered, helpfulLabel); err != nil {
		return nil, err
	}
	if fb.UnhelpfulQuestions, err = f.askQuestions(ctx, answered, unhelpfulLabel); err != nil {
		return nil, err
	}

	p.Heading(suggestLabel, skipHint)
	suggested, err := p.Ask(ctx, FreeTextPrompt)
	if err != nil {
		return nil, err
	}
	fb.SuggestedQuestions = strings.TrimSpace(suggested)

	p.Heading(selfNameLabel, skipHint)
	selfName, err := p.Ask(ctx, FreeTextPrompt)
	if err != nil {
		return nil, err
	}
	fb.SelfSuggestedName = strings.TrimSpace(selfName)

	p.Thanks()
	slog.Debug("Form.Collect: feedback collected",
		"favorite_set", fb.FavoriteName != nil,
		"helpful", len(fb.HelpfulQuestions),
		"unhelpful", len(fb.UnhelpfulQuestions))
	return fb, nil
}

// askFavorite is a single-select over names; empty or 0 means no favorite.
func (f *Form) askFavorite(ctx context.Context, names []string) (*string, error) {
	p := f.prompter
	p.Heading(favoriteQuestion, skipHint)
	p.Choices(names, NoFavoriteLabel)

	for {
		raw, err := p.Ask(ctx, FavoritePrompt)
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		if choice, err := strconv.Atoi(raw); err == nil {
			if choice == 0 {
				return nil, nil
			}
			if choice >= 1 && choice <= len(names) {
				return &names[choice-1], nil
			}
		}
		p.Error(fmt.Sprintf("Enter a number 0-%d", len(names)))
	}
}

// askQuestions is a multi-select over answered questions returning their ids.
func (f *Form) askQuestions(ctx context.Context, answered models.Transcript, label string) ([]string, error) {
	ids := []string{}
	if len(answered) == 0 {
		return ids, nil
	}

	p := f.prompter
	p.Heading(label, selectionHint)
	texts := make([]string, len(answered))
	for i, e := range answered {
		texts[i] = e.Question
	}
	p.Choices(texts, "")

	raw, err := p.Ask(ctx, SelectionPrompt)
	if err != nil {
		return nil, err
	}
	for _, n := range ParseSelection(raw, len(answered)) {
		ids = append(ids, answered[n-1].QuestionID)
	}
	return ids, nil
}
