// Package models defines the core data structures for PlayaBooth.
//
// It includes the questionnaire catalog types, transcripts, nickname candidates and the
// session/feedback records shared across modules.
package models

import (
	"errors"
	"strings"
)

// Error variables for better error handling and testability
var (
	ErrEmptyQuestionID     = errors.New("question id cannot be empty")
	ErrDuplicateQuestionID = errors.New("duplicate question id")
	ErrNoQuestions         = errors.New("catalog has no questions")
	ErrEmptyStyleKey       = errors.New("style key cannot be empty")
	ErrDuplicateStyleKey   = errors.New("duplicate style key")
	ErrUnknownDefaultStyle = errors.New("default style is not in the catalog")
)

// Question is one entry of the questionnaire catalog.
type Question struct {
	ID   string `json:"question_id" yaml:"question_id"`
	Text string `json:"question" yaml:"question"`
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Style is a named tone modifier applied to the generation request.
type Style struct {
	Key            string `json:"key" yaml:"key"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	PromptModifier string `json:"prompt_modifier" yaml:"prompt_modifier"`
}

// QAEntry is a single answered (or skipped) question.
type QAEntry struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// Skipped reports whether the participant left the question blank.
func (e QAEntry) Skipped() bool {
	return strings.TrimSpace(e.Answer) == ""
}

// Transcript is the ordered list of QA entries collected in one run.
type Transcript []QAEntry

// Answered returns the entries with a non-empty answer, in order.
func (t Transcript) Answered() Transcript {
	answered := make(Transcript, 0, len(t))
	for _, e := range t {
		if !e.Skipped() {
			answered = append(answered, e)
		}
	}
	return answered
}

// Role identifies the author of a generation request message.
type Role string

const (
	// RoleSystem carries the generator instructions.
	RoleSystem Role = "system"
	// RoleUser carries the participant's structured answers.
	RoleUser Role = "user"
)

// Message is one element of a generation request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
