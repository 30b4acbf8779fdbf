// Package metrics counts booth outcomes and exports them over OTLP.
package metrics

import "context"

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeUnparsed  = "unparsed"
	OutcomeLogged    = "logged"
	OutcomeNotLogged = "not_logged"
	OutcomeSkipped   = "skipped"
	OutcomeDiscarded = "discarded"
)

// Recorder receives one call per booth outcome.
type Recorder interface {
	// GenerationCompleted counts a generation attempt for style.
	GenerationCompleted(ctx context.Context, style, outcome string)
	// SessionLogged counts a session write attempt.
	SessionLogged(ctx context.Context, outcome string)
	// FeedbackRecorded counts how a feedback form ended.
	FeedbackRecorded(ctx context.Context, outcome string)
	// Close flushes pending metrics.
	Close(ctx context.Context) error
}

// NoOpRecorder is a recorder that does nothing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new no-op recorder for graceful degradation.
func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (NoOpRecorder) GenerationCompleted(ctx context.Context, style, outcome string) {}

func (NoOpRecorder) SessionLogged(ctx context.Context, outcome string) {}

func (NoOpRecorder) FeedbackRecorded(ctx context.Context, outcome string) {}

func (NoOpRecorder) Close(ctx context.Context) error {
	return nil
}
