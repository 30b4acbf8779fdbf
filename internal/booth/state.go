// Package booth sequences the booth screens and decides what gets persisted.
package booth

import (
	"errors"
	"fmt"
)

// State is one screen of the booth.
type State int

const (
	// StateStart shows the banner and waits for Enter.
	StateStart State = iota
	// StateStyleSelect asks for a style key.
	StateStyleSelect
	// StateQuestionnaire collects the transcript.
	StateQuestionnaire
	// StateGenerating builds the request, calls the generator and shows the result.
	StateGenerating
	// StateFeedback offers the feedback form for the logged session.
	StateFeedback
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateStyleSelect:
		return "STYLE_SELECT"
	case StateQuestionnaire:
		return "QUESTIONNAIRE"
	case StateGenerating:
		return "GENERATING"
	case StateFeedback:
		return "FEEDBACK"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is the outcome of a state handler.
type Event int

const (
	EventAcknowledged Event = iota
	EventStyleChosen
	EventCollected
	EventCandidatesReady
	EventGenerationFailed
	EventFeedbackDone
)

func (e Event) String() string {
	switch e {
	case EventAcknowledged:
		return "Acknowledged"
	case EventStyleChosen:
		return "StyleChosen"
	case EventCollected:
		return "Collected"
	case EventCandidatesReady:
		return "CandidatesReady"
	case EventGenerationFailed:
		return "GenerationFailed"
	case EventFeedbackDone:
		return "FeedbackDone"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for a state and event pair with no edge.
var ErrInvalidTransition = errors.New("invalid transition")

type edge struct {
	from  State
	event Event
}

var transitions = map[edge]State{
	{StateStart, EventAcknowledged}:          StateStyleSelect,
	{StateStyleSelect, EventStyleChosen}:     StateQuestionnaire,
	{StateQuestionnaire, EventCollected}:     StateGenerating,
	{StateGenerating, EventCandidatesReady}:  StateFeedback,
	{StateGenerating, EventGenerationFailed}: StateStart,
	{StateFeedback, EventFeedbackDone}:       StateStart,
}

// Transition returns the state that follows s on e.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[edge{s, e}]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, s, e)
	}
	return next, nil
}
