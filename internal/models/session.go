package models

// Feedback is the optional critique a participant attaches to a logged session.
type Feedback struct {
	FavoriteName       *string  `json:"favorite_name"`
	HelpfulQuestions   []string `json:"helpful_questions"`
	UnhelpfulQuestions []string `json:"unhelpful_questions"`
	SuggestedQuestions string   `json:"suggested_questions"`
	SelfSuggestedName  string   `json:"self_suggested_name"`
}

// FeedbackRecord is a persisted Feedback row.
type FeedbackRecord struct {
	FeedbackID int64  `json:"feedback_id"`
	SessionID  int64  `json:"session_id"`
	Timestamp  string `json:"timestamp"`
	Feedback
}

// SessionRecord is one persisted generation attempt with its feedback left-joined in.
//
// The JSON shape is the session dump contract consumed by analysis tooling.
type SessionRecord struct {
	SessionID      int64       `json:"session_id"`
	ProcessID      string      `json:"process_id"`
	Timestamp      string      `json:"timestamp"`
	Style          string      `json:"style"`
	QATranscript   Transcript  `json:"qa_transcript"`
	Nicknames      []Candidate `json:"nicknames"`
	LLMResponseRaw string      `json:"-"`
	Feedback       *Feedback   `json:"feedback"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
