package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// InMemoryStore is a simple in-memory session store for tests and embedding.
type InMemoryStore struct {
	mu        sync.Mutex
	sessions  []models.SessionRecord
	feedback  []models.FeedbackRecord
	processID string
	cfg       Opts
}

var (
	_ SessionStore = (*InMemoryStore)(nil)
	_ SessionStore = (*UnavailableStore)(nil)
)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	cfg := applyOpts(opts)
	return &InMemoryStore{processID: cfg.ProcessID, cfg: cfg}
}

func (s *InMemoryStore) ProcessID() string {
	return s.processID
}

func (s *InMemoryStore) LogSession(ctx context.Context, style string, transcript models.Transcript, nicknames []models.Candidate, raw string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, notLogged("insert session", err)
	}
	// round-trip through JSON so stored records never alias caller slices
	var rec models.SessionRecord
	if err := cloneJSON(models.SessionRecord{QATranscript: transcript, Nicknames: nicknames}, &rec); err != nil {
		return 0, notLogged("encode session", err)
	}
	if rec.QATranscript == nil {
		rec.QATranscript = models.Transcript{}
	}
	if rec.Nicknames == nil {
		rec.Nicknames = []models.Candidate{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.SessionID = int64(len(s.sessions) + 1)
	rec.ProcessID = s.processID
	rec.Timestamp = timestamp(s.cfg.Now())
	rec.Style = style
	rec.LLMResponseRaw = raw
	s.sessions = append(s.sessions, rec)
	slog.Debug("InMemoryStore.LogSession: session logged", "session_id", rec.SessionID, "style", style)
	return rec.SessionID, nil
}

func (s *InMemoryStore) LogFeedback(ctx context.Context, sessionID int64, fb models.Feedback) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, notLogged("insert feedback", err)
	}
	var stored models.Feedback
	if err := cloneJSON(fb, &stored); err != nil {
		return 0, notLogged("encode feedback", err)
	}
	if stored.HelpfulQuestions == nil {
		stored.HelpfulQuestions = []string{}
	}
	if stored.UnhelpfulQuestions == nil {
		stored.UnhelpfulQuestions = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID < 1 || sessionID > int64(len(s.sessions)) {
		return 0, notLogged(fmt.Sprintf("insert feedback for session %d", sessionID), ErrUnknownSession)
	}
	rec := models.FeedbackRecord{
		FeedbackID: int64(len(s.feedback) + 1),
		SessionID:  sessionID,
		Timestamp:  timestamp(s.cfg.Now()),
		Feedback:   stored,
	}
	s.feedback = append(s.feedback, rec)
	slog.Debug("InMemoryStore.LogFeedback: feedback logged", "feedback_id", rec.FeedbackID, "session_id", sessionID)
	return rec.FeedbackID, nil
}

func (s *InMemoryStore) Dump(ctx context.Context, sessionID *int64) ([]models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []models.SessionRecord{}
	for _, sess := range s.sessions {
		if sessionID != nil && sess.SessionID != *sessionID {
			continue
		}
		rec := sess
		// feedback ids ascend, so the last match is the newest
		for i := range s.feedback {
			if s.feedback[i].SessionID == sess.SessionID {
				fb := s.feedback[i].Feedback
				rec.Feedback = &fb
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

// SessionCount returns the number of stored sessions.
func (s *InMemoryStore) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// FeedbackCount returns the number of stored feedback records.
func (s *InMemoryStore) FeedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback)
}

func cloneJSON(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// UnavailableStore is installed when the configured store cannot be opened.
// Every write fails with ErrNotLogged wrapping the open error.
type UnavailableStore struct {
	cause     error
	processID string
}

// NewUnavailableStore returns a store that reports cause on every call.
func NewUnavailableStore(cause error, opts ...Option) *UnavailableStore {
	cfg := applyOpts(opts)
	if cause == nil {
		cause = fmt.Errorf("session store unavailable")
	}
	return &UnavailableStore{cause: cause, processID: cfg.ProcessID}
}

func (s *UnavailableStore) ProcessID() string {
	return s.processID
}

func (s *UnavailableStore) LogSession(ctx context.Context, style string, transcript models.Transcript, nicknames []models.Candidate, raw string) (int64, error) {
	return 0, notLogged("store unavailable", s.cause)
}

func (s *UnavailableStore) LogFeedback(ctx context.Context, sessionID int64, fb models.Feedback) (int64, error) {
	return 0, notLogged("store unavailable", s.cause)
}

func (s *UnavailableStore) Dump(ctx context.Context, sessionID *int64) ([]models.SessionRecord, error) {
	return nil, fmt.Errorf("session store unavailable: %w", s.cause)
}

func (s *UnavailableStore) Close() error {
	return nil
}
