package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/google/go-cmp/cmp"
)

var (
	testTranscript = models.Transcript{
		{QuestionID: "vibe", Question: "What's your vibe?", Answer: "Foggy neon boardwalk"},
		{QuestionID: "side_quest", Question: "Side quest?", Answer: ""},
		{QuestionID: "weather", Question: "Weather event?", Answer: "Dust devil"},
	}
	testNicknames = []models.Candidate{
		{Name: "Dust Bunny"},
		{Name: "Glimmer", Explanation: "sparkles in fog"},
		{Name: "Yardsale"},
	}
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 8, 28, 4, 20, 0, 0, time.UTC) }
}

// storeFactories yields every backend available in this environment.
func storeFactories(t *testing.T) map[string]func(t *testing.T) SessionStore {
	t.Helper()
	factories := map[string]func(t *testing.T) SessionStore{
		"memory": func(t *testing.T) SessionStore {
			return NewInMemoryStore(WithProcessID("proc-1"), WithClock(fixedClock()))
		},
		"sqlite": func(t *testing.T) SessionStore {
			s, err := NewSQLiteStore(context.Background(),
				WithSQLiteDSN(filepath.Join(t.TempDir(), "logs", "sessions.db")),
				WithProcessID("proc-1"), WithClock(fixedClock()))
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
	if dsn, ok := syscall.Getenv("DATABASE_URL"); ok && dsn != "" {
		factories["postgres"] = func(t *testing.T) SessionStore {
			s, err := NewPostgresStore(context.Background(), WithPostgresDSN(dsn),
				WithProcessID("proc-1"), WithClock(fixedClock()))
			if err != nil {
				t.Skipf("Postgres not available: %v", err)
			}
			// Clean up tables before test
			s.db.Exec("TRUNCATE feedback, sessions RESTART IDENTITY")
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return factories
}

func TestSessionStoreRoundTrip(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			id, err := s.LogSession(ctx, "c", testTranscript, testNicknames, `{"nicknames": []}`)
			if err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}

			records, err := s.Dump(ctx, &id)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			got := records[0]
			if got.SessionID != id || got.Style != "c" || got.ProcessID != "proc-1" {
				t.Errorf("unexpected record header: %+v", got)
			}
			if got.Timestamp != "2025-08-28T04:20:00Z" {
				t.Errorf("unexpected timestamp %q", got.Timestamp)
			}
			if diff := cmp.Diff(testTranscript, got.QATranscript); diff != "" {
				t.Errorf("transcript mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(testNicknames, got.Nicknames); diff != "" {
				t.Errorf("nicknames mismatch (-want +got):\n%s", diff)
			}
			if got.LLMResponseRaw != `{"nicknames": []}` {
				t.Errorf("raw response not preserved: %q", got.LLMResponseRaw)
			}
			if got.Feedback != nil {
				t.Errorf("expected no feedback, got %+v", got.Feedback)
			}
		})
	}
}

func TestSessionStoreFeedback(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			first, err := s.LogSession(ctx, "m", testTranscript, testNicknames, "raw")
			if err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}
			second, err := s.LogSession(ctx, "y", testTranscript, testNicknames[:1], "raw")
			if err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}

			fb := models.Feedback{
				FavoriteName:       models.StringPtr("Glimmer"),
				HelpfulQuestions:   []string{"vibe"},
				UnhelpfulQuestions: []string{"weather"},
				SuggestedQuestions: "Ask about art cars",
				SelfSuggestedName:  "Moth",
			}
			if _, err := s.LogFeedback(ctx, second, fb); err != nil {
				t.Fatalf("LogFeedback failed: %v", err)
			}

			records, err := s.Dump(ctx, nil)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d", len(records))
			}
			if records[0].SessionID != first || records[1].SessionID != second {
				t.Errorf("records not ordered by session id: %d, %d", records[0].SessionID, records[1].SessionID)
			}
			if records[0].Feedback != nil {
				t.Errorf("first session should have no feedback, got %+v", records[0].Feedback)
			}
			if diff := cmp.Diff(&fb, records[1].Feedback); diff != "" {
				t.Errorf("feedback mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionStoreNullFavoriteAndEmptyLists(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			id, err := s.LogSession(ctx, "z", nil, testNicknames, "raw")
			if err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}
			if _, err := s.LogFeedback(ctx, id, models.Feedback{}); err != nil {
				t.Fatalf("LogFeedback failed: %v", err)
			}
			records, err := s.Dump(ctx, &id)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			fb := records[0].Feedback
			if fb == nil {
				t.Fatal("expected feedback")
			}
			if fb.FavoriteName != nil {
				t.Errorf("expected null favorite, got %q", *fb.FavoriteName)
			}
			if fb.HelpfulQuestions == nil || fb.UnhelpfulQuestions == nil {
				t.Error("expected empty lists rather than nil")
			}
			if records[0].QATranscript == nil {
				t.Error("expected empty transcript rather than nil")
			}
		})
	}
}

func TestSessionStoreNewestFeedbackWins(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			id, err := s.LogSession(ctx, "w", testTranscript, testNicknames, "raw")
			if err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}
			for _, name := range []string{"Old", "New"} {
				if _, err := s.LogFeedback(ctx, id, models.Feedback{SelfSuggestedName: name}); err != nil {
					t.Fatalf("LogFeedback failed: %v", err)
				}
			}
			records, err := s.Dump(ctx, nil)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected one record per session, got %d", len(records))
			}
			if records[0].Feedback == nil || records[0].Feedback.SelfSuggestedName != "New" {
				t.Errorf("expected newest feedback, got %+v", records[0].Feedback)
			}
		})
	}
}

func TestSessionStoreDumpFilterMissing(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			if _, err := s.LogSession(ctx, "w", testTranscript, testNicknames, "raw"); err != nil {
				t.Fatalf("LogSession failed: %v", err)
			}
			missing := int64(999)
			records, err := s.Dump(ctx, &missing)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if len(records) != 0 {
				t.Errorf("expected empty result, got %d records", len(records))
			}
		})
	}
}

func TestSessionStoreFeedbackForUnknownSession(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			_, err := s.LogFeedback(ctx, 42, models.Feedback{SelfSuggestedName: "Ghost"})
			if !errors.Is(err, ErrNotLogged) {
				t.Fatalf("expected ErrNotLogged, got %v", err)
			}
			records, err := s.Dump(ctx, nil)
			if err != nil {
				t.Fatalf("Dump failed: %v", err)
			}
			if len(records) != 0 {
				t.Errorf("store should be unchanged, got %d records", len(records))
			}
		})
	}
}

func TestSQLiteInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := NewSQLiteStore(ctx, WithSQLiteDSN(path))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	id, err := s.LogSession(ctx, "m", testTranscript, testNicknames, "raw")
	if err != nil {
		t.Fatalf("LogSession failed: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("third Init failed: %v", err)
	}
	s.Close()

	// Reopen runs the migrations again against the existing file.
	reopened, err := NewSQLiteStore(ctx, WithSQLiteDSN(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if reopened.ProcessID() == s.ProcessID() {
		t.Error("expected a fresh process id per store instance")
	}
	records, err := reopened.Dump(ctx, &id)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if len(records) != 1 || records[0].SessionID != id {
		t.Errorf("data lost across Init: %+v", records)
	}

	next, err := reopened.LogSession(ctx, "m", testTranscript, testNicknames, "raw")
	if err != nil {
		t.Fatalf("LogSession failed: %v", err)
	}
	if next <= id {
		t.Errorf("session ids must increase: %d after %d", next, id)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"logs/sessions.db", "logs/sessions.db?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"},
		{"file:x.db?cache=shared", "file:x.db?cache=shared&_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"},
		{"x.db?_journal_mode=DELETE&_foreign_keys=off&_busy_timeout=1", "x.db?_journal_mode=DELETE&_foreign_keys=off&_busy_timeout=1"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := sqlitePath("file:logs/a.db?mode=rwc"); got != "logs/a.db" {
		t.Errorf("sqlitePath = %q", got)
	}
}

func TestDetectDSNType(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost/db":      BackendPostgres,
		"postgresql://localhost/db":        BackendPostgres,
		"host=localhost dbname=booth":      BackendPostgres,
		"logs/sessions.db":                 BackendSQLite,
		"file:sessions.db?_foreign_keys=1": BackendSQLite,
	}
	for dsn, want := range tests {
		if got := DetectDSNType(dsn); got != want {
			t.Errorf("DetectDSNType(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar("INSERT INTO t (a, b) VALUES (?, ?) WHERE c = ?")
	want := "INSERT INTO t (a, b) VALUES ($1, $2) WHERE c = $3"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNullableString(t *testing.T) {
	if got := nullableString(nil); got != nil {
		t.Errorf("expected nil for nil pointer, got %v", got)
	}
	if got := nullableString(models.StringPtr("")); got != "" {
		t.Errorf("expected empty string kept, got %v", got)
	}
	if got := nullableString(models.StringPtr("Glimmer")); got != "Glimmer" {
		t.Errorf("expected Glimmer, got %v", got)
	}
}

func TestUnavailableStore(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk full")
	s := NewUnavailableStore(cause)
	if _, err := s.LogSession(ctx, "m", testTranscript, testNicknames, "raw"); !errors.Is(err, ErrNotLogged) || !errors.Is(err, cause) {
		t.Errorf("expected ErrNotLogged wrapping cause, got %v", err)
	}
	if _, err := s.LogFeedback(ctx, 1, models.Feedback{}); !errors.Is(err, ErrNotLogged) {
		t.Errorf("expected ErrNotLogged, got %v", err)
	}
	if _, err := s.Dump(ctx, nil); !errors.Is(err, cause) {
		t.Errorf("expected cause from Dump, got %v", err)
	}
	if s.ProcessID() == "" {
		t.Error("expected a process id")
	}
}

func TestDumpJSONContract(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(WithProcessID("proc-1"), WithClock(fixedClock()))

	empty, err := DumpJSON(ctx, s, nil)
	if err != nil {
		t.Fatalf("DumpJSON failed: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("expected [] for empty store, got %s", empty)
	}

	first, _ := s.LogSession(ctx, "m", testTranscript, testNicknames, "raw")
	second, _ := s.LogSession(ctx, "c", testTranscript, testNicknames, "raw")
	if _, err := s.LogFeedback(ctx, second, models.Feedback{FavoriteName: models.StringPtr("Yardsale")}); err != nil {
		t.Fatalf("LogFeedback failed: %v", err)
	}

	data, err := DumpJSON(ctx, s, nil)
	if err != nil {
		t.Fatalf("DumpJSON failed: %v", err)
	}
	var decoded []map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("dump is not a JSON array: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	keys := []string{"session_id", "process_id", "timestamp", "style", "qa_transcript", "nicknames", "feedback"}
	for _, rec := range decoded {
		for _, k := range keys {
			if _, ok := rec[k]; !ok {
				t.Errorf("record missing %q: %v", k, rec)
			}
		}
		if _, ok := rec["llm_response_raw"]; ok {
			t.Error("llm_response_raw must not be part of the dump")
		}
	}
	if string(decoded[0]["feedback"]) != "null" {
		t.Errorf("expected null feedback for session %d, got %s", first, decoded[0]["feedback"])
	}
	var fb map[string]json.RawMessage
	if err := json.Unmarshal(decoded[1]["feedback"], &fb); err != nil {
		t.Fatalf("feedback is not an object: %v", err)
	}
	for _, k := range []string{"favorite_name", "helpful_questions", "unhelpful_questions", "suggested_questions", "self_suggested_name"} {
		if _, ok := fb[k]; !ok {
			t.Errorf("feedback missing %q", k)
		}
	}
	if string(fb["helpful_questions"]) != "[]" {
		t.Errorf("expected empty list, got %s", fb["helpful_questions"])
	}
}

func TestInMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id, _ := s.LogSession(ctx, "m", testTranscript, testNicknames, "raw")
	s.LogFeedback(ctx, id, models.Feedback{})
	if s.SessionCount() != 1 || s.FeedbackCount() != 1 {
		t.Errorf("unexpected counts: sessions=%d feedback=%d", s.SessionCount(), s.FeedbackCount())
	}
}
