// Package testutil provides common test utilities and helpers for PlayaBooth tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/BTreeMap/PlayaBooth/internal/store"
	"github.com/BTreeMap/PlayaBooth/internal/ui"
)

// Lines joins scripted input lines, each terminated by a newline.
// An empty string stands for pressing Enter.
func Lines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// NewScriptedTerminal creates a terminal that reads lines and renders into the returned buffer.
func NewScriptedTerminal(lines ...string) (*ui.Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return ui.NewTerminal(strings.NewReader(Lines(lines...)), &out), &out
}

// SampleTranscript is a two-question transcript with one skipped answer.
func SampleTranscript() models.Transcript {
	return models.Transcript{
		{QuestionID: "vibe", Question: "What is your vibe?", Answer: "neon"},
		{QuestionID: "camp", Question: "Where do you camp?", Answer: ""},
	}
}

// SeedSessions logs one session per style and returns the assigned ids.
func SeedSessions(t *testing.T, st store.SessionStore, styles ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(styles))
	for i, style := range styles {
		nicknames := []models.Candidate{{Name: "Dust Bunny"}, {Name: "Glimmer", Explanation: "sparkles"}}
		id, err := st.LogSession(context.Background(), style, SampleTranscript(), nicknames, `{"nicknames": []}`)
		if err != nil {
			t.Fatalf("failed to seed session %d: %v", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// AssertSessionCount validates the number of sessions in the store dump.
func AssertSessionCount(t *testing.T, st store.SessionStore, expected int, label string) {
	t.Helper()
	records, err := st.Dump(context.Background(), nil)
	if err != nil {
		t.Fatalf("%s: failed to dump sessions: %v", label, err)
	}
	if len(records) != expected {
		t.Errorf("%s: expected %d sessions, got %d", label, expected, len(records))
	}
}

// AssertContains fails the test for every want missing from text.
func AssertContains(t *testing.T, text, label string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Errorf("%s: output missing %q:\n%s", label, want, text)
		}
	}
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t *testing.T, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v\n%s", err, data)
	}
}
