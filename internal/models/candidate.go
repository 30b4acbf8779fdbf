package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Candidate is a generated nickname suggestion, optionally with an explanation.
//
// A candidate without an explanation serializes as a plain JSON string so that stored
// nickname lists stay readable by tooling that expects ["Name", ...].
type Candidate struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Candidate) MarshalJSON() ([]byte, error) {
	if c.Explanation == "" {
		return json.Marshal(c.Name)
	}
	type plain Candidate
	return json.Marshal(plain(c))
}

// UnmarshalJSON implements json.Unmarshaler, accepting both the string and object forms.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Candidate{Name: name}
		return nil
	}
	type plain Candidate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}
	*c = Candidate(p)
	return nil
}

// CandidateNames returns just the names, in order.
func CandidateNames(cands []Candidate) []string {
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.Name
	}
	return names
}
