package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// DumpJSON renders the session dump as an indented JSON array.
// An empty store, or a filter matching nothing, renders as [].
func DumpJSON(ctx context.Context, s SessionStore, sessionID *int64) ([]byte, error) {
	records, err := s.Dump(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.SessionRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session dump: %w", err)
	}
	return data, nil
}
