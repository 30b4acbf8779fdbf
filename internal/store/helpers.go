package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

// nullableString returns nil for a nil pointer so the column stores NULL, otherwise *s.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// rebindDollar rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// marshalList encodes a possibly nil slice, writing [] rather than null.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalList decodes a JSON column into a non-nil slice.
func unmarshalList[T any](column string, raw string) ([]T, error) {
	items := []T{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s column: %w", column, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// dumpRow is one row of the sessions/feedback outer join.
type dumpRow struct {
	sessionID      int64
	processID      string
	timestamp      string
	style          string
	transcriptJSON string
	nicknamesJSON  string
	raw            string

	feedbackID    sql.NullInt64
	favoriteName  sql.NullString
	helpfulJSON   sql.NullString
	unhelpfulJSON sql.NullString
	suggested     sql.NullString
	selfName      sql.NullString
}

// scanDumpRow scans a dumpRow from sql.Rows.
func scanDumpRow(rows *sql.Rows) (dumpRow, error) {
	var r dumpRow
	err := rows.Scan(
		&r.sessionID, &r.processID, &r.timestamp, &r.style, &r.transcriptJSON, &r.nicknamesJSON, &r.raw,
		&r.feedbackID, &r.favoriteName, &r.helpfulJSON, &r.unhelpfulJSON, &r.suggested, &r.selfName,
	)
	if err != nil {
		return r, fmt.Errorf("scan dump row failed: %w", err)
	}
	return r, nil
}

// session decodes the session half of the row.
func (r dumpRow) session() (models.SessionRecord, error) {
	rec := models.SessionRecord{
		SessionID:      r.sessionID,
		ProcessID:      r.processID,
		Timestamp:      r.timestamp,
		Style:          r.style,
		LLMResponseRaw: r.raw,
	}
	transcript, err := unmarshalList[models.QAEntry]("qa_transcript", r.transcriptJSON)
	if err != nil {
		return rec, err
	}
	rec.QATranscript = transcript
	nicknames, err := unmarshalList[models.Candidate]("nicknames", r.nicknamesJSON)
	if err != nil {
		return rec, err
	}
	rec.Nicknames = nicknames
	return rec, nil
}

// feedback decodes the feedback half of the row, or nil when the join found none.
func (r dumpRow) feedback() (*models.Feedback, error) {
	if !r.feedbackID.Valid {
		return nil, nil
	}
	fb := &models.Feedback{
		SuggestedQuestions: r.suggested.String,
		SelfSuggestedName:  r.selfName.String,
	}
	if r.favoriteName.Valid {
		fb.FavoriteName = &r.favoriteName.String
	}
	var err error
	if fb.HelpfulQuestions, err = unmarshalList[string]("helpful_questions", r.helpfulJSON.String); err != nil {
		return nil, err
	}
	if fb.UnhelpfulQuestions, err = unmarshalList[string]("unhelpful_questions", r.unhelpfulJSON.String); err != nil {
		return nil, err
	}
	return fb, nil
}

// collectDump folds joined rows into one record per session. Rows must be ordered by
// session id then feedback id, so the newest feedback for a session wins.
func collectDump(rows []dumpRow) ([]models.SessionRecord, error) {
	records := []models.SessionRecord{}
	for _, row := range rows {
		fb, err := row.feedback()
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", row.sessionID, err)
		}
		if n := len(records); n > 0 && records[n-1].SessionID == row.sessionID {
			if fb != nil {
				records[n-1].Feedback = fb
			}
			continue
		}
		rec, err := row.session()
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", row.sessionID, err)
		}
		rec.Feedback = fb
		records = append(records, rec)
	}
	return records, nil
}
