package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/BTreeMap/PlayaBooth/internal/models"
)

const (
	insertSessionSQL = `INSERT INTO sessions (process_id, timestamp, style, qa_transcript, nicknames, llm_response_raw)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING session_id`

	insertFeedbackSQL = `INSERT INTO feedback (session_id, timestamp, favorite_name, helpful_questions,
		unhelpful_questions, suggested_questions, self_suggested_name)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING feedback_id`

	dumpSQL = `SELECT s.session_id, s.process_id, s.timestamp, s.style, s.qa_transcript, s.nicknames, s.llm_response_raw,
		f.feedback_id, f.favorite_name, f.helpful_questions, f.unhelpful_questions, f.suggested_questions, f.self_suggested_name
		FROM sessions s
		LEFT OUTER JOIN feedback f ON f.session_id = s.session_id`

	dumpOrderSQL = ` ORDER BY s.session_id ASC, f.feedback_id ASC`
)

// sqlRepo implements SessionStore over database/sql. The SQLite and Postgres stores
// share it and differ only in driver, placeholder style and migrations.
type sqlRepo struct {
	db        *sql.DB
	name      string
	bind      func(string) string
	processID string
	now       func() time.Time
}

// Compile-time checks that the SQL stores implement SessionStore.
var (
	_ SessionStore = (*SQLiteStore)(nil)
	_ SessionStore = (*PostgresStore)(nil)
)

func (r *sqlRepo) ProcessID() string {
	return r.processID
}

func (r *sqlRepo) LogSession(ctx context.Context, style string, transcript models.Transcript, nicknames []models.Candidate, raw string) (int64, error) {
	transcriptJSON, err := marshalList([]models.QAEntry(transcript))
	if err != nil {
		return 0, notLogged("encode qa_transcript", err)
	}
	nicknamesJSON, err := marshalList(nicknames)
	if err != nil {
		return 0, notLogged("encode nicknames", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.bind(insertSessionSQL),
		r.processID, timestamp(r.now()), style, transcriptJSON, nicknamesJSON, raw,
	).Scan(&id)
	if err != nil {
		slog.Error(r.name+".LogSession: insert failed", "error", err, "style", style)
		return 0, notLogged("insert session", err)
	}
	slog.Debug(r.name+".LogSession: session logged", "session_id", id, "style", style, "nicknames", len(nicknames))
	return id, nil
}

func (r *sqlRepo) LogFeedback(ctx context.Context, sessionID int64, fb models.Feedback) (int64, error) {
	helpfulJSON, err := marshalList(fb.HelpfulQuestions)
	if err != nil {
		return 0, notLogged("encode helpful_questions", err)
	}
	unhelpfulJSON, err := marshalList(fb.UnhelpfulQuestions)
	if err != nil {
		return 0, notLogged("encode unhelpful_questions", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.bind(insertFeedbackSQL),
		sessionID, timestamp(r.now()), nullableString(fb.FavoriteName), helpfulJSON, unhelpfulJSON,
		fb.SuggestedQuestions, fb.SelfSuggestedName,
	).Scan(&id)
	if err != nil {
		slog.Error(r.name+".LogFeedback: insert failed", "error", err, "session_id", sessionID)
		return 0, notLogged(fmt.Sprintf("insert feedback for session %d", sessionID), err)
	}
	slog.Debug(r.name+".LogFeedback: feedback logged", "feedback_id", id, "session_id", sessionID)
	return id, nil
}

func (r *sqlRepo) Dump(ctx context.Context, sessionID *int64) ([]models.SessionRecord, error) {
	query := dumpSQL
	var args []interface{}
	if sessionID != nil {
		query += ` WHERE s.session_id = ?`
		args = append(args, *sessionID)
	}
	query += dumpOrderSQL

	rows, err := r.db.QueryContext(ctx, r.bind(query), args...)
	if err != nil {
		slog.Error(r.name+".Dump: query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var joined []dumpRow
	for rows.Next() {
		row, err := scanDumpRow(rows)
		if err != nil {
			slog.Error(r.name+".Dump: scan failed", "error", err)
			return nil, err
		}
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		slog.Error(r.name+".Dump: rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	records, err := collectDump(joined)
	if err != nil {
		slog.Error(r.name+".Dump: decode failed", "error", err)
		return nil, err
	}
	slog.Debug(r.name+".Dump: sessions loaded", "count", len(records), "filtered", sessionID != nil)
	return records, nil
}

// Close closes the database connection.
func (r *sqlRepo) Close() error {
	slog.Debug(r.name + ".Close: closing database connection")
	err := r.db.Close()
	if err != nil {
		slog.Error(r.name+".Close: failed to close database", "error", err)
	}
	return err
}
