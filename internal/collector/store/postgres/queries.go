package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/groblegark/proctor/internal/audit"
)

// eventColumns is the column list used for SELECT statements on the
// audit_events table.
const eventColumns = `id, event_type, ts, attempt_id, user_id, question_id, metadata`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryInsertEvents(ctx context.Context, db executor, events []*audit.Event) ([]string, error) {
	var inserted []string
	for _, e := range events {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata for %s: %w", e.ID, err)
		}
		res, err := db.ExecContext(ctx, `
			INSERT INTO audit_events (id, event_type, ts, attempt_id, user_id, question_id, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			e.ID,
			string(e.Type),
			e.Timestamp,
			e.AttemptID,
			e.UserID,
			nullString(e.QuestionID),
			metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting event %s: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected for %s: %w", e.ID, err)
		}
		if n > 0 {
			inserted = append(inserted, e.ID)
		}
	}
	return inserted, nil
}

func queryListEvents(ctx context.Context, db executor, attemptID string) ([]*audit.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_events`
	var args []any
	if attemptID != "" {
		query += ` WHERE attempt_id = $1`
		args = append(args, attemptID)
	}
	query += ` ORDER BY ts, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []*audit.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func queryDeleteEvents(ctx context.Context, db executor, attemptID string) (int, error) {
	query := `DELETE FROM audit_events`
	var args []any
	if attemptID != "" {
		query += ` WHERE attempt_id = $1`
		args = append(args, attemptID)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func scanEvent(rows *sql.Rows) (*audit.Event, error) {
	var (
		e          audit.Event
		eventType  string
		questionID sql.NullString
		metadata   []byte
	)
	if err := rows.Scan(&e.ID, &eventType, &e.Timestamp, &e.AttemptID, &e.UserID, &questionID, &metadata); err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	e.Type = audit.EventType(eventType)
	e.QuestionID = questionID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
