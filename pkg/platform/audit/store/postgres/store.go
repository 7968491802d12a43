package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "warden/pkg/domain"
	audit "warden/pkg/platform/audit"
	txcontext "warden/pkg/platform/tx"
)

// Store implements audit.Store and audit.DeadLetterStore on PostgreSQL.
// Appends are idempotent on the event ID so redelivery is harmless.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an event, joining a transaction from ctx when present.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	var userID *uuid.UUID
	if !event.UserID.IsNil() {
		uid := uuid.UUID(event.UserID)
		userID = &uid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, user_id, subject, action,
			decision, reason, request_id, actor_id, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		userID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns events for a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, user_id, subject, action,
			   decision, reason, request_id, actor_id, metadata
		FROM audit_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event          audit.Event
			category       string
			userIDNullable *uuid.UUID
			metadata       []byte
		)
		if err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&userIDNullable,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if userIDNullable != nil {
			event.UserID = id.UserID(*userIDNullable)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// AppendDeadLetter stores an undeliverable event. A repeated failure for the
// same event overwrites the previous record.
func (s *Store) AppendDeadLetter(ctx context.Context, dl audit.DeadLetter) error {
	payload, err := json.Marshal(dl.Event)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	query := `
		INSERT INTO audit_dead_letters (event_id, payload, cause, attempts, failed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO UPDATE
		SET cause = EXCLUDED.cause, attempts = EXCLUDED.attempts, failed_at = EXCLUDED.failed_at
	`
	if _, err := s.db.ExecContext(ctx, query, dl.Event.ID, payload, dl.Cause, dl.Attempts, dl.FailedAt); err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

// ListDeadLetters returns the oldest dead letters first.
func (s *Store) ListDeadLetters(ctx context.Context, limit int) ([]audit.DeadLetter, error) {
	query := `
		SELECT payload, cause, attempts, failed_at
		FROM audit_dead_letters
		ORDER BY failed_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query dead letters: %w", err)
	}
	defer rows.Close()

	var out []audit.DeadLetter
	for rows.Next() {
		var (
			dl      audit.DeadLetter
			payload []byte
		)
		if err := rows.Scan(&payload, &dl.Cause, &dl.Attempts, &dl.FailedAt); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		if err := json.Unmarshal(payload, &dl.Event); err != nil {
			return nil, fmt.Errorf("decode dead letter: %w", err)
		}
		out = append(out, dl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead letters: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteDeadLetter(ctx context.Context, eventID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_dead_letters WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete dead letter: %w", err)
	}
	return nil
}
