// Package pgqueue is a PostgreSQL jobs.Queue. Workers claim rows with
// FOR UPDATE SKIP LOCKED so several processes can share one table.
package pgqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warden/pkg/platform/jobs"
	"warden/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type Queue struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queue {
	return &Queue{pool: pool}
}

func (q *Queue) Enqueue(ctx context.Context, job jobs.Job) error {
	var dedupe *string
	if job.DedupeKey != "" {
		dedupe = &job.DedupeKey
	}
	runAt := job.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}
	_, err := q.pool.Exec(ctx, `
		INSERT INTO jobs (id, kind, payload, status, attempts, max_attempts, run_at, dedupe_key, created_at)
		VALUES ($1, $2, $3, 'queued', 0, $4, $5, $6, now())
	`, job.ID, job.Kind, []byte(job.Payload), job.MaxAttempts, runAt, dedupe)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("enqueue %s job: %w", job.Kind, err)
	}
	return nil
}

// Claim locks the next due job, marks it running and bumps its attempt count.
func (q *Queue) Claim(ctx context.Context, now time.Time) (job jobs.Job, found bool, err error) {
	tx, err := q.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var (
		payload   []byte
		dedupe    *string
		lastError *string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, kind, payload, attempts, max_attempts, run_at, dedupe_key, last_error, created_at
		FROM jobs
		WHERE status = 'queued' AND run_at <= $1
		ORDER BY run_at, created_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`, now).Scan(&job.ID, &job.Kind, &payload, &job.Attempts, &job.MaxAttempts, &job.RunAt, &dedupe, &lastError, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE jobs SET status = 'running', attempts = attempts + 1, updated_at = $2 WHERE id = $1
	`, job.ID, now); err != nil {
		return job, false, err
	}

	job.Payload = payload
	job.Status = jobs.StatusRunning
	job.Attempts++
	job.UpdatedAt = now
	if dedupe != nil {
		job.DedupeKey = *dedupe
	}
	if lastError != nil {
		job.LastError = *lastError
	}
	return job, true, nil
}

func (q *Queue) Complete(ctx context.Context, id uuid.UUID) error {
	return q.update(ctx, `UPDATE jobs SET status = 'done', updated_at = now() WHERE id = $1`, id)
}

func (q *Queue) Retry(ctx context.Context, id uuid.UUID, runAt time.Time, reason string) error {
	return q.update(ctx, `
		UPDATE jobs SET status = 'queued', run_at = $2, last_error = $3, updated_at = now() WHERE id = $1
	`, id, runAt, reason)
}

func (q *Queue) Bury(ctx context.Context, id uuid.UUID, reason string) error {
	return q.update(ctx, `
		UPDATE jobs SET status = 'dead', last_error = $2, updated_at = now() WHERE id = $1
	`, id, reason)
}

// RequeueStale returns running rows claimed before claimedBefore to the queue.
// The attempt already counted by Claim stays counted.
func (q *Queue) RequeueStale(ctx context.Context, claimedBefore time.Time) (int, error) {
	tag, err := q.pool.Exec(ctx, `
		UPDATE jobs SET status = 'queued', run_at = $1, last_error = 'claim expired', updated_at = $1
		WHERE status = 'running' AND updated_at < $1
	`, claimedBefore)
	if err != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (q *Queue) update(ctx context.Context, query string, args ...any) error {
	tag, err := q.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
