// Package jobs is a small durable background job queue. KYC processing, AML
// reports and user notifications are enqueued here and executed by a Runner
// with bounded, exponentially spaced retries and a dead state for jobs that
// exhaust their attempts.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusDead    Status = "dead"
)

const DefaultMaxAttempts = 5

// Job is one unit of background work.
type Job struct {
	ID          uuid.UUID
	Kind        string
	Payload     json.RawMessage
	Status      Status
	Attempts    int
	MaxAttempts int
	RunAt       time.Time
	LastError   string
	// DedupeKey, when set, makes Enqueue idempotent: a second job with the
	// same key is rejected with sentinel.ErrConflict while the first one is
	// queued or running. Once it is done or dead the key is free again.
	DedupeKey string
	CreatedAt time.Time
	// UpdatedAt is the last state change. For a running job it is the claim
	// time, which RequeueStale compares against.
	UpdatedAt time.Time
}

// Active reports whether the job still holds its dedupe key.
func (j Job) Active() bool {
	return j.Status == StatusQueued || j.Status == StatusRunning
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s payload: %w", j.Kind, err))
	}
	return nil
}

type Option func(*Job)

func WithMaxAttempts(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.MaxAttempts = n
		}
	}
}

func WithDedupeKey(key string) Option {
	return func(j *Job) {
		j.DedupeKey = key
	}
}

// WithRunAt delays the first attempt.
func WithRunAt(t time.Time) Option {
	return func(j *Job) {
		j.RunAt = t
	}
}

// New builds a queued job with a JSON payload.
func New(kind string, payload any, opts ...Option) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	j := Job{
		ID:          uuid.New(),
		Kind:        kind,
		Payload:     raw,
		Status:      StatusQueued,
		MaxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(&j)
	}
	return j, nil
}

// Queue persists jobs and hands them out to workers. Claim must give a job to
// at most one worker at a time.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Claim(ctx context.Context, now time.Time) (job Job, found bool, err error)
	Complete(ctx context.Context, id uuid.UUID) error
	Retry(ctx context.Context, id uuid.UUID, runAt time.Time, reason string) error
	Bury(ctx context.Context, id uuid.UUID, reason string) error
	// RequeueStale puts running jobs claimed before claimedBefore back in the
	// queue. A worker that crashed mid-job leaves such rows behind.
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int, error)
}

// Enqueuer is the producer side, the only part services depend on.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Permanent marks a handler error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *backoff.PermanentError
	return errors.As(err, &pe)
}
