// Package memory is an in-process jobs.Queue for tests and single-node runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"warden/pkg/platform/jobs"
	"warden/pkg/platform/sentinel"
)

type Queue struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*jobs.Job
	dedupe  map[string]uuid.UUID
	created func() time.Time
}

func New() *Queue {
	return &Queue{
		jobs:    make(map[uuid.UUID]*jobs.Job),
		dedupe:  make(map[string]uuid.UUID),
		created: time.Now,
	}
}

func (q *Queue) Enqueue(_ context.Context, job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.DedupeKey != "" {
		if holder, dup := q.dedupe[job.DedupeKey]; dup && q.jobs[holder].Active() {
			return sentinel.ErrConflict
		}
		q.dedupe[job.DedupeKey] = job.ID
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = q.created()
	}
	job.UpdatedAt = job.CreatedAt
	job.Status = jobs.StatusQueued
	q.jobs[job.ID] = &job
	return nil
}

// Claim returns the due queued job with the earliest RunAt.
func (q *Queue) Claim(_ context.Context, now time.Time) (jobs.Job, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*jobs.Job
	for _, j := range q.jobs {
		if j.Status == jobs.StatusQueued && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	if len(due) == 0 {
		return jobs.Job{}, false, nil
	}
	sort.Slice(due, func(i, k int) bool {
		if due[i].RunAt.Equal(due[k].RunAt) {
			return due[i].CreatedAt.Before(due[k].CreatedAt)
		}
		return due[i].RunAt.Before(due[k].RunAt)
	})
	j := due[0]
	j.Status = jobs.StatusRunning
	j.Attempts++
	j.UpdatedAt = now
	return *j, true, nil
}

// RequeueStale makes running jobs claimed before claimedBefore due again.
func (q *Queue) RequeueStale(_ context.Context, claimedBefore time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status != jobs.StatusRunning || !j.UpdatedAt.Before(claimedBefore) {
			continue
		}
		j.Status = jobs.StatusQueued
		j.RunAt = claimedBefore
		j.LastError = "claim expired"
		j.UpdatedAt = claimedBefore
		n++
	}
	return n, nil
}

func (q *Queue) Complete(_ context.Context, id uuid.UUID) error {
	return q.transition(id, func(j *jobs.Job) {
		j.Status = jobs.StatusDone
	})
}

func (q *Queue) Retry(_ context.Context, id uuid.UUID, runAt time.Time, reason string) error {
	return q.transition(id, func(j *jobs.Job) {
		j.Status = jobs.StatusQueued
		j.RunAt = runAt
		j.LastError = reason
	})
}

func (q *Queue) Bury(_ context.Context, id uuid.UUID, reason string) error {
	return q.transition(id, func(j *jobs.Job) {
		j.Status = jobs.StatusDead
		j.LastError = reason
	})
}

// Get returns a copy of a job, for inspection in tests and admin tooling.
func (q *Queue) Get(id uuid.UUID) (jobs.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return jobs.Job{}, false
	}
	return *j, true
}

// ByKind lists jobs of a kind in creation order.
func (q *Queue) ByKind(kind string) []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []jobs.Job
	for _, j := range q.jobs {
		if j.Kind == kind {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out
}

func (q *Queue) transition(id uuid.UUID, fn func(*jobs.Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	fn(j)
	return nil
}
