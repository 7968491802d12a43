package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Handler executes one job kind. Returning an error schedules a retry unless
// the error is Permanent or attempts are exhausted.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

// DeadHandler is a Handler that also settles the domain state a job leaves
// behind when it is buried. OnDead runs after the job is marked dead.
type DeadHandler interface {
	Handler
	OnDead(ctx context.Context, job Job, cause error)
}

// Runner polls the queue and dispatches claimed jobs to handlers by kind.
type Runner struct {
	queue           Queue
	handlers        map[string]Handler
	logger          *slog.Logger
	metrics         *Metrics
	now             func() time.Time
	concurrency     int
	pollInterval    time.Duration
	handlerTimeout  time.Duration
	staleAfter      time.Duration
	initialInterval time.Duration
	maxInterval     time.Duration
}

type RunnerOption func(*Runner)

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithHandlerTimeout bounds a single handler invocation.
func WithHandlerTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.handlerTimeout = d
		}
	}
}

// WithStaleAfter sets how long a job may stay running before ReclaimStale
// hands it back to the queue. It defaults to twice the handler timeout and
// values below the handler timeout are ignored.
func WithStaleAfter(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.staleAfter = d
		}
	}
}

// WithRetryBackoff sets the delay before the first retry and the cap.
func WithRetryBackoff(initial, maxInterval time.Duration) RunnerOption {
	return func(r *Runner) {
		if initial > 0 {
			r.initialInterval = initial
		}
		if maxInterval > 0 {
			r.maxInterval = maxInterval
		}
	}
}

func NewRunner(queue Queue, opts ...RunnerOption) *Runner {
	r := &Runner{
		queue:           queue,
		handlers:        make(map[string]Handler),
		logger:          slog.Default(),
		now:             time.Now,
		concurrency:     2,
		pollInterval:    500 * time.Millisecond,
		handlerTimeout:  30 * time.Second,
		initialInterval: time.Second,
		maxInterval:     5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.staleAfter < r.handlerTimeout {
		r.staleAfter = 2 * r.handlerTimeout
	}
	return r
}

// Register binds a handler to a job kind. Not safe to call once Run started.
func (r *Runner) Register(kind string, h Handler) {
	r.handlers[kind] = h
}

// Run claims and executes jobs until ctx is cancelled, then waits for
// in-flight jobs to finish.
func (r *Runner) Run(ctx context.Context) {
	jobsCh := make(chan Job, r.concurrency)
	var wg sync.WaitGroup

	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsCh {
				r.execute(context.WithoutCancel(ctx), job)
			}
		}()
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	defer wg.Wait()
	defer close(jobsCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				job, found, err := r.queue.Claim(ctx, r.now())
				if err != nil {
					if ctx.Err() == nil {
						r.logger.ErrorContext(ctx, "job claim failed", "error", err)
					}
					break
				}
				if !found {
					break
				}
				select {
				case jobsCh <- job:
				case <-ctx.Done():
					// claimed but not started; hand it back for the next process
					_ = r.queue.Retry(context.WithoutCancel(ctx), job.ID, r.now(), "runner stopped")
					return
				}
			}
		}
	}
}

// RunOnce claims and executes a single due job. It reports whether a job was found.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	job, found, err := r.queue.Claim(ctx, r.now())
	if err != nil || !found {
		return false, err
	}
	r.execute(ctx, job)
	return true, nil
}

// Drain runs due jobs until none are left or limit is reached.
func (r *Runner) Drain(ctx context.Context, limit int) (int, error) {
	n := 0
	for n < limit {
		found, err := r.RunOnce(ctx)
		if err != nil {
			return n, err
		}
		if !found {
			break
		}
		n++
	}
	return n, nil
}

// ReclaimStale requeues jobs whose worker stopped reporting back. A running
// job older than the stale window cannot still be inside its handler.
func (r *Runner) ReclaimStale(ctx context.Context) (int, error) {
	n, err := r.queue.RequeueStale(ctx, r.now().Add(-r.staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.WarnContext(ctx, "stale running jobs requeued", "count", n)
	}
	return n, nil
}

func (r *Runner) execute(ctx context.Context, job Job) {
	start := r.now()
	handler, ok := r.handlers[job.Kind]
	if !ok {
		r.bury(ctx, job, fmt.Errorf("no handler registered for kind %q", job.Kind))
		return
	}

	hctx, cancel := context.WithTimeout(ctx, r.handlerTimeout)
	err := handler.Handle(hctx, job)
	cancel()
	r.metrics.observeDuration(job.Kind, r.now().Sub(start))

	switch {
	case err == nil:
		if cerr := r.queue.Complete(ctx, job.ID); cerr != nil {
			r.logger.ErrorContext(ctx, "job completion not recorded", "job_id", job.ID, "kind", job.Kind, "error", cerr)
		}
		r.metrics.incOutcome(job.Kind, string(StatusDone))
	case IsPermanent(err) || job.Attempts >= job.MaxAttempts:
		r.bury(ctx, job, err)
	default:
		runAt := r.now().Add(r.retryDelay(job.Attempts))
		if rerr := r.queue.Retry(ctx, job.ID, runAt, err.Error()); rerr != nil {
			r.logger.ErrorContext(ctx, "job retry not recorded", "job_id", job.ID, "kind", job.Kind, "error", rerr)
		}
		r.metrics.incOutcome(job.Kind, "retry")
		r.logger.WarnContext(ctx, "job failed, retry scheduled",
			"job_id", job.ID,
			"kind", job.Kind,
			"attempt", job.Attempts,
			"run_at", runAt,
			"error", err,
		)
	}
}

func (r *Runner) bury(ctx context.Context, job Job, cause error) {
	if err := r.queue.Bury(ctx, job.ID, cause.Error()); err != nil {
		r.logger.ErrorContext(ctx, "job dead-letter not recorded", "job_id", job.ID, "error", err)
	}
	r.metrics.incOutcome(job.Kind, string(StatusDead))
	r.logger.ErrorContext(ctx, "job moved to dead state",
		"job_id", job.ID,
		"kind", job.Kind,
		"attempts", job.Attempts,
		"error", cause,
	)
	if h, ok := r.handlers[job.Kind].(DeadHandler); ok {
		h.OnDead(ctx, job, cause)
	}
}

// retryDelay returns the backoff before attempt n+1, without jitter so the
// schedule is reproducible.
func (r *Runner) retryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	d := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
