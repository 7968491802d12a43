package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryRead retries an idempotent lookup while its error is retryable, with
// exponential backoff bounded by maxAttempts and ctx. Writes must never go
// through here.
func RetryRead[T any](ctx context.Context, maxAttempts int, op func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 0

	var attempts uint64
	if maxAttempts > 1 {
		attempts = uint64(maxAttempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, attempts), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op(ctx)
		if err != nil && !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
}
