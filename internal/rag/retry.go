package rag

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const maxBackoff = 30 * time.Second

// Retrier throttles calls to an external service and retries transient
// failures with exponential backoff
type Retrier struct {
	Limiter    *rate.Limiter
	MaxRetries int
	Backoff    time.Duration
	// Retryable classifies errors; nil treats every error as transient
	Retryable func(error) bool
}

// NewRetrier allows requestsPerMinute calls per minute. A non-positive
// rate disables throttling.
func NewRetrier(requestsPerMinute, maxRetries int, backoff time.Duration, retryable func(error) bool) *Retrier {
	r := &Retrier{MaxRetries: maxRetries, Backoff: backoff, Retryable: retryable}
	if requestsPerMinute > 0 {
		r.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return r
}

// Do runs fn until it succeeds, fails permanently, runs out of retries or
// ctx is done. The last error is returned.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= r.MaxRetries || ctx.Err() != nil || !r.retryable(err) {
			return err
		}

		timer := time.NewTimer(r.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (r *Retrier) retryable(err error) bool {
	if r.Retryable == nil {
		return true
	}
	return r.Retryable(err)
}

func (r *Retrier) delay(attempt int) time.Duration {
	if r.Backoff <= 0 {
		return 0
	}
	d := r.Backoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
