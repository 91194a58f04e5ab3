package rag

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errPermanent = errors.New("permanent")

func TestRetrierDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       error
		retries   int
		wantCalls int
		wantErr   bool
	}{
		{name: "first try", failures: 0, retries: 3, wantCalls: 1},
		{name: "recovers", failures: 2, err: errors.New("503"), retries: 3, wantCalls: 3},
		{name: "exhausted", failures: 5, err: errors.New("503"), retries: 2, wantCalls: 3, wantErr: true},
		{name: "permanent", failures: 5, err: errPermanent, retries: 3, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Retrier{
				MaxRetries: tt.retries,
				Backoff:    time.Millisecond,
				Retryable:  func(err error) bool { return !errors.Is(err, errPermanent) },
			}

			calls := 0
			err := r.Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Expected %d calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestRetrierStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrier{MaxRetries: 10, Backoff: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, func(context.Context) error {
			calls++
			return errors.New("busy")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected the last error after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do() did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call before cancel, got %d", calls)
	}
}

func TestRetrierDelay(t *testing.T) {
	r := &Retrier{Backoff: time.Second}

	if got := r.delay(0); got != time.Second {
		t.Errorf("delay(0) = %s, want 1s", got)
	}
	if got := r.delay(3); got != 8*time.Second {
		t.Errorf("delay(3) = %s, want 8s", got)
	}
	if got := r.delay(10); got != maxBackoff {
		t.Errorf("delay(10) = %s, want %s", got, maxBackoff)
	}
	if got := (&Retrier{}).delay(4); got != 0 {
		t.Errorf("Expected no delay without backoff, got %s", got)
	}
}

func TestNewRetrierThrottles(t *testing.T) {
	if r := NewRetrier(0, 1, 0, nil); r.Limiter != nil {
		t.Error("Expected no limiter for a zero rate")
	}
	r := NewRetrier(120, 1, 0, nil)
	if r.Limiter == nil {
		t.Fatal("Expected a limiter")
	}
	if got := r.Limiter.Limit(); got != 2 {
		t.Errorf("Expected 2 requests per second, got %v", got)
	}
}
