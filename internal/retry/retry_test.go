package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	transient := apperror.New(apperror.CodeServerError, apperror.WithStatusCode(500))

	result, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", transient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want ok", result)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoExhaustsRetriesAndPropagatesFinalError(t *testing.T) {
	attempts := 0
	finalErr := apperror.New(apperror.CodeRateLimited, apperror.WithStatusCode(429))

	_, err := Do(context.Background(), fastPolicy(2), func(ctx context.Context) (int, error) {
		attempts++
		return 0, finalErr
	})
	if attempts != 3 {
		t.Fatalf("attempts = %d, want maxRetries+1 = 3", attempts)
	}
	// The final error must propagate unchanged.
	if !errors.Is(err, finalErr) {
		t.Fatalf("error = %v, want the final attempt's error", err)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not_found_status", apperror.FromStatus(404, "quote")},
		{"malformed_response", apperror.New(apperror.CodeMalformedResponse)},
		{"domain_no_quote", apperror.New(apperror.CodeNoQuote)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			_, err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) (int, error) {
				attempts++
				return 0, tt.err
			})
			if attempts != 1 {
				t.Fatalf("attempts = %d, want exactly 1", attempts)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDoCustomPredicate(t *testing.T) {
	attempts := 0
	plain := errors.New("flaky")
	p := fastPolicy(2)
	p.ShouldRetry = func(err error) bool { return true }

	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		attempts++
		return 0, plain
	})
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3 with always-retry predicate", attempts)
	}
	if !errors.Is(err, plain) {
		t.Fatalf("error = %v, want %v", err, plain)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Do(ctx, fastPolicy(5), func(ctx context.Context) (int, error) {
		attempts++
		return 0, apperror.New(apperror.CodeServerError, apperror.WithStatusCode(500))
	})
	if attempts != 0 {
		t.Fatalf("attempts = %d, want 0 on pre-cancelled context", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestBackoffBounds(t *testing.T) {
	p := Policy{
		MaxRetries: 10,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   250 * time.Millisecond,
	}

	for attempt := 0; attempt < 12; attempt++ {
		for i := 0; i < 50; i++ {
			d := p.Backoff(attempt)
			if d < 0 {
				t.Fatalf("backoff(%d) = %s, want >= 0", attempt, d)
			}
			if d > p.MaxDelay {
				t.Fatalf("backoff(%d) = %s, want <= %s", attempt, d, p.MaxDelay)
			}
		}
	}

	// First attempt: exponential floor plus jitter in [0, BaseDelay).
	for i := 0; i < 50; i++ {
		d := p.Backoff(0)
		if d < p.BaseDelay {
			t.Fatalf("backoff(0) = %s, want >= base delay %s", d, p.BaseDelay)
		}
	}

	// Deep attempts saturate at MaxDelay despite shift overflow.
	if d := p.Backoff(62); d != p.MaxDelay {
		t.Fatalf("backoff(62) = %s, want %s", d, p.MaxDelay)
	}
}
