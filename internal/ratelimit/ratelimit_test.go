package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAcquireBurstThenThrottle(t *testing.T) {
	// Capacity 5: a full bucket admits 5 calls with negligible delay,
	// the 6th only after ~1/5s of refill.
	l := New(5)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("burst of 5 took %s, want near-zero", elapsed)
	}

	start = time.Now()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("6th acquire: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 150*time.Millisecond {
		t.Fatalf("6th acquire waited %s, want ~200ms", elapsed)
	}
	if elapsed > 400*time.Millisecond {
		t.Fatalf("6th acquire waited %s, want ~200ms", elapsed)
	}
}

func TestTokensCappedAtCapacity(t *testing.T) {
	l := New(10)

	// Idle time must not accumulate beyond the bucket maximum.
	time.Sleep(250 * time.Millisecond)
	if tokens := l.Tokens(); tokens > 10.0001 {
		t.Fatalf("tokens = %f, want <= capacity 10", tokens)
	}
}

func TestFractionalRefill(t *testing.T) {
	l := NewWithBurst(2, 2)
	ctx := context.Background()

	// Drain the bucket, then wait half a token's worth of time.
	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}
	time.Sleep(250 * time.Millisecond)

	tokens := l.Tokens()
	if tokens < 0.2 || tokens > 0.9 {
		t.Fatalf("tokens after 250ms at 2/s = %f, want fractional ~0.5", tokens)
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	l := NewWithBurst(0.5, 1)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatal("expected context error while bucket is empty")
	}
}

func TestConcurrentAcquire(t *testing.T) {
	l := New(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("concurrent acquire: %v", err)
			}
		}()
	}
	wg.Wait()
}
