package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWrapperRetriesUntilSuccess(t *testing.T) {
	w := New(Options{Attempts: 3, Backoff: time.Millisecond})

	calls := 0
	err := w.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWrapperOpensAfterConsecutiveFailures(t *testing.T) {
	w := New(Options{FailureThreshold: 2, ResetTimeout: time.Hour, Attempts: 1, Backoff: time.Millisecond})

	boom := errors.New("provider down")
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return boom
	}

	for i := 0; i < 2; i++ {
		if err := w.Do(context.Background(), op); !errors.Is(err, boom) {
			t.Fatalf("failure %d: err = %v, want %v", i+1, err, boom)
		}
	}

	err := w.Do(context.Background(), op)
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("after threshold: err = %v, want ErrOpen", err)
	}
	if calls != 2 {
		t.Errorf("op ran %d times, want 2 (open breaker must not call through)", calls)
	}
}

func TestWrapperHalfOpenProbeRecovers(t *testing.T) {
	w := New(Options{FailureThreshold: 1, ResetTimeout: 20 * time.Millisecond, Attempts: 1, Backoff: time.Millisecond})

	if err := w.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	}); err == nil {
		t.Fatal("expected failure to trip the breaker")
	}
	if err := w.Do(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("while open: err = %v, want ErrOpen", err)
	}

	time.Sleep(40 * time.Millisecond)

	if err := w.Do(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("half-open probe: err = %v, want nil", err)
	}
	if err := w.Do(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("after recovery: err = %v, want nil", err)
	}
}

func TestWrapperHonorsCancelledContext(t *testing.T) {
	w := New(Options{Attempts: 3, Backoff: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := w.Do(ctx, func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("op ran %d times after cancellation, want 0", calls)
	}
}
