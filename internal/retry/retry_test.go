package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_StopsAfterBoundedAttempts(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		Attempts: 3,
		Backoff:  Linear(2 * time.Second),
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	wantErr := errors.New("boom")
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second || slept[1] != 4*time.Second {
		t.Fatalf("unexpected backoff sequence: %v", slept)
	}
}

func TestDo_SucceedsMidway(t *testing.T) {
	p := Policy{
		Attempts: 3,
		Backoff:  Linear(time.Second),
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}
	calls := 0
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDo_ContextCancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		Attempts: 3,
		Backoff:  Linear(time.Second),
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	err := Do(ctx, p, func(context.Context) error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
