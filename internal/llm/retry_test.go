package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	b := NewBaseProvider("test", 3, time.Millisecond)
	calls := 0
	err := b.Retry(context.Background(), func(error) bool { return true }, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	b := NewBaseProvider("test", 3, time.Millisecond)
	wantErr := errors.New("permanent")
	calls := 0
	err := b.Retry(context.Background(), func(error) bool { return false }, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retry() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-retryable error)", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	b := NewBaseProvider("test", 2, time.Millisecond)
	calls := 0
	err := b.Retry(context.Background(), func(error) bool { return true }, func() error {
		calls++
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (1 initial + 2 retries)", calls)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	b := NewBaseProvider("test", 5, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := b.Retry(ctx, func(error) bool { return true }, func() error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry() error = %v, want context.Canceled", err)
	}
}
