package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errThrottled = errors.New("throttled")

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDo_FixedDelayThenSuccess(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		FixedDelay: func(err error) (time.Duration, bool) {
			if errors.Is(err, errThrottled) {
				return 12 * time.Second, true
			}
			return 0, false
		},
		Sleep: recordingSleep(&delays),
	}

	calls := 0
	got, err := Do(context.Background(), policy, func(_ context.Context, attempt int) (string, error) {
		calls++
		if attempt == 1 {
			return "", errThrottled
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Fatalf("unexpected result: got=%q calls=%d", got, calls)
	}
	if len(delays) != 1 || delays[0] != 12*time.Second {
		t.Fatalf("unexpected delays: %v", delays)
	}
}

func TestDo_ExhaustedKeepsCause(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 2, Sleep: recordingSleep(&delays)}

	_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
		return 0, errThrottled
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, errThrottled) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if len(delays) != 1 {
		t.Fatalf("unexpected delay count: got=%d want=1", len(delays))
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	permanent := errors.New("bad request")
	policy := RetryPolicy{
		MaxAttempts: 3,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
		Sleep: func(context.Context, time.Duration) error {
			t.Fatalf("sleep must not be called")
			return nil
		},
	}

	calls := 0
	_, err := Do(context.Background(), policy, func(context.Context, int) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) || errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("unexpected call count: got=%d want=1", calls)
	}
}

func TestRetryPolicyDelay_BackoffCapped(t *testing.T) {
	policy := RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	if got := policy.delay(1, errThrottled); got != time.Second {
		t.Fatalf("unexpected first delay: %s", got)
	}
	if got := policy.delay(3, errThrottled); got != 3*time.Second {
		t.Fatalf("unexpected capped delay: %s", got)
	}
}
