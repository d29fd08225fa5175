package retry_test

import (
	"context"
	"errors"
	"testing"

	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/retry"
)

// TestRunSucceedsAfterTransientFailures checks transient errors retry up to
// the attempt budget.
func TestRunSucceedsAfterTransientFailures(t *testing.T) {
	policy := retry.Policy{Attempts: 3}

	calls := 0
	err := policy.Run(context.Background(), "test op", func() error {
		calls++
		if calls < 3 {
			return errs.Network("fetch", errors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

// TestRunExhaustsAttempts checks the final wrapped error after exhaustion.
func TestRunExhaustsAttempts(t *testing.T) {
	policy := retry.Policy{Attempts: 2}

	calls := 0
	boom := errors.New("boom")
	err := policy.Run(context.Background(), "test op", func() error {
		calls++
		return boom
	})
	if err == nil {
		t.Fatalf("expected error after exhaustion")
	}
	// Attempts counts retries after the first attempt.
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped original error, got: %v", err)
	}
}

// TestRunPermanentErrorsShortCircuit checks that the taxonomy's permanent
// errors never retry.
func TestRunPermanentErrorsShortCircuit(t *testing.T) {
	policy := retry.Policy{Attempts: 5}

	for _, sentinel := range []error{
		errs.ErrConfiguration,
		errs.ErrAuthExpired,
		errs.ErrNoKeysAvailable,
		errs.ErrLicenseRejected,
	} {
		calls := 0
		err := policy.Run(context.Background(), "test op", func() error {
			calls++
			return sentinel
		})
		if calls != 1 {
			t.Fatalf("%v: expected 1 call, got %d", sentinel, calls)
		}
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected %v returned unwrapped, got: %v", sentinel, err)
		}
	}
}

// TestRunContextCancellation checks cancellation stops the loop immediately.
func TestRunContextCancellation(t *testing.T) {
	policy := retry.NewPolicy(&models.Settings{RetryAttempts: 5, RetryDelaySeconds: 60})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Run(ctx, "test op", func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retry after cancellation, got %d calls", calls)
	}
}

// TestNewPolicyClampsNegativeAttempts checks config normalization.
func TestNewPolicyClampsNegativeAttempts(t *testing.T) {
	policy := retry.NewPolicy(&models.Settings{RetryAttempts: -4})
	if policy.Attempts != 0 {
		t.Fatalf("expected attempts clamped to 0, got %d", policy.Attempts)
	}
}
