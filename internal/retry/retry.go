// Package retry implements the bounded fixed-delay retry policy applied to
// transient network operations.
package retry

import (
	"context"
	"fmt"
	"time"

	"coursarr/internal/domain/errs"
	"coursarr/internal/models"
	"coursarr/internal/utils/logging"
)

// Policy computes attempt counts and delays for transient operations.
type Policy struct {
	// Attempts is the number of retries after the first attempt.
	Attempts int
	Delay    time.Duration
}

// NewPolicy builds a policy from settings.
func NewPolicy(s *models.Settings) Policy {
	attempts := s.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}
	return Policy{
		Attempts: attempts,
		Delay:    s.RetryDelay(),
	}
}

// Run executes fn up to Attempts+1 times with a fixed delay between
// attempts. Permanent errors and context cancellation stop immediately.
func (p Policy) Run(ctx context.Context, description string, fn func() error) error {
	total := p.Attempts + 1

	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				logging.S(0, "%s succeeded on attempt %d/%d", description, attempt, total)
			}
			return nil
		}
		lastErr = err

		if errs.Permanent(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < total {
			logging.W("%s failed (attempt %d/%d), retrying in %v: %v",
				description, attempt, total, p.Delay, err)

			if p.Delay > 0 {
				select {
				case <-time.After(p.Delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}

	logging.E("%s failed after %d attempts: %v", description, total, lastErr)
	return fmt.Errorf("%s failed after %d attempts: %w", description, total, lastErr)
}
