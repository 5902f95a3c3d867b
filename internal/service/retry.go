package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/metrics"
)

const DefaultMaxAttempts = 3

// retryStale runs fn until it returns something other than ErrStaleState or
// the attempt budget is spent, in which case ErrConflict is returned.
func retryStale(ctx context.Context, op string, attempts int, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(attempt)
		if !errors.Is(err, ErrStaleState) {
			return err
		}
		metrics.StaleRetriesTotal.WithLabelValues(op).Inc()
		logging.FromContext(ctx).Debug().
			Str("operation", op).
			Int("attempt", attempt).
			Msg("conditional write lost a race")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w: %v", op, ErrRepositoryUnavailable, ctxErr)
		}
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, attempts, ErrConflict)
}
