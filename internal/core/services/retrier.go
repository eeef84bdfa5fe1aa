package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/platform/logging"
	"github.com/corefin/ledgercore/internal/platform/metrics"
)

// retrier re-runs balance writes that lost an optimistic-concurrency race,
// with exponential backoff and a fixed attempt bound. Only
// apperrors.ErrOptimisticLock is retryable; everything else is permanent.
type retrier struct {
	maxRetries      int
	initialInterval time.Duration
	metrics         *metrics.Metrics
}

func newRetrier(policy PostingPolicy, m *metrics.Metrics) *retrier {
	return &retrier{
		maxRetries:      policy.MaxPostingRetries,
		initialInterval: policy.RetryInitialBackoff,
		metrics:         m,
	}
}

// Retry executes the operation, retrying bounded times on lock conflicts.
// The operation must re-read its inputs on every attempt.
func (r *retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxElapsedTime = 0 // Bounded by attempt count, not wall time

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(fmt.Errorf("%w after %d attempts: %w", apperrors.ErrTooManyConflicts, retryCount, err))
		}

		if r.metrics != nil {
			r.metrics.PostingRetries.Inc()
		}
		logging.FromContext(ctx).Warn("optimistic lock conflict, retrying balance update",
			"retry", retryCount,
		)
		return err
	}, backoff.WithContext(b, ctx))

	return err
}
