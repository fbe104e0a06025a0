package transaction

import (
	"context"
	"math/rand/v2"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
)

// RetryConfig holds configuration for retrying conflicting units of work
type RetryConfig struct {
	MaxRetries    int
	RetryInterval coreport.Duration
	MaxInterval   coreport.Duration
	JitterFactor  float64 // Fraction of the backoff added at random (0.0-1.0)
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		RetryInterval: 50 * coreport.Millisecond,
		MaxInterval:   coreport.Second,
		JitterFactor:  0.2,
	}
}

// retryOnConflict runs operation until it succeeds, fails with something
// other than ErrConcurrencyConflict, or MaxRetries retries have been used
func (s *Service) retryOnConflict(ctx context.Context, name string, operation func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = operation(ctx)
		if err == nil || !errs.IsConcurrencyConflict(err) {
			return err
		}
		if attempt >= s.retry.MaxRetries {
			break
		}

		backoff := calculateBackoffWithJitter(attempt, s.retry)
		s.logger.Warn("Concurrent update detected, retrying", map[string]any{
			"operation":    name,
			"attempt":      attempt + 1,
			"max_retries":  s.retry.MaxRetries,
			"retry_after":  backoff.String(),
			"operation_id": coreport.OperationID(ctx),
		})

		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifyContextError(ctx, ctxErr)
		}
		s.timeProvider.Sleep(backoff)
	}

	s.logger.Error("All retry attempts failed", map[string]any{
		"operation":   name,
		"max_retries": s.retry.MaxRetries,
		"error":       err.Error(),
	})
	return err
}

// calculateBackoffWithJitter computes the backoff duration with exponential increase and jitter
func calculateBackoffWithJitter(attempt int, cfg RetryConfig) coreport.Duration {
	backoff := cfg.RetryInterval * (1 << uint(attempt))
	if cfg.MaxInterval > 0 && backoff > cfg.MaxInterval {
		backoff = cfg.MaxInterval
	}

	if cfg.JitterFactor > 0 {
		backoff += coreport.Duration(float64(backoff) * cfg.JitterFactor * rand.Float64())
	}
	return backoff
}
