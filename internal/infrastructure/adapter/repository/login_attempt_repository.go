package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// LoginAttemptRepository is a security.LockoutStore backed by the login_attempts table.
// A window of zero keeps failures until Reset; otherwise a count whose last failure
// is older than the window starts over.
type LoginAttemptRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	window          coreport.Duration
	errorClassifier *ErrorClassifier
}

var _ security.LockoutStore = (*LoginAttemptRepository)(nil)

// NewLoginAttemptRepository creates a new LoginAttemptRepository instance
func NewLoginAttemptRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger, window coreport.Duration) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		window:          window,
		errorClassifier: NewErrorClassifier(),
	}
}

// cutoff returns the instant before which a recorded failure no longer counts
func (r *LoginAttemptRepository) cutoff(now time.Time) time.Time {
	if r.window <= 0 {
		return time.Time{}
	}
	return now.Add(-r.window.Std())
}

// Failures returns the current consecutive failure count for name
func (r *LoginAttemptRepository) Failures(ctx context.Context, name string) (int, error) {
	var attempt model.LoginAttempt
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, r.storeError("reading login attempts", err)
	}

	if attempt.LastFailureAt.Before(r.cutoff(r.timeProvider.Now())) {
		return 0, nil
	}
	return attempt.Failures, nil
}

// RecordFailure increments the failure count in a single upsert and returns the new value
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, name string) (int, error) {
	now := r.timeProvider.Now()

	var failures int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO login_attempts (name, failures, last_failure_at, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET failures = CASE
		        WHEN login_attempts.last_failure_at < ? THEN 1
		        ELSE login_attempts.failures + 1
		    END,
		    last_failure_at = EXCLUDED.last_failure_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING failures`,
		name, now, now, now, // INSERT values
		r.cutoff(now), // expired counts start over
	).Scan(&failures).Error
	if err != nil {
		return 0, r.storeError("recording login failure", err)
	}

	r.logger.Debug("Login failure recorded", map[string]any{
		"failures": failures,
	})
	return failures, nil
}

// Reset clears the failure count for name
func (r *LoginAttemptRepository) Reset(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&model.LoginAttempt{}).Error; err != nil {
		return r.storeError("resetting login attempts", err)
	}
	return nil
}

// storeError reports every failure as unavailable so that login fails closed
func (r *LoginAttemptRepository) storeError(operation string, err error) error {
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"error": err.Error(),
		"type":  string(r.errorClassifier.Classify(err)),
	})
	return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
}
