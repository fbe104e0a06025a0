package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

// activeTx is the transaction stored in a unit of work context
type activeTx struct {
	db       *gorm.DB
	finished bool
}

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db             *gorm.DB
	logger         coreport.Logger
	timeProvider   coreport.TimeProvider
	classifier     *repository.ErrorClassifier
	isolationLevel string
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a new UnitOfWork instance.
// isolationLevel must be one of the Isolation* constants.
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider, isolationLevel string) *UnitOfWork {
	if isolationLevel == "" {
		isolationLevel = IsolationReadCommitted
	}
	return &UnitOfWork{
		db:             db,
		logger:         logger,
		timeProvider:   timeProvider,
		classifier:     repository.NewErrorClassifier(),
		isolationLevel: isolationLevel,
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.logger.Debug("Beginning database transaction", map[string]any{
		"isolation_level": u.isolationLevel,
	})

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("failed to begin transaction: %w", u.classifier.ToDomainError(tx.Error))
	}

	// isolationLevel is validated against a fixed set, never user input
	if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL " + u.isolationLevel).Error; err != nil {
		tx.Rollback()
		u.logger.Error("Failed to set transaction isolation level", map[string]any{"error": err.Error()})
		return ctx, fmt.Errorf("failed to set transaction isolation level: %w", u.classifier.ToDomainError(err))
	}

	return context.WithValue(ctx, txKey, &activeTx{db: tx}), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*activeTx)
	if !ok || tx == nil {
		return errors.New("no transaction found in context")
	}
	if tx.finished {
		return errors.New("transaction already finished")
	}

	u.logger.Debug("Committing database transaction", nil)
	err := tx.db.Commit().Error
	tx.finished = true
	if err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to commit transaction: %w", u.classifier.ToDomainError(err))
	}

	return nil
}

// Rollback rolls back the current transaction. It is a no-op once the
// transaction has been committed or rolled back.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*activeTx)
	if !ok || tx == nil {
		return errors.New("no transaction found in context")
	}
	if tx.finished {
		return nil
	}

	u.logger.Debug("Rolling back database transaction", nil)
	err := tx.db.Rollback().Error
	tx.finished = true

	if err != nil && errors.Is(err, sql.ErrTxDone) {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}

	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// GetAccountRepository returns an account repository in the current transaction
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return repository.NewAccountRepository(u.getDbFromContext(ctx), u.timeProvider, u.logger)
}

// GetTransactionRepository returns a transaction repository in the current transaction
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*activeTx)
	if ok && tx != nil && !tx.finished {
		return tx.db.WithContext(ctx)
	}
	return u.db.WithContext(ctx)
}
