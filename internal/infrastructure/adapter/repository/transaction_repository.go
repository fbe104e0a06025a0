package repository

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		AccountID: transaction.AccountID,
		Type:      string(transaction.Type),
		Amount:    transaction.Amount,
		TargetID:  transaction.TargetID,
		CreatedAt: transaction.CreatedAt,
	}
}

// Create appends a row to the transaction log and fills in its ID and CreatedAt
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := r.entityToModel(transaction)

	// The referenced accounts are already locked by the caller, never upsert them
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(&transactionModel)
	if result.Error != nil {
		mapped := r.errorClassifier.ToDomainError(result.Error)
		fields := map[string]any{
			"account_id": transaction.AccountID,
			"type":       string(transaction.Type),
			"error":      result.Error.Error(),
		}
		if errors.Is(mapped, errs.ErrConcurrencyConflict) {
			r.logger.Warn("Conflict creating transaction", fields)
		} else {
			r.logger.Error("Failed to create transaction", fields)
		}
		return mapped
	}

	transaction.ID = transactionModel.ID
	transaction.CreatedAt = transactionModel.CreatedAt

	r.logger.Debug("Transaction row created", map[string]any{
		"transaction_id": transaction.ID,
		"account_id":     transaction.AccountID,
		"type":           string(transaction.Type),
	})
	return nil
}
