package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository implements persistence.AccountRepository using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func accountToEntity(m *model.Account) *entity.Account {
	return &entity.Account{
		ID:        m.ID,
		Name:      m.Name,
		PinHash:   m.PinHash,
		Balance:   m.Balance,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrAccountNotFound
	}

	mapped := r.errorClassifier.ToDomainError(err)
	fields["error"] = err.Error()
	switch {
	case errors.Is(mapped, errs.ErrConcurrencyConflict), errors.Is(mapped, errs.ErrDuplicateAccount):
		r.logger.Warn(fmt.Sprintf("Database conflict when %s", operation), fields)
	default:
		r.logger.Error(fmt.Sprintf("Database error when %s", operation), fields)
	}
	return mapped
}

// Create inserts a new account and assigns its ID
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		Name:      account.Name,
		PinHash:   account.PinHash,
		Balance:   account.Balance,
		Version:   account.Version,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&accountModel).Error; err != nil {
		return r.handleDatabaseError("creating account", err, map[string]any{"name": account.Name})
	}

	account.ID = accountModel.ID
	r.logger.Debug("Account created", map[string]any{
		"account_id": account.ID,
	})
	return nil
}

// GetByID retrieves an account without locking it
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var accountModel model.Account
	if err := r.db.WithContext(ctx).First(&accountModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting account", err, map[string]any{"account_id": id})
	}
	return accountToEntity(&accountModel), nil
}

// GetByName retrieves an account by its login handle
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*entity.Account, error) {
	var accountModel model.Account
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&accountModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting account by name", err, map[string]any{"name": name})
	}
	return accountToEntity(&accountModel), nil
}

// LockForUpdate takes FOR UPDATE row locks in ascending ID order.
// Postgres acquires the locks in the order rows are returned, so the
// ORDER BY keeps two transfers between the same accounts from deadlocking.
func (r *AccountRepository) LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*entity.Account, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var accountModels []model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&accountModels).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking accounts", err, map[string]any{"account_ids": sorted})
	}

	locked := make(map[uint64]*entity.Account, len(accountModels))
	for i := range accountModels {
		locked[accountModels[i].ID] = accountToEntity(&accountModels[i])
	}

	r.logger.Debug("Accounts locked", map[string]any{
		"requested": sorted,
		"found":     len(locked),
	})
	return locked, nil
}

// UpdateBalance writes balance only if the row still carries expectedVersion
func (r *AccountRepository) UpdateBalance(ctx context.Context, id uint64, expectedVersion uint64, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"balance":    balance,
			"version":    gorm.Expr("version + 1"),
			"updated_at": r.timeProvider.Now(),
		})

	if result.Error != nil {
		return r.handleDatabaseError("updating balance", result.Error, map[string]any{
			"account_id": id,
			"version":    expectedVersion,
		})
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Balance update lost a version race", map[string]any{
			"account_id": id,
			"version":    expectedVersion,
		})
		return fmt.Errorf("%w: account %d is no longer at version %d", errs.ErrConcurrencyConflict, id, expectedVersion)
	}

	return nil
}
