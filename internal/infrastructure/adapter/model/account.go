package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents the database model for accounts
type Account struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	Name      string          `gorm:"not null;size:64;uniqueIndex:idx_accounts_name"`
	PinHash   string          `gorm:"not null;size:255"`
	Balance   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0"`
	Version   uint64          `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
