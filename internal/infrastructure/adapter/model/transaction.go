package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the database model for the transaction log
type Transaction struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	AccountID uint64          `gorm:"not null;index:idx_transactions_account_id"`
	Type      string          `gorm:"not null;size:20;check:chk_transactions_type,type IN ('deposit','withdraw','transfer_out','transfer_in')"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null;check:chk_transactions_amount_positive,amount > 0"`
	TargetID  *uint64
	CreatedAt time.Time `gorm:"not null"`

	// Define relationships
	Account Account  `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:RESTRICT"`
	Target  *Account `gorm:"foreignKey:TargetID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
