package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// MaxNameLength is the longest login handle accepted at registration
const MaxNameLength = 64

// Account represents a bank account protected by a PIN
type Account struct {
	ID        uint64          // Assigned by the store at creation, immutable
	Name      string          // Login handle
	PinHash   string          // Salted one-way hash of the PIN
	Balance   decimal.Decimal // Never negative
	Version   uint64          // Incremented on every balance write
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountView is the public projection of an account
type AccountView struct {
	ID      uint64
	Name    string
	Balance decimal.Decimal
}

// FormattedBalance returns the balance with 2 decimal places
func (v AccountView) FormattedBalance() string {
	return FormatAmount(v.Balance)
}

// NewAccount creates a new account with a zero balance
func NewAccount(name, pinHash string, timeProvider coreport.TimeProvider) (*Account, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if pinHash == "" {
		return nil, fmt.Errorf("%w: missing PIN hash", errs.ErrInvalidPIN)
	}

	now := timeProvider.Now()
	return &Account{
		Name:      normalized,
		PinHash:   pinHash,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeName trims the login handle and validates its length
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", errs.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", errs.ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// View returns the public projection of the account
func (a *Account) View() AccountView {
	return AccountView{
		ID:      a.ID,
		Name:    a.Name,
		Balance: a.Balance,
	}
}

// FormattedBalance returns the balance with 2 decimal places
func (a *Account) FormattedBalance() string {
	return FormatAmount(a.Balance)
}

// CanWithdraw checks if the account has enough balance for a debit
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// CreditedBalance returns the balance after adding amount
func (a *Account) CreditedBalance(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// DebitedBalance returns the balance after subtracting amount.
// Returns an InsufficientFundsError if the result would be negative.
func (a *Account) DebitedBalance(amount decimal.Decimal) (decimal.Decimal, error) {
	if !a.CanWithdraw(amount) {
		return decimal.Zero, errs.NewInsufficientFundsError(a.ID, FormatAmount(amount), a.FormattedBalance())
	}
	return a.Balance.Sub(amount), nil
}
