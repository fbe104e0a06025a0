package entity

import (
	"context"
	"strings"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) Since(t time.Time) core.Duration { return core.Duration(c.now.Sub(t)) }

func (c fixedClock) Until(t time.Time) core.Duration { return core.Duration(t.Sub(c.now)) }

func (c fixedClock) Sleep(core.Duration) {}

func (c fixedClock) ParseDuration(string) (core.Duration, error) { return 0, nil }

func (c fixedClock) WithTimeout(ctx context.Context, d core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}

func TestNewAccount(t *testing.T) {
	clock := fixedClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("Valid account", func(t *testing.T) {
		account, err := NewAccount("  alice ", "hash", clock)
		require.NoError(t, err)
		assert.Equal(t, "alice", account.Name)
		assert.True(t, account.Balance.IsZero())
		assert.Equal(t, clock.now, account.CreatedAt)
		assert.Equal(t, uint64(0), account.Version)
	})

	t.Run("Empty name", func(t *testing.T) {
		_, err := NewAccount("   ", "hash", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidName)
	})

	t.Run("Name too long", func(t *testing.T) {
		_, err := NewAccount(strings.Repeat("a", MaxNameLength+1), "hash", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidName)
	})

	t.Run("Missing hash", func(t *testing.T) {
		_, err := NewAccount("bob", "", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidPIN)
	})
}

func TestAccountBalanceChanges(t *testing.T) {
	account := &Account{ID: 1, Name: "alice", Balance: decimal.RequireFromString("100.00")}

	assert.Equal(t, "140.00", FormatAmount(account.CreditedBalance(decimal.NewFromInt(40))))

	balance, err := account.DebitedBalance(decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = account.DebitedBalance(decimal.RequireFromString("100.01"))
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "requested 100.01, available 100.00")
}

func TestAccountView(t *testing.T) {
	account := &Account{ID: 5, Name: "carol", PinHash: "secret", Balance: decimal.RequireFromString("10.1")}

	view := account.View()
	assert.Equal(t, uint64(5), view.ID)
	assert.Equal(t, "carol", view.Name)
	assert.Equal(t, "10.10", view.FormattedBalance())
}
