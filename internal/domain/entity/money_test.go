package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{"100.00", "100.00"},
			{"0.01", "0.01"},
			{"0.10", "0.10"},
			{"1", "1.00"},
			{"1.5", "1.50"},
			{" 40 ", "40.00"},
			{"1234567.89", "1234567.89"},
			{"1.230", "1.23"},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				value, err := ParseAmount(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, FormatAmount(value))
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			description string
		}{
			{"", "Empty string"},
			{"   ", "Whitespace only"},
			{"0", "Zero"},
			{"0.00", "Zero with decimals"},
			{"-1.00", "Negative amount"},
			{"1.234", "Too many decimal places"},
			{"abc", "Non-numeric"},
			{"NaN", "Not a number"},
			{"Inf", "Infinity"},
			{"1,000.00", "Comma as thousands separator"},
			{"1.00.00", "Multiple decimal points"},
			{"$100", "Currency symbol"},
			{"1000000000000.01", "Above maximum"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			})
		}
	})
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		value    decimal.Decimal
		expected string
	}{
		{decimal.NewFromInt(100), "100.00"},
		{decimal.RequireFromString("0.01"), "0.01"},
		{decimal.RequireFromString("10.1"), "10.10"},
		{decimal.Zero, "0.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAmount(tc.value))
		})
	}
}
