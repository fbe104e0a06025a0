package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"", LogLevelInfo},
		{"warning", LogLevelWarn},
		{" error ", LogLevelError},
	}

	for _, tc := range testCases {
		level, err := ParseLogLevel(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, level)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, "warn", LogLevelWarn.String())
}

func TestOperationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, OperationID(ctx))

	ctx = WithOperationID(ctx, "op-1")
	assert.Equal(t, "op-1", OperationID(ctx))
}

func TestDurationStd(t *testing.T) {
	d := Second + 500*Millisecond
	assert.Equal(t, 1500*time.Millisecond, d.Std())
	assert.Equal(t, "1.5s", d.String())
	assert.Equal(t, int64(1500), d.Milliseconds())
}
