package logger

import (
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
)

// NoopLogger implements the Logger interface but discards everything.
// Used when logging is disabled and in tests that do not assert on logs.
type NoopLogger struct {
	level core.LogLevel
}

var _ core.Logger = (*NoopLogger)(nil)

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{
		level: core.LogLevelError,
	}
}

// SetLevel sets the minimum log level to output
func (l *NoopLogger) SetLevel(level core.LogLevel) {
	l.level = level
}

// GetLevel gets the current log level
func (l *NoopLogger) GetLevel() core.LogLevel {
	return l.level
}

func (l *NoopLogger) Debug(message string, fields map[string]any) {}

func (l *NoopLogger) Info(message string, fields map[string]any) {}

func (l *NoopLogger) Warn(message string, fields map[string]any) {}

func (l *NoopLogger) Error(message string, fields map[string]any) {}

// Flush has nothing to write
func (l *NoopLogger) Flush() error {
	return nil
}
