package database

import (
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"gorm.io/gorm"
)

// exhaustionRatio is the in-use share of the pool above which a warning is logged
const exhaustionRatio = 0.8

// ConnectionPoolMetrics tracks database connection pool metrics
type ConnectionPoolMetrics struct {
	OpenConnections    int           `json:"open_connections"`
	IdleConnections    int           `json:"idle_connections"`
	MaxOpenConnections int           `json:"max_open_connections"`
	InUse              int           `json:"in_use"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
	MaxIdleClosed      int64         `json:"max_idle_closed"`
	MaxLifetimeClosed  int64         `json:"max_lifetime_closed"`
}

// ConnectionPoolMonitor reads connection pool statistics on demand
type ConnectionPoolMonitor struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(db *gorm.DB, logger coreport.Logger) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		db:     db,
		logger: logger,
	}
}

// Collect reads the current pool statistics
func (m *ConnectionPoolMonitor) Collect() (ConnectionPoolMetrics, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return ConnectionPoolMetrics{}, fmt.Errorf("failed to get database connection: %w", err)
	}

	stats := sqlDB.Stats()
	metrics := ConnectionPoolMetrics{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		InUse:              stats.InUse,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}

	if metrics.NearlyExhausted() {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}

	return metrics, nil
}

// NearlyExhausted reports whether more than 80% of the pool is in use
func (p ConnectionPoolMetrics) NearlyExhausted() bool {
	if p.MaxOpenConnections <= 0 {
		return false
	}
	return float64(p.InUse) > float64(p.MaxOpenConnections)*exhaustionRatio
}
