package migration

import (
	"context"
	"fmt"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"gorm.io/gorm"
)

// IndexManager manages PostgreSQL-specific indexes and storage settings
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

var indexStatements = []struct {
	name string
	sql  string
}{
	{
		// Replaying one account's history in insertion order
		name: "idx_transactions_account_history",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_account_history ON transactions (account_id, id)`,
	},
	{
		name: "idx_transactions_target_id",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_target_id ON transactions (target_id) WHERE target_id IS NOT NULL`,
	},
	{
		name: "idx_transactions_created_at_brin",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin ON transactions USING BRIN (created_at) WITH (pages_per_range = 32)`,
	},
}

// CreateIndexes creates the indexes AutoMigrate cannot express
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	for _, stmt := range indexStatements {
		if err := m.db.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": stmt.name,
				"error": err.Error(),
			})
			return fmt.Errorf("failed to create index %s: %w", stmt.name, err)
		}
	}

	m.logger.Debug("Indexes created", map[string]any{"count": len(indexStatements)})
	return nil
}

// ApplyStorageTweaks sets table storage parameters. Failures are logged and ignored.
func (m *IndexManager) ApplyStorageTweaks(ctx context.Context) {
	// Leaves room for HOT updates of balance and version
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE accounts SET (fillfactor = 80)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for accounts table", map[string]any{
			"error": err.Error(),
		})
	}
}
