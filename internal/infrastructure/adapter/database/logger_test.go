package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/model"
	mockcore "github.com/amirhossein-jamali/atm-cli/mocks/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestExtractQueryType(t *testing.T) {
	assert.Equal(t, "SELECT", extractQueryType(`  select * from "accounts"`))
	assert.Equal(t, "INSERT", extractQueryType(`INSERT INTO "transactions" ("account_id") VALUES (1)`))
	assert.Equal(t, "UPDATE", extractQueryType(`UPDATE "accounts" SET "balance"=1`))
	assert.Equal(t, "DELETE", extractQueryType(`DELETE FROM "login_attempts"`))
	assert.Equal(t, "", extractQueryType(`SET TRANSACTION ISOLATION LEVEL serializable`))
}

func TestExtractTableName(t *testing.T) {
	assert.Equal(t, "accounts", extractTableName(`SELECT * FROM "accounts" WHERE id IN (1,2) FOR UPDATE`))
	assert.Equal(t, "transactions", extractTableName(`INSERT INTO "transactions" ("account_id","type") VALUES (1,'deposit')`))
	assert.Equal(t, "accounts", extractTableName(`UPDATE "accounts" SET "balance"=10 WHERE id = 1`))
	assert.Equal(t, "", extractTableName(`BEGIN`))
}

func TestDatabaseLogger_Trace(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := coreport.WithOperationID(context.Background(), "op-42")
	query := func() (string, int64) { return `SELECT * FROM "accounts"`, 1 }

	t.Run("Errors are logged with the operation id", func(t *testing.T) {
		log := mockcore.NewMockLogger(t)
		clock := mockcore.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(coreport.Millisecond)
		log.On("Error", "SQL Error", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["operation_id"] == "op-42" && fields["table"] == "accounts" && fields["error"] == "boom"
		})).Once()

		l := NewDatabaseLogger(log, clock, "warn", 200*time.Millisecond)
		l.Trace(ctx, begin, query, errors.New("boom"))
	})

	t.Run("Record not found is not an error", func(t *testing.T) {
		log := mockcore.NewMockLogger(t)
		clock := mockcore.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(coreport.Millisecond)

		l := NewDatabaseLogger(log, clock, "warn", 200*time.Millisecond)
		l.Trace(ctx, begin, query, gorm.ErrRecordNotFound)
	})

	t.Run("Slow queries are warnings", func(t *testing.T) {
		log := mockcore.NewMockLogger(t)
		clock := mockcore.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(coreport.Second)
		log.On("Warn", "Slow SQL Query", mock.Anything).Once()

		l := NewDatabaseLogger(log, clock, "warn", 200*time.Millisecond)
		l.Trace(ctx, begin, query, nil)
	})

	t.Run("Regular queries go to debug", func(t *testing.T) {
		log := mockcore.NewMockLogger(t)
		clock := mockcore.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(coreport.Millisecond)
		log.On("Debug", "SQL Query", mock.Anything).Once()

		l := NewDatabaseLogger(log, clock, "debug", 200*time.Millisecond)
		l.Trace(ctx, begin, query, nil)
	})

	t.Run("Silent logs nothing", func(t *testing.T) {
		log := mockcore.NewMockLogger(t)
		clock := mockcore.NewMockTimeProvider(t)

		l := NewDatabaseLogger(log, clock, "debug", 0).LogMode(logger.Silent)
		l.Trace(ctx, begin, query, errors.New("boom"))
	})
}

func TestDatabaseLogger_OmitsBoundValues(t *testing.T) {
	const pinHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

	var logged []string
	log := mockcore.NewMockLogger(t)
	log.On("Debug", "SQL Query", mock.Anything).Run(func(args mock.Arguments) {
		fields := args.Get(1).(map[string]any)
		logged = append(logged, fields["sql"].(string))
	})
	clock := mockcore.NewMockTimeProvider(t)
	clock.On("Since", mock.Anything).Return(coreport.Millisecond)
	clock.On("Now").Return(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Maybe()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=atm_dry_run"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               NewDatabaseLogger(log, clock, "debug", 0),
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stmt := db.Session(&gorm.Session{DryRun: true}).Create(&model.Account{
		Name:      "alice",
		PinHash:   pinHash,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}).Statement
	require.Contains(t, stmt.Vars, pinHash)

	require.NotEmpty(t, logged)
	for _, sql := range logged {
		assert.NotContains(t, sql, pinHash)
		assert.NotContains(t, sql, "alice")
		assert.Contains(t, sql, "$1")
	}
}
