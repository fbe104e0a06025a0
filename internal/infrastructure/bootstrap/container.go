// Package bootstrap wires configuration into the adapters and use cases behind each command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	secport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	sessionport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/usecase/auth"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/cli"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/lockout"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/session"
	timeprovider "github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Container builds collaborators on first use. One container serves one
// CLI invocation; it is not safe for concurrent use.
type Container struct {
	config       *config.Config
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	sessions     *session.FileStore
	hasher       *security.BcryptHasher

	manager *database.Manager
	uow     *database.UnitOfWork
	redis   *redis.Client
}

var _ cli.Services = (*Container)(nil)

// New creates a container. Nothing touches the network until a command asks for it.
func New(cfg *config.Config) (*Container, error) {
	appLogger, err := logger.NewZapLogger(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return NewWithLogger(cfg, appLogger, timeprovider.NewRealTimeProvider()), nil
}

// NewWithLogger creates a container around an existing logger and clock
func NewWithLogger(cfg *config.Config, appLogger coreport.Logger, timeProvider coreport.TimeProvider) *Container {
	return &Container{
		config:       cfg,
		logger:       appLogger,
		timeProvider: timeProvider,
		sessions:     session.NewFileStore(cfg.Session.Path, []byte(cfg.Session.SigningKey), timeProvider),
		hasher:       security.NewBcryptHasher(cfg.Auth.BcryptCost),
	}
}

// Logger returns the application logger
func (c *Container) Logger() coreport.Logger {
	return c.logger
}

// Sessions returns the session file store
func (c *Container) Sessions() sessionport.Store {
	return c.sessions
}

// Accounts returns the registration and balance use case
func (c *Container) Accounts(ctx context.Context) (usecase.AccountUseCase, error) {
	uow, err := c.unitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	return account.NewAccountUseCase(uow, c.hasher, c.sessions, c.timeProvider, c.logger), nil
}

// Auth returns the login use case with the configured lockout backend
func (c *Container) Auth(ctx context.Context) (usecase.AuthUseCase, error) {
	uow, err := c.unitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	store, err := c.lockoutStore()
	if err != nil {
		return nil, err
	}
	return auth.NewAuthUseCase(uow, c.hasher, store, c.sessions, c.timeProvider, c.logger, c.config.Auth.MaxFailedAttempts), nil
}

// Transactions returns the transaction engine
func (c *Container) Transactions(ctx context.Context) (usecase.TransactionUseCase, error) {
	uow, err := c.unitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	return transaction.NewTransactionService(uow, c.sessions, c.timeProvider, c.logger).
		WithRetryConfig(retryConfig(c.config.Transaction)).
		WithQueryTimeout(coreport.Duration(c.config.Database.QueryTimeout)), nil
}

// Migrator returns the schema migration manager
func (c *Container) Migrator(ctx context.Context) (cli.Migrator, error) {
	manager, err := c.database(ctx)
	if err != nil {
		return nil, err
	}
	return manager.MigrationManager(), nil
}

// ProbeServer returns the HTTP server behind `atm serve`
func (c *Container) ProbeServer(ctx context.Context) (cli.Runner, error) {
	manager, err := c.database(ctx)
	if err != nil {
		return nil, err
	}

	if c.config.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	healthHandler := handler.NewHealthHandler(
		manager,
		manager.MigrationManager(),
		c.timeProvider,
		c.logger,
		coreport.Duration(c.config.Database.QueryTimeout),
	)
	router := routes.NewRouter(healthHandler, c.logger, c.timeProvider)

	server := c.config.Server
	return api.NewServer(api.ServerConfig{
		Host:              server.Host,
		Port:              server.Port,
		ReadTimeout:       server.ReadTimeout,
		WriteTimeout:      server.WriteTimeout,
		IdleTimeout:       server.IdleTimeout,
		ReadHeaderTimeout: server.ReadHeaderTimeout,
		ShutdownTimeout:   server.ShutdownTimeout,
	}, router, c.logger), nil
}

// Close releases every connection opened so far and flushes the logger
func (c *Container) Close() error {
	var closeErrs []error
	if c.redis != nil {
		closeErrs = append(closeErrs, c.redis.Close())
		c.redis = nil
	}
	if c.manager != nil {
		closeErrs = append(closeErrs, c.manager.Close())
		c.manager = nil
		c.uow = nil
	}
	closeErrs = append(closeErrs, c.logger.Flush())
	return errors.Join(closeErrs...)
}

func (c *Container) database(ctx context.Context) (*database.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}

	manager := database.NewManager(c.databaseConfig(), c.logger, c.timeProvider)
	if _, err := manager.Connect(ctx); err != nil {
		return nil, err
	}
	c.manager = manager
	return manager, nil
}

// databaseConfig follows the core logger, so --verbose also traces SQL.
// It is read when the database is first used, after flags are parsed.
func (c *Container) databaseConfig() *database.Config {
	dbConfig := database.FromAppConfig(c.config)
	if c.logger.GetLevel() == coreport.LogLevelDebug {
		dbConfig.LogLevel = coreport.LogLevelDebug.String()
	}
	return dbConfig
}

func (c *Container) unitOfWork(ctx context.Context) (*database.UnitOfWork, error) {
	if c.uow != nil {
		return c.uow, nil
	}
	manager, err := c.database(ctx)
	if err != nil {
		return nil, err
	}
	c.uow = manager.CreateUnitOfWork()
	return c.uow, nil
}

// lockoutStore selects where failed login counts live. The memory backend
// forgets counts when the process exits and only suits `serve` and tests.
func (c *Container) lockoutStore() (secport.LockoutStore, error) {
	window := coreport.Duration(c.config.Auth.LockoutDuration)

	switch c.config.Auth.LockoutBackend {
	case config.LockoutBackendMemory:
		return lockout.NewMemoryStore(c.timeProvider, window), nil
	case config.LockoutBackendDatabase, "":
		if c.manager == nil {
			return nil, database.ErrNotConnected
		}
		return repository.NewLoginAttemptRepository(c.manager.DB(), c.timeProvider, c.logger, window), nil
	case config.LockoutBackendRedis:
		if c.redis == nil {
			c.redis = redis.NewClient(&redis.Options{
				Addr:     c.config.Redis.Addr,
				Password: c.config.Redis.Password,
				DB:       c.config.Redis.DB,
			})
		}
		return lockout.NewRedisStore(c.redis, c.config.Redis.KeyPrefix, window), nil
	default:
		return nil, fmt.Errorf("unknown lockout backend %q", c.config.Auth.LockoutBackend)
	}
}

func retryConfig(cfg config.TransactionConfig) transaction.RetryConfig {
	retry := transaction.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	if cfg.RetryIntervalMs > 0 {
		retry.RetryInterval = coreport.Duration(cfg.RetryIntervalMs) * coreport.Millisecond
	}
	if cfg.MaxRetryIntervalMs > 0 {
		retry.MaxInterval = coreport.Duration(cfg.MaxRetryIntervalMs) * coreport.Millisecond
	}
	return retry
}
