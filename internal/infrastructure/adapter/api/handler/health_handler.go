package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/database"
	"github.com/gin-gonic/gin"
)

// Store is the part of the database manager the readiness probe needs
type Store interface {
	Ping(ctx context.Context) error
	PoolMetrics() (database.ConnectionPoolMetrics, error)
}

// SchemaVersioner reports the applied schema version
type SchemaVersioner interface {
	GetCurrentVersion(ctx context.Context) (string, error)
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	store        Store
	schema       SchemaVersioner
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	probeTimeout coreport.Duration
}

// NewHealthHandler creates a new health handler instance. schema may be nil.
func NewHealthHandler(
	store Store,
	schema SchemaVersioner,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	probeTimeout coreport.Duration,
) *HealthHandler {
	return &HealthHandler{
		store:        store,
		schema:       schema,
		timeProvider: timeProvider,
		logger:       logger,
		probeTimeout: probeTimeout,
	}
}

// Live handles GET /healthz. The process answering is enough.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: dto.StatusOK,
		Time:   h.timeProvider.Now().Format(time.RFC3339),
	})
}

// Ready handles GET /readyz by pinging the database and reporting pool usage
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := h.timeProvider.WithTimeout(c.Request.Context(), h.probeTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Readiness probe failed", map[string]any{
			"error":        err.Error(),
			"operation_id": coreport.OperationID(c.Request.Context()),
		})
		c.JSON(http.StatusServiceUnavailable, dto.ReadinessResponse{
			Status:   dto.StatusUnavailable,
			Database: dto.StatusUnavailable,
			Error:    err.Error(),
		})
		return
	}

	resp := dto.ReadinessResponse{
		Status:   dto.StatusOK,
		Database: dto.StatusOK,
	}

	if metrics, err := h.store.PoolMetrics(); err == nil {
		resp.Pool = &dto.PoolStats{
			OpenConnections:    metrics.OpenConnections,
			IdleConnections:    metrics.IdleConnections,
			InUse:              metrics.InUse,
			MaxOpenConnections: metrics.MaxOpenConnections,
			WaitCount:          metrics.WaitCount,
			WaitDurationMs:     metrics.WaitDuration.Milliseconds(),
			NearlyExhausted:    metrics.NearlyExhausted(),
		}
	} else {
		h.logger.Warn("Could not read connection pool statistics", map[string]any{
			"error": err.Error(),
		})
	}

	if h.schema != nil {
		version, err := h.schema.GetCurrentVersion(ctx)
		if err != nil {
			h.logger.Warn("Could not read schema version", map[string]any{
				"error": err.Error(),
			})
		}
		resp.SchemaVersion = version
	}

	c.JSON(http.StatusOK, resp)
}
