package routes

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the probe endpoints
func SetupRoutes(router *gin.Engine, healthHandler *handler.HealthHandler) {
	router.GET("/healthz", healthHandler.Live)
	router.GET("/readyz", healthHandler.Ready)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:        http.StatusNotFound,
			Message:     "not found",
			OperationID: coreport.OperationID(c.Request.Context()),
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{
			Code:        http.StatusMethodNotAllowed,
			Message:     "method not allowed",
			OperationID: coreport.OperationID(c.Request.Context()),
		})
	})
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
}

// NewRouter builds a gin engine with middlewares and routes installed
func NewRouter(healthHandler *handler.HealthHandler, logger coreport.Logger, timeProvider coreport.TimeProvider) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	SetupMiddlewares(router, logger, timeProvider)
	SetupRoutes(router, healthHandler)
	return router
}
