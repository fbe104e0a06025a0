package middleware

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers from panics and returns appropriate error responses
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":        err,
					"path":         c.Request.URL.Path,
					"method":       c.Request.Method,
					"client_ip":    c.ClientIP(),
					"operation_id": coreport.OperationID(c.Request.Context()),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:        domainerr.ErrorCode(domainerr.ErrInternal),
					Message:     "Internal server error",
					OperationID: coreport.OperationID(c.Request.Context()),
				})
			}
		}()

		c.Next()
	}
}
