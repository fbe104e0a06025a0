package middleware

import (
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the operation id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID attaches an operation id to the request context, reusing the
// caller's X-Request-ID when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(coreport.WithOperationID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
