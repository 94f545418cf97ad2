// internal/interfaces/http/middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

const (
	contextRequestID = "request_id"
	headerRequestID  = "X-Request-ID"
)

// RequestID tags every request with an id, reusing the caller's when given
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = identifier.NewUUID()
		}

		c.Set(contextRequestID, requestID)
		c.Header(headerRequestID, requestID)
		c.Next()
	}
}
