package middleware

import (
	"log"
	"time"

	"github.com/abpira/accounts/internal/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware assigns a request ID (reusing the caller's when present)
// and logs one line per request once the handler chain has finished.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		log.Printf("request_id=%s method=%s path=%s status=%d latency=%s client=%s",
			requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start), c.ClientIP())
	}
}

// GetRequestID returns the ID assigned by LoggingMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString("requestId")
}

// AuditorMiddleware records auditor on the request context so the store can
// stamp created_by/updated_by.
func AuditorMiddleware(auditor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(audit.WithAuditor(c.Request.Context(), auditor))
		c.Next()
	}
}
