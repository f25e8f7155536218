package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/testimonialhq/widget-service/internal/platform/logging"
)

const (
	// HeaderCorrelationID tracks a business transaction across services,
	// unlike the per-request X-Request-ID.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates an upstream X-Correlation-ID or mints one when
// this service is the transaction origin, echoing it on the response and
// threading it into both the context logger and the raw context.
func CorrelationID() gin.HandlerFunc {
	return trackingID(HeaderCorrelationID, ContextKeyCorrelationID, func(ctx context.Context, id string) context.Context {
		return ContextWithCorrelationID(logging.WithCorrelationID(ctx, id), id)
	})
}

// GetCorrelationID reads the correlation ID from the gin context, or "".
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// MustGetCorrelationID is GetCorrelationID with an "unknown" fallback.
func MustGetCorrelationID(c *gin.Context) string {
	if id := GetCorrelationID(c); id != "" {
		return id
	}

	return "unknown"
}
