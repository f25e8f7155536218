package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/testimonialhq/widget-service/internal/platform/logging"
)

const (
	// HeaderRequestID identifies a single request.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID accepts an X-Request-ID header or mints a UUID, echoes it on the
// response, and threads it into both the context logger and the raw context,
// where client adapters pick it up for downstream propagation.
func RequestID() gin.HandlerFunc {
	return trackingID(HeaderRequestID, ContextKeyRequestID, func(ctx context.Context, id string) context.Context {
		return ContextWithRequestID(logging.WithRequestID(ctx, id), id)
	})
}

// GetRequestID reads the request ID from the gin context, or "".
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}

// MustGetRequestID is GetRequestID with an "unknown" fallback for use in log
// fields that should never be empty.
func MustGetRequestID(c *gin.Context) string {
	if id := GetRequestID(c); id != "" {
		return id
	}

	return "unknown"
}
