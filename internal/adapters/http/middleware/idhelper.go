package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// trackingID builds middleware that reads an identifier from the given
// header, minting a UUID when absent, then mirrors it to the response header,
// the gin context, and the request context via enrich. Shared by the request
// ID and correlation ID middleware.
func trackingID(header, ctxKey string, enrich func(ctx context.Context, id string) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(ctxKey, id)
		c.Header(header, id)

		if enrich != nil {
			c.Request = c.Request.WithContext(enrich(c.Request.Context(), id))
		}

		c.Next()
	}
}

// getIDFromContext reads a string ID out of the gin context.
func getIDFromContext(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}
