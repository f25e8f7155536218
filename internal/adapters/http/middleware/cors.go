package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS header values for the embed endpoints. The widget script runs on
// customer sites, so any origin may call them.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// WidgetCORS returns middleware that adds permissive CORS headers and
// answers OPTIONS preflight requests. Apply it only to routes the widget
// script calls cross-origin; the management API stays same-origin.
func WidgetCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", corsAllowOrigin)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
