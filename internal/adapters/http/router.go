package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/testimonialhq/widget-service/internal/adapters/http/handlers"
	"github.com/testimonialhq/widget-service/internal/adapters/http/middleware"
	"github.com/testimonialhq/widget-service/internal/platform/config"
	"github.com/testimonialhq/widget-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// WidgetHandler handles widget collection endpoints.
	WidgetHandler *handlers.WidgetHandler

	// EmbedHandler handles embed resolution endpoints.
	EmbedHandler *handlers.EmbedHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (applied per-route or globally)
//
// Route groups:
//   - /-/ (internal): Health endpoints
//   - /api/v1/ (public API): Widget and embed endpoints
//   - /api/twitter-embed: legacy embed alias kept for deployed widgets
//
// The embed endpoints additionally carry permissive CORS headers because the
// widget script calls them from arbitrary origins.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Health endpoints stay outside the timeout so probes never queue
	// behind slow requests.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	if cfg.WidgetHandler != nil {
		cfg.WidgetHandler.RegisterWidgetRoutes(apiV1)
	}

	if cfg.EmbedHandler != nil {
		embeds := apiV1.Group("")
		embeds.Use(middleware.WidgetCORS())
		cfg.EmbedHandler.RegisterEmbedRoutes(embeds)

		// Deployed widget scripts still call the original path.
		legacy := engine.Group("/api")
		legacy.Use(middleware.WidgetCORS())
		legacy.POST("/twitter-embed", cfg.EmbedHandler.GenerateEmbed)
		legacy.OPTIONS("/twitter-embed", func(c *gin.Context) {})
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
