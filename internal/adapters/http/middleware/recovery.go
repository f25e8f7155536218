package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/testimonialhq/widget-service/internal/adapters/http/dto"
	"github.com/testimonialhq/widget-service/internal/platform/logging"
)

// Recovery converts a panic anywhere below it in the chain into a logged
// error and a 500 with the standard error envelope. Apply it first.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return RecoveryWithWriter(logger, nil)
}

// RecoveryWithWriter is Recovery with an optional hook that receives the
// panic value and stack, for tests or custom sinks.
func RecoveryWithWriter(logger *slog.Logger, stackHandler func(err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()

			if stackHandler != nil {
				stackHandler(r, stack)
			}

			// The context logger already carries request_id and
			// correlation_id.
			ctxLogger := logging.FromContext(c.Request.Context())

			var traceID string
			if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
				traceID = span.SpanContext().TraceID().String()
			}

			ctxLogger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			errResp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
			if traceID != "" {
				errResp.TraceID = traceID
			}

			if c.Writer.Written() {
				// Too late for an error body.
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
		}()

		c.Next()
	}
}
