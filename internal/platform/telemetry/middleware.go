package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/testimonialhq/widget-service/telemetry"

// Metrics are the server-side HTTP instruments recorded per request.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics registers the HTTP server instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}

	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.requestTotal, err = meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.activeRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// track increments the active-request gauge and returns a func that records
// the completed request once the handler chain has run.
func (m *Metrics) track(c *gin.Context) func() {
	ctx := c.Request.Context()
	start := time.Now()

	routeAttrs := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", c.FullPath()),
	}

	m.activeRequests.Add(ctx, 1, metric.WithAttributes(routeAttrs...))

	return func() {
		m.activeRequests.Add(ctx, -1, metric.WithAttributes(routeAttrs...))

		attrs := append(routeAttrs, attribute.Int("http.status_code", c.Writer.Status()))
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
		m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// Middleware records request metrics and exposes the trace ID via the
// X-Trace-ID response header. Instrument registration failures are reported
// to the otel error handler and the middleware degrades to tracing only.
func Middleware(serviceName string) gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if metrics != nil {
			defer metrics.track(c)()
		}

		c.Next()

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
			c.Header("X-Trace-ID", span.SpanContext().TraceID().String())
		}
	}
}

// TracingMiddleware is the plain otelgin tracing middleware, without the
// custom instruments.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
