package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_NilContext(t *testing.T) {
	logger := FromContext(nil) //nolint:staticcheck // testing nil handling
	assert.NotNil(t, logger)
}

func TestFromContext_NoLogger(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := WithContext(context.Background(), custom)

	assert.Equal(t, custom, FromContext(ctx))
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithContext(context.Background(), base)

	ctx = WithRequestID(ctx, "req-123")
	FromContext(ctx).Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-123", record["request_id"])
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithContext(context.Background(), base)

	ctx = WithCorrelationID(ctx, "corr-456")
	FromContext(ctx).Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "corr-456", record["correlation_id"])
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:   "info",
		Format:  "json",
		Service: "widget-service",
		Version: "1.0.0",
	}, &buf)

	logger.Info("json message", slog.String("key", "value"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "json message", record["msg"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "widget-service", record["service_name"])
	assert.Equal(t, "1.0.0", record["service_version"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:  "info",
		Format: "text",
	}, &buf)

	logger.Info("text message")

	assert.Contains(t, buf.String(), "text message")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestNewWithWriter_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:  "info",
		Format: "pretty",
	}, &buf)

	logger.Info("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:  "warn",
		Format: "json",
	}, &buf)

	logger.Info("filtered")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_TraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:  "trace",
		Format: "json",
	}, &buf)

	logger.Log(context.Background(), LevelTrace, "wire detail")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "TRACE", record["level"])
	assert.Equal(t, "wire detail", record["msg"])
}

func TestNewWithWriter_WithFileConfig(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	var buf bytes.Buffer
	logger := NewWithWriter(Config{
		Level:   "info",
		Format:  "text",
		Service: "widget-service",
		Version: "1.0.0",
		File: FileConfig{
			Enabled:    true,
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}, &buf)

	logger.Info("goes to both sinks")

	assert.Contains(t, buf.String(), "goes to both sinks")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "goes to both sinks")
	assert.Contains(t, string(content), `"msg"`, "file output is JSON")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestMultiHandler_Handle(t *testing.T) {
	var first, second bytes.Buffer

	handler := NewMultiHandler(
		slog.NewJSONHandler(&first, nil),
		slog.NewTextHandler(&second, nil),
	)
	logger := slog.New(handler)

	logger.Info("fan out")

	assert.Contains(t, first.String(), "fan out")
	assert.Contains(t, second.String(), "fan out")
}

func TestMultiHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer

	handler := NewMultiHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewMultiHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("widget_id", "w-1")}))

	logger.Info("attr propagation")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "w-1", record["widget_id"])
}

func TestRedaction_SensitiveFieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.Info("login attempt",
		slog.String("password", "hunter2"),
		slog.String("api_key", "sk-12345"),
		slog.String("username", "alice"),
	)

	output := buf.String()
	assert.NotContains(t, output, "hunter2")
	assert.NotContains(t, output, "sk-12345")
	assert.Contains(t, output, "alice")
}

func TestRedaction_BearerToken(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.Info("outbound request", slog.String("header", "Bearer abc.def.ghi"))

	assert.NotContains(t, buf.String(), "abc.def.ghi")
}
