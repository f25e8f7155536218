//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testimonialhq/widget-service/internal/adapters/clients"
	"github.com/testimonialhq/widget-service/internal/adapters/clients/oembed"
	httpadapter "github.com/testimonialhq/widget-service/internal/adapters/http"
	"github.com/testimonialhq/widget-service/internal/adapters/http/handlers"
	"github.com/testimonialhq/widget-service/internal/adapters/store/memstore"
	"github.com/testimonialhq/widget-service/internal/app"
	"github.com/testimonialhq/widget-service/internal/platform/config"
	"github.com/testimonialhq/widget-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAPIStack composes the full HTTP stack: router, middleware, handlers,
// in-memory widget storage, and a real oEmbed client pointed at upstream.
func newAPIStack(t *testing.T, upstream string) *gin.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memstore.New()

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     upstream,
		ServiceName: "twitter-oembed",
		UserAgent:   "Mozilla/5.0 (compatible; TestimonialGenerator/1.0)",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   100,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
		Logger: logger,
	})
	require.NoError(t, err)

	embedClient := oembed.NewClient(oembed.ClientConfig{
		Client: httpClient,
		Logger: logger,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	widgetService := app.NewWidgetService(app.WidgetServiceConfig{
		Repository: store,
		Logger:     logger,
	})
	testimonialService := app.NewTestimonialService(app.TestimonialServiceConfig{
		EmbedProvider: embedClient,
		Logger:        logger,
	})

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		AppConfig:     &config.AppConfig{Name: "widget-service", Environment: "test", Version: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.BuildInfo{Version: "test"}),
		WidgetHandler: handlers.NewWidgetHandler(widgetService),
		EmbedHandler:  handlers.NewEmbedHandler(embedClient, testimonialService),
		Timeout:       10 * time.Second,
	})

	return engine
}

// newOembedUpstream fakes the provider's oEmbed endpoint.
func newOembedUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oembed" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		postURL := r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"url":%q,"author_name":"alice","html":"<blockquote class=\"twitter-tweet\">embedded</blockquote>","type":"rich"}`, postURL)
	}))
}

func request(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	engine.ServeHTTP(w, req)

	return w
}

// TestAPI_WidgetLifecycle walks a widget through create, testimonial
// management, and delete via the public API.
func TestAPI_WidgetLifecycle(t *testing.T) {
	upstream := newOembedUpstream(t)
	defer upstream.Close()

	engine := newAPIStack(t, upstream.URL)

	// Create
	w := request(engine, http.MethodPost, "/api/v1/widgets", `{"name":"Launch page"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var widget struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Testimonials []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Content string `json:"content"`
		} `json:"testimonials"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&widget))
	require.NotEmpty(t, widget.ID)

	// Add two testimonials; the second must end up first.
	w = request(engine, http.MethodPost, "/api/v1/widgets/"+widget.ID+"/testimonials",
		`{"name":"Alice","content":"Love it","rating":5}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(engine, http.MethodPost, "/api/v1/widgets/"+widget.ID+"/testimonials",
		`{"name":"Bob","content":"Solid","rating":4}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, json.NewDecoder(w.Body).Decode(&widget))
	require.Len(t, widget.Testimonials, 2)
	assert.Equal(t, "Bob", widget.Testimonials[0].Name)

	// Remove one
	w = request(engine, http.MethodDelete,
		"/api/v1/widgets/"+widget.ID+"/testimonials/"+widget.Testimonials[0].ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Delete the widget
	w = request(engine, http.MethodDelete, "/api/v1/widgets/"+widget.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = request(engine, http.MethodGet, "/api/v1/widgets/"+widget.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestAPI_GenerateTestimonial exercises the oEmbed path end to end through
// the resilient HTTP client.
func TestAPI_GenerateTestimonial(t *testing.T) {
	upstream := newOembedUpstream(t)
	defer upstream.Close()

	engine := newAPIStack(t, upstream.URL)

	w := request(engine, http.MethodPost, "/api/v1/testimonials/generate",
		`{"url":"https://twitter.com/alice/status/12345"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var testimonial struct {
		Name    string `json:"name"`
		Handle  string `json:"handle"`
		Title   string `json:"title"`
		Content string `json:"content"`
		IsEmbed bool   `json:"isEmbed"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&testimonial))
	assert.Equal(t, "@alice", testimonial.Name)
	assert.Equal(t, "@alice", testimonial.Handle)
	assert.Equal(t, "Twitter User", testimonial.Title)
	assert.Contains(t, testimonial.Content, "twitter-tweet")
	assert.True(t, testimonial.IsEmbed)
}

// TestAPI_LegacyEmbedProxy verifies the original widget-script endpoint:
// markup on success, fallback markup with status 200 when upstream fails.
func TestAPI_LegacyEmbedProxy(t *testing.T) {
	upstream := newOembedUpstream(t)
	engine := newAPIStack(t, upstream.URL)

	w := request(engine, http.MethodPost, "/api/twitter-embed",
		`{"tweetUrl":"https://twitter.com/alice/status/12345"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["html"], "embedded")

	// Kill the upstream; the endpoint must keep returning 200 with fallback.
	upstream.Close()

	w = request(engine, http.MethodPost, "/api/twitter-embed",
		`{"tweetUrl":"https://twitter.com/alice/status/12345"}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["html"], "<blockquote")
	assert.Contains(t, resp["html"], "https://twitter.com/alice/status/12345")
}

// TestAPI_HealthEndpoints verifies the probe surface of the composed stack.
func TestAPI_HealthEndpoints(t *testing.T) {
	upstream := newOembedUpstream(t)
	defer upstream.Close()

	engine := newAPIStack(t, upstream.URL)

	w := request(engine, http.MethodGet, "/-/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(engine, http.MethodGet, "/-/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(engine, http.MethodGet, "/-/build", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test")
}
