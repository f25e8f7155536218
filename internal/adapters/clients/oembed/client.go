// Package oembed implements ports.EmbedProvider against Twitter's public
// oEmbed endpoint. It translates the external oEmbed response to the embed
// markup the domain works with, isolating the rest of the service from the
// provider's API shape.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/testimonialhq/widget-service/internal/adapters/clients"
	"github.com/testimonialhq/widget-service/internal/domain"
	"github.com/testimonialhq/widget-service/internal/platform/logging"
)

const (
	// serviceName identifies the provider in errors and health checks.
	serviceName = "twitter-oembed"

	oembedPath = "/oembed"
)

// ClientConfig contains configuration for the oEmbed client.
type ClientConfig struct {
	// Client is the HTTP client to use for requests. Its BaseURL should
	// point at the oEmbed host, e.g. "https://publish.twitter.com".
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Client fetches embed markup for posts. Implements ports.EmbedProvider.
type Client struct {
	client *clients.Client
	logger *slog.Logger
}

// NewClient creates a new oEmbed client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Client == nil {
		panic("oembed.Client: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client: cfg.Client,
		logger: logger,
	}
}

// oembedResponse is the external DTO from the oEmbed API.
// This is an internal type - never exposed outside the adapter.
type oembedResponse struct {
	URL        string `json:"url"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	HTML       string `json:"html"`
	Type       string `json:"type"`
}

// FetchEmbed fetches embed markup for a post URL.
// Implements ports.EmbedProvider.
func (c *Client) FetchEmbed(ctx context.Context, postURL string) (string, error) {
	path := oembedPath + "?" + oembedQuery(postURL)

	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("url", postURL))
	c.logger.DebugContext(ctx, "fetching embed markup", slog.String("url", postURL))

	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return "", domain.NewUnavailableError(serviceName, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("url", postURL),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.NewNotFoundError("post", postURL)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp)
	}

	return c.parseEmbedResponse(ctx, resp.Body)
}

// oembedQuery builds the query string for a post URL. The theme and thread
// parameters match what the widget renders.
func oembedQuery(postURL string) string {
	q := url.Values{}
	q.Set("url", postURL)
	q.Set("hide_thread", "false")
	q.Set("theme", "light")

	return q.Encode()
}

// parseEmbedResponse reads the external DTO and extracts the embed markup.
func (c *Client) parseEmbedResponse(ctx context.Context, body io.Reader) (string, error) {
	var external oembedResponse

	err := json.NewDecoder(body).Decode(&external)
	if err != nil {
		return "", fmt.Errorf("decoding oembed response: %w", err)
	}

	if external.HTML == "" {
		return "", domain.NewUnavailableError(serviceName, "response carried no embed markup")
	}

	c.logger.Log(ctx, logging.LevelTrace, "translated oembed response",
		slog.String("author", external.AuthorName))

	return external.HTML, nil
}

// handleErrorResponse converts HTTP error responses to domain errors.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	c.logger.Warn("oembed API error",
		slog.Int("status_code", resp.StatusCode),
		slog.String("body", string(body)),
	)

	return domain.NewUnavailableError(serviceName, fmt.Sprintf("HTTP %d", resp.StatusCode))
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *Client) Name() string {
	return serviceName
}

// Check reports the circuit breaker state rather than probing the provider;
// the oEmbed API has no health endpoint and probing it would burn quota.
// Implements ports.HealthChecker.
func (c *Client) Check(_ context.Context) error {
	if state := c.client.CircuitState(); state == clients.StateOpen {
		return fmt.Errorf("circuit breaker %s", state)
	}

	return nil
}
