package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// fakeEmbedProvider returns canned markup or a canned error.
type fakeEmbedProvider struct {
	html string
	err  error

	urls []string
}

func (f *fakeEmbedProvider) FetchEmbed(_ context.Context, postURL string) (string, error) {
	f.urls = append(f.urls, postURL)

	if f.err != nil {
		return "", f.err
	}

	return f.html, nil
}

func newTestimonialService(provider *fakeEmbedProvider) *TestimonialService {
	return NewTestimonialService(TestimonialServiceConfig{
		EmbedProvider: provider,
		Logger:        slog.New(slog.DiscardHandler),
		Now: func() time.Time {
			return time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
		},
		NewID: func() string { return "t-1" },
	})
}

func TestGenerateFromPost(t *testing.T) {
	const postURL = "https://x.com/ada/status/1234567890"

	t.Run("uses fetched embed markup", func(t *testing.T) {
		provider := &fakeEmbedProvider{html: `<blockquote class="twitter-tweet">hi</blockquote>`}
		svc := newTestimonialService(provider)

		got, err := svc.GenerateFromPost(context.Background(), postURL)
		require.NoError(t, err)

		assert.Equal(t, "t-1", got.ID)
		assert.Equal(t, "@ada", got.Name)
		assert.Equal(t, "@ada", got.Handle)
		assert.Equal(t, "Twitter User", got.Title)
		assert.Equal(t, domain.AvatarURL("ada"), got.Avatar)
		assert.Equal(t, provider.html, got.Content)
		assert.Equal(t, "Mar 14, 2026", got.Date)
		assert.Equal(t, domain.PlatformTwitter, got.Platform)
		assert.True(t, got.IsEmbed)
		assert.Equal(t, postURL, got.OriginalURL)

		require.Len(t, provider.urls, 1)
		assert.Equal(t, postURL, provider.urls[0])
	})

	t.Run("falls back when provider fails", func(t *testing.T) {
		provider := &fakeEmbedProvider{err: domain.NewUnavailableError("oembed", "timeout")}
		svc := newTestimonialService(provider)

		got, err := svc.GenerateFromPost(context.Background(), postURL)
		require.NoError(t, err, "provider failure is not a generation failure")

		assert.Equal(t, domain.FallbackEmbedHTML(postURL), got.Content)
		assert.True(t, got.IsEmbed)
	})

	t.Run("rejects invalid URL without fetching", func(t *testing.T) {
		provider := &fakeEmbedProvider{html: "unused"}
		svc := newTestimonialService(provider)

		_, err := svc.GenerateFromPost(context.Background(), "https://example.com/ada/status/1")
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, provider.urls)
	})
}
