package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/testimonialhq/widget-service/internal/domain"
	"github.com/testimonialhq/widget-service/internal/ports"
)

// testimonialDateFormat renders dates the way the widget displays them.
const testimonialDateFormat = "Jan 2, 2006"

// TestimonialService turns social post URLs into embed testimonials.
type TestimonialService struct {
	embeds ports.EmbedProvider
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// TestimonialServiceConfig contains configuration for the testimonial service.
type TestimonialServiceConfig struct {
	EmbedProvider ports.EmbedProvider
	Logger        *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// NewTestimonialService creates a new testimonial service.
func NewTestimonialService(cfg TestimonialServiceConfig) *TestimonialService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &TestimonialService{
		embeds: cfg.EmbedProvider,
		logger: cfg.Logger,
		now:    now,
		newID:  newID,
	}
}

// GenerateFromPost builds an embed testimonial from a post URL. The URL is
// validated first; a rejected URL is the only failure mode. When the embed
// provider cannot deliver markup, the testimonial carries the fallback
// blockquote instead, which the provider script upgrades client-side.
func (s *TestimonialService) GenerateFromPost(ctx context.Context, postURL string) (*domain.Testimonial, error) {
	ref, err := domain.ParsePostURL(postURL)
	if err != nil {
		s.logger.WarnContext(ctx, "rejected post URL",
			slog.String("url", postURL),
			slog.Any("error", err),
		)
		return nil, err
	}

	content, err := s.embeds.FetchEmbed(ctx, ref.URL)
	if err != nil {
		s.logger.WarnContext(ctx, "embed fetch failed, using fallback markup",
			slog.String("url", ref.URL),
			slog.Any("error", err),
		)
		content = domain.FallbackEmbedHTML(ref.URL)
	}

	handle := "@" + ref.Author

	testimonial := &domain.Testimonial{
		ID:          s.newID(),
		Name:        handle,
		Title:       "Twitter User",
		Handle:      handle,
		Avatar:      domain.AvatarURL(ref.Author),
		Content:     content,
		Date:        s.now().Format(testimonialDateFormat),
		Platform:    domain.PlatformTwitter,
		IsEmbed:     true,
		OriginalURL: ref.URL,
	}

	s.logger.InfoContext(ctx, "generated embed testimonial",
		slog.String("author", ref.Author),
		slog.String("post_id", ref.PostID),
	)

	return testimonial, nil
}
