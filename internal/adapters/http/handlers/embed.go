package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/testimonialhq/widget-service/internal/adapters/http/dto"
	"github.com/testimonialhq/widget-service/internal/app"
	"github.com/testimonialhq/widget-service/internal/domain"
	"github.com/testimonialhq/widget-service/internal/ports"
)

// EmbedHandler handles embed resolution HTTP endpoints. These are consumed
// by the embeddable widget script, so responses deliberately absorb provider
// failures: the widget always gets usable markup back.
type EmbedHandler struct {
	embeds       ports.EmbedProvider
	testimonials *app.TestimonialService
}

// NewEmbedHandler creates a new embed handler.
func NewEmbedHandler(embeds ports.EmbedProvider, testimonials *app.TestimonialService) *EmbedHandler {
	return &EmbedHandler{
		embeds:       embeds,
		testimonials: testimonials,
	}
}

// GenerateEmbed handles POST /api/v1/embeds/twitter (and the legacy
// /api/twitter-embed alias). It proxies the oEmbed lookup for the widget
// script; on provider failure it returns 200 with fallback blockquote markup
// that the provider script upgrades client-side. Only a missing or invalid
// URL is a client error.
func (h *EmbedHandler) GenerateEmbed(c *gin.Context) {
	var req dto.GenerateEmbedRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	html, err := h.embeds.FetchEmbed(c.Request.Context(), req.TweetURL)
	if err != nil {
		html = domain.FallbackEmbedHTML(req.TweetURL)
	}

	c.JSON(http.StatusOK, dto.GenerateEmbedResponse{HTML: html})
}

// GenerateTestimonial handles POST /api/v1/testimonials/generate
// Builds a complete embed testimonial from a post URL.
func (h *EmbedHandler) GenerateTestimonial(c *gin.Context) {
	var req dto.GenerateTestimonialRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	testimonial, err := h.testimonials.GenerateFromPost(c.Request.Context(), req.URL)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TestimonialFromDomain(*testimonial))
}

// RegisterEmbedRoutes registers embed routes on the given router group.
// OPTIONS routes are registered explicitly so CORS preflights from the
// widget script reach the middleware instead of falling through to 404.
func (h *EmbedHandler) RegisterEmbedRoutes(rg *gin.RouterGroup) {
	embeds := rg.Group("/embeds")
	embeds.POST("/twitter", h.GenerateEmbed)
	embeds.OPTIONS("/twitter", preflight)

	rg.POST("/testimonials/generate", h.GenerateTestimonial)
	rg.OPTIONS("/testimonials/generate", preflight)
}

// preflight terminates OPTIONS requests; the CORS middleware has already
// written the headers and aborted, so this handler never actually runs.
func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
