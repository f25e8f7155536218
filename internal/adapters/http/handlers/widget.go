package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/testimonialhq/widget-service/internal/adapters/http/dto"
	"github.com/testimonialhq/widget-service/internal/app"
	"github.com/testimonialhq/widget-service/internal/domain"
)

// widgetSortField is the cursor sort field for widget listings.
const widgetSortField = "created_at"

// WidgetHandler handles widget collection HTTP endpoints.
type WidgetHandler struct {
	service *app.WidgetService
}

// NewWidgetHandler creates a new widget handler.
func NewWidgetHandler(service *app.WidgetService) *WidgetHandler {
	return &WidgetHandler{
		service: service,
	}
}

// ListWidgets handles GET /api/v1/widgets
// Returns widgets newest first with cursor pagination.
func (h *WidgetHandler) ListWidgets(c *gin.Context) {
	var page dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	widgets, err := h.service.ListWidgets(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	widgets = applyCursor(widgets, &page)

	limit := page.GetLimit()
	if len(widgets) > limit+1 {
		widgets = widgets[:limit+1]
	}

	responses := make([]*dto.WidgetResponse, 0, len(widgets))
	for i := range widgets {
		responses = append(responses, dto.WidgetFromDomain(&widgets[i]))
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(responses, limit, func(w *dto.WidgetResponse) *dto.CursorData {
		return dto.NewCursor(widgetSortField, w.CreatedAt.Format(time.RFC3339Nano), w.ID)
	}))
}

// applyCursor skips items at or before the cursor position. Widgets are
// sorted newest first, so the next page starts strictly after the cursor's
// widget.
func applyCursor(widgets []domain.Widget, page *dto.PaginationRequest) []domain.Widget {
	cursor, err := page.DecodeCursor()
	if err != nil {
		// ErrNoCursor means the first page; an invalid cursor also starts
		// from the top rather than failing the listing.
		return widgets
	}

	for i := range widgets {
		if widgets[i].ID == cursor.ID {
			return widgets[i+1:]
		}
	}

	return widgets
}

// GetWidget handles GET /api/v1/widgets/:id
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	widget, err := h.service.GetWidget(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WidgetFromDomain(widget))
}

// CreateWidget handles POST /api/v1/widgets
func (h *WidgetHandler) CreateWidget(c *gin.Context) {
	var req dto.CreateWidgetRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	settings := req.ResolveSettings()

	widget, err := h.service.CreateWidget(c.Request.Context(), req.Name, &settings)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.WidgetFromDomain(widget))
}

// UpdateWidget handles PATCH /api/v1/widgets/:id
func (h *WidgetHandler) UpdateWidget(c *gin.Context) {
	var req dto.UpdateWidgetRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	widget, err := h.service.UpdateWidget(c.Request.Context(), c.Param("id"), req.Name, req.Settings.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WidgetFromDomain(widget))
}

// DeleteWidget handles DELETE /api/v1/widgets/:id
func (h *WidgetHandler) DeleteWidget(c *gin.Context) {
	err := h.service.DeleteWidget(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddTestimonial handles POST /api/v1/widgets/:id/testimonials
func (h *WidgetHandler) AddTestimonial(c *gin.Context) {
	var req dto.AddTestimonialRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	widget, err := h.service.AddTestimonial(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.WidgetFromDomain(widget))
}

// UpdateTestimonial handles PATCH /api/v1/widgets/:id/testimonials/:testimonialId
func (h *WidgetHandler) UpdateTestimonial(c *gin.Context) {
	var req dto.UpdateTestimonialRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	widget, err := h.service.UpdateTestimonial(c.Request.Context(), c.Param("id"), c.Param("testimonialId"), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WidgetFromDomain(widget))
}

// RemoveTestimonial handles DELETE /api/v1/widgets/:id/testimonials/:testimonialId
func (h *WidgetHandler) RemoveTestimonial(c *gin.Context) {
	widget, err := h.service.RemoveTestimonial(c.Request.Context(), c.Param("id"), c.Param("testimonialId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WidgetFromDomain(widget))
}

// RegisterWidgetRoutes registers widget routes on the given router group.
func (h *WidgetHandler) RegisterWidgetRoutes(rg *gin.RouterGroup) {
	widgets := rg.Group("/widgets")
	widgets.GET("", h.ListWidgets)
	widgets.POST("", h.CreateWidget)
	widgets.GET("/:id", h.GetWidget)
	widgets.PATCH("/:id", h.UpdateWidget)
	widgets.DELETE("/:id", h.DeleteWidget)
	widgets.POST("/:id/testimonials", h.AddTestimonial)
	widgets.PATCH("/:id/testimonials/:testimonialId", h.UpdateTestimonial)
	widgets.DELETE("/:id/testimonials/:testimonialId", h.RemoveTestimonial)
}
