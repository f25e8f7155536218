package dto

import (
	"time"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// WidgetSettingsDTO carries widget display settings over the wire.
type WidgetSettingsDTO struct {
	ShowNavigation      bool   `json:"showNavigation"`
	ShowPagination      bool   `json:"showPagination"`
	AutoSlide           bool   `json:"autoSlide"`
	SlideInterval       int    `json:"slideInterval" validate:"omitempty,gte=1000"`
	Theme               string `json:"theme" validate:"omitempty,oneof=light dark"`
	TestimonialsPerPage int    `json:"testimonialsPerPage" validate:"omitempty,gte=1"`
}

// SettingsFromDomain converts domain settings to the wire DTO.
func SettingsFromDomain(s domain.WidgetSettings) WidgetSettingsDTO {
	return WidgetSettingsDTO{
		ShowNavigation:      s.ShowNavigation,
		ShowPagination:      s.ShowPagination,
		AutoSlide:           s.AutoSlide,
		SlideInterval:       s.SlideIntervalMillis,
		Theme:               s.Theme,
		TestimonialsPerPage: s.TestimonialsPerPage,
	}
}

// SettingsPatchDTO carries a partial settings update; nil fields are left
// unchanged.
type SettingsPatchDTO struct {
	ShowNavigation      *bool   `json:"showNavigation"`
	ShowPagination      *bool   `json:"showPagination"`
	AutoSlide           *bool   `json:"autoSlide"`
	SlideInterval       *int    `json:"slideInterval" validate:"omitempty,gte=1000"`
	Theme               *string `json:"theme" validate:"omitempty,oneof=light dark"`
	TestimonialsPerPage *int    `json:"testimonialsPerPage" validate:"omitempty,gte=1"`
}

// ToDomain converts the DTO to a domain settings patch.
func (d *SettingsPatchDTO) ToDomain() *domain.SettingsPatch {
	if d == nil {
		return nil
	}

	return &domain.SettingsPatch{
		ShowNavigation:      d.ShowNavigation,
		ShowPagination:      d.ShowPagination,
		AutoSlide:           d.AutoSlide,
		SlideIntervalMillis: d.SlideInterval,
		Theme:               d.Theme,
		TestimonialsPerPage: d.TestimonialsPerPage,
	}
}

// CreateWidgetRequest is the request body for creating a widget. Settings
// fields left out of the request keep their defaults.
type CreateWidgetRequest struct {
	Name     string            `json:"name" validate:"required,notempty,max=200"`
	Settings *SettingsPatchDTO `json:"settings"`
}

// ResolveSettings applies the request's settings over the defaults.
func (r *CreateWidgetRequest) ResolveSettings() domain.WidgetSettings {
	settings := domain.DefaultSettings()
	if patch := r.Settings.ToDomain(); patch != nil {
		settings = patch.Apply(settings)
	}

	return settings
}

// UpdateWidgetRequest is the request body for updating a widget. Absent
// fields are left unchanged.
type UpdateWidgetRequest struct {
	Name     *string           `json:"name" validate:"omitempty,notempty,max=200"`
	Settings *SettingsPatchDTO `json:"settings"`
}

// TestimonialDTO carries one testimonial over the wire.
type TestimonialDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Handle      string `json:"handle,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Content     string `json:"content"`
	Rating      int    `json:"rating,omitempty"`
	Date        string `json:"date,omitempty"`
	Platform    string `json:"platform,omitempty"`
	IsEmbed     bool   `json:"isEmbed,omitempty"`
	OriginalURL string `json:"originalUrl,omitempty"`
}

// AddTestimonialRequest is the request body for adding a testimonial.
type AddTestimonialRequest struct {
	Name        string `json:"name" validate:"required,notempty"`
	Title       string `json:"title" validate:"max=200"`
	Handle      string `json:"handle" validate:"max=200"`
	Avatar      string `json:"avatar" validate:"omitempty,url"`
	Content     string `json:"content" validate:"required"`
	Rating      int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Date        string `json:"date"`
	Platform    string `json:"platform" validate:"omitempty,oneof=twitter slack linkedin other"`
	IsEmbed     bool   `json:"isEmbed"`
	OriginalURL string `json:"originalUrl" validate:"omitempty,posturl"`
}

// ToDomain converts the request to a domain testimonial.
func (r *AddTestimonialRequest) ToDomain() domain.Testimonial {
	platform := domain.Platform(r.Platform)
	if platform == "" {
		platform = domain.PlatformOther
	}

	return domain.Testimonial{
		Name:        r.Name,
		Title:       r.Title,
		Handle:      r.Handle,
		Avatar:      r.Avatar,
		Content:     r.Content,
		Rating:      r.Rating,
		Date:        r.Date,
		Platform:    platform,
		IsEmbed:     r.IsEmbed,
		OriginalURL: r.OriginalURL,
	}
}

// UpdateTestimonialRequest is the request body for patching a testimonial.
type UpdateTestimonialRequest struct {
	Name    *string `json:"name" validate:"omitempty,notempty"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Handle  *string `json:"handle" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,notempty"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Date    *string `json:"date"`
}

// ToDomain converts the request to a domain testimonial patch.
func (r *UpdateTestimonialRequest) ToDomain() domain.TestimonialPatch {
	return domain.TestimonialPatch{
		Name:    r.Name,
		Title:   r.Title,
		Handle:  r.Handle,
		Content: r.Content,
		Rating:  r.Rating,
		Date:    r.Date,
	}
}

// WidgetResponse is the wire representation of a widget.
type WidgetResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Testimonials []TestimonialDTO  `json:"testimonials"`
	Settings     WidgetSettingsDTO `json:"settings"`
}

// WidgetFromDomain converts a domain widget to its wire representation.
func WidgetFromDomain(w *domain.Widget) *WidgetResponse {
	testimonials := make([]TestimonialDTO, 0, len(w.Testimonials))
	for _, t := range w.Testimonials {
		testimonials = append(testimonials, TestimonialFromDomain(t))
	}

	return &WidgetResponse{
		ID:           w.ID,
		Name:         w.Name,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		Testimonials: testimonials,
		Settings:     SettingsFromDomain(w.Settings),
	}
}

// TestimonialFromDomain converts a domain testimonial to its wire
// representation.
func TestimonialFromDomain(t domain.Testimonial) TestimonialDTO {
	return TestimonialDTO{
		ID:          t.ID,
		Name:        t.Name,
		Title:       t.Title,
		Handle:      t.Handle,
		Avatar:      t.Avatar,
		Content:     t.Content,
		Rating:      t.Rating,
		Date:        t.Date,
		Platform:    string(t.Platform),
		IsEmbed:     t.IsEmbed,
		OriginalURL: t.OriginalURL,
	}
}
