// Package domain contains core business entities and rules.
package domain

import "time"

// Platform identifies where a testimonial originated.
type Platform string

// Supported testimonial platforms.
const (
	PlatformTwitter  Platform = "twitter"
	PlatformSlack    Platform = "slack"
	PlatformLinkedIn Platform = "linkedin"
	PlatformOther    Platform = "other"
)

// Testimonial is a single entry inside a widget. Content holds either plain
// text or raw embed HTML depending on IsEmbed; when IsEmbed is set,
// OriginalURL must reference the source post and Content is the exact markup
// returned by the embed provider (or the fallback blockquote).
type Testimonial struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Handle      string   `json:"handle,omitempty"`
	Avatar      string   `json:"avatar"`
	Content     string   `json:"content"`
	Rating      int      `json:"rating,omitempty"`
	Date        string   `json:"date"`
	Platform    Platform `json:"platform"`
	IsEmbed     bool     `json:"isEmbed,omitempty"`
	OriginalURL string   `json:"originalUrl,omitempty"`
}

// Validate checks the embed and rating invariants.
func (t *Testimonial) Validate() error {
	if t.ID == "" {
		return NewValidationError("id", "cannot be empty")
	}

	if t.IsEmbed && t.OriginalURL == "" {
		return NewValidationError("originalUrl", "required for embed testimonials")
	}

	if t.Rating != 0 && (t.Rating < MinRating || t.Rating > MaxRating) {
		return NewValidationError("rating", "must be between 1 and 5")
	}

	return nil
}

// Rating bounds for star ratings. Zero means "no rating".
const (
	MinRating = 1
	MaxRating = 5
)

// MinSlideInterval is the smallest allowed auto-advance interval.
const MinSlideInterval = time.Second

// WidgetSettings controls how a widget's carousel is displayed.
type WidgetSettings struct {
	ShowNavigation      bool   `json:"showNavigation"`
	ShowPagination      bool   `json:"showPagination"`
	AutoSlide           bool   `json:"autoSlide"`
	SlideIntervalMillis int    `json:"slideInterval"`
	Theme               string `json:"theme"`
	TestimonialsPerPage int    `json:"testimonialsPerPage,omitempty"`
}

// SlideInterval returns the auto-advance interval as a duration.
func (s WidgetSettings) SlideInterval() time.Duration {
	return time.Duration(s.SlideIntervalMillis) * time.Millisecond
}

// Validate checks settings bounds.
func (s WidgetSettings) Validate() error {
	if time.Duration(s.SlideIntervalMillis)*time.Millisecond < MinSlideInterval {
		return NewValidationError("slideInterval", "must be at least 1000ms")
	}

	if s.Theme != "light" && s.Theme != "dark" {
		return NewValidationError("theme", "must be light or dark")
	}

	return nil
}

// DefaultSettings returns the settings applied to newly created widgets.
func DefaultSettings() WidgetSettings {
	return WidgetSettings{
		ShowNavigation:      true,
		ShowPagination:      true,
		AutoSlide:           false,
		SlideIntervalMillis: 5000,
		Theme:               "light",
		TestimonialsPerPage: 3,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	ShowNavigation      *bool   `json:"showNavigation,omitempty"`
	ShowPagination      *bool   `json:"showPagination,omitempty"`
	AutoSlide           *bool   `json:"autoSlide,omitempty"`
	SlideIntervalMillis *int    `json:"slideInterval,omitempty"`
	Theme               *string `json:"theme,omitempty"`
	TestimonialsPerPage *int    `json:"testimonialsPerPage,omitempty"`
}

// Apply merges the patch onto base and returns the result.
func (p *SettingsPatch) Apply(base WidgetSettings) WidgetSettings {
	if p == nil {
		return base
	}

	if p.ShowNavigation != nil {
		base.ShowNavigation = *p.ShowNavigation
	}

	if p.ShowPagination != nil {
		base.ShowPagination = *p.ShowPagination
	}

	if p.AutoSlide != nil {
		base.AutoSlide = *p.AutoSlide
	}

	if p.SlideIntervalMillis != nil {
		base.SlideIntervalMillis = *p.SlideIntervalMillis
	}

	if p.Theme != nil {
		base.Theme = *p.Theme
	}

	if p.TestimonialsPerPage != nil {
		base.TestimonialsPerPage = *p.TestimonialsPerPage
	}

	return base
}

// Widget is a named, independently configured collection of testimonials.
// Invariant: UpdatedAt >= CreatedAt; any mutation to Testimonials or Settings
// bumps UpdatedAt. Widgets hold their testimonials directly, so deleting a
// widget deletes its testimonials with it.
type Widget struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Testimonials []Testimonial  `json:"testimonials"`
	Settings     WidgetSettings `json:"settings"`
}

// Testimonial returns the testimonial with the given id, or nil.
func (w *Widget) Testimonial(id string) *Testimonial {
	for i := range w.Testimonials {
		if w.Testimonials[i].ID == id {
			return &w.Testimonials[i]
		}
	}

	return nil
}

// TestimonialPatch is a partial testimonial update. Nil fields are unchanged.
type TestimonialPatch struct {
	Name    *string `json:"name,omitempty"`
	Title   *string `json:"title,omitempty"`
	Handle  *string `json:"handle,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
	Content *string `json:"content,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
	Date    *string `json:"date,omitempty"`
}

// Apply merges the patch onto t and returns the result.
func (p *TestimonialPatch) Apply(t Testimonial) Testimonial {
	if p == nil {
		return t
	}

	if p.Name != nil {
		t.Name = *p.Name
	}

	if p.Title != nil {
		t.Title = *p.Title
	}

	if p.Handle != nil {
		t.Handle = *p.Handle
	}

	if p.Avatar != nil {
		t.Avatar = *p.Avatar
	}

	if p.Content != nil {
		t.Content = *p.Content
	}

	if p.Rating != nil {
		t.Rating = *p.Rating
	}

	if p.Date != nil {
		t.Date = *p.Date
	}

	return t
}
