// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/testimonialhq/widget-service/internal/domain"
	"github.com/testimonialhq/widget-service/internal/ports"
)

// WidgetService manages widget collections. All widgets live in a single
// persisted blob, so every mutation is a load-modify-save cycle against the
// repository; see ports.WidgetRepository for the concurrency trade-off.
type WidgetService struct {
	repo   ports.WidgetRepository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// WidgetServiceConfig contains configuration for the widget service.
type WidgetServiceConfig struct {
	Repository ports.WidgetRepository
	Logger     *slog.Logger

	// Now and NewID override time and ID generation in tests.
	Now   func() time.Time
	NewID func() string
}

// NewWidgetService creates a new widget service with the provided dependencies.
func NewWidgetService(cfg WidgetServiceConfig) *WidgetService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &WidgetService{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
		newID:  newID,
	}
}

// ListWidgets returns all widgets, newest first.
func (s *WidgetService) ListWidgets(ctx context.Context) ([]domain.Widget, error) {
	widgets, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load widgets",
			slog.Any("error", err),
		)
		return nil, err
	}

	slices.SortFunc(widgets, func(a, b domain.Widget) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return widgets, nil
}

// GetWidget returns one widget by ID.
func (s *WidgetService) GetWidget(ctx context.Context, id string) (*domain.Widget, error) {
	widgets, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range widgets {
		if widgets[i].ID == id {
			return &widgets[i], nil
		}
	}

	return nil, domain.NewNotFoundError("widget", id)
}

// CreateWidget creates a widget with the given name and settings. Zero-value
// settings fields fall back to the defaults.
func (s *WidgetService) CreateWidget(ctx context.Context, name string, settings *domain.WidgetSettings) (*domain.Widget, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	resolved := domain.DefaultSettings()
	if settings != nil {
		resolved = *settings
	}

	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	widget := domain.Widget{
		ID:           s.newID(),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
		Testimonials: []domain.Testimonial{},
		Settings:     resolved,
	}

	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		return append(widgets, widget), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "created widget",
		slog.String("widget_id", widget.ID),
		slog.String("name", widget.Name),
	)

	return &widget, nil
}

// UpdateWidget applies a name change and/or a settings patch to a widget.
func (s *WidgetService) UpdateWidget(ctx context.Context, id string, name *string, patch *domain.SettingsPatch) (*domain.Widget, error) {
	var updated *domain.Widget

	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		idx := indexOf(widgets, id)
		if idx < 0 {
			return nil, domain.NewNotFoundError("widget", id)
		}

		w := &widgets[idx]

		if name != nil {
			if *name == "" {
				return nil, domain.NewValidationError("name", "must not be empty")
			}
			w.Name = *name
		}

		if patch != nil {
			next := patch.Apply(w.Settings)
			if err := next.Validate(); err != nil {
				return nil, err
			}
			w.Settings = next
		}

		w.UpdatedAt = s.now().UTC()
		updated = w

		return widgets, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "updated widget",
		slog.String("widget_id", id),
	)

	return updated, nil
}

// DeleteWidget removes a widget and all of its testimonials.
func (s *WidgetService) DeleteWidget(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		idx := indexOf(widgets, id)
		if idx < 0 {
			return nil, domain.NewNotFoundError("widget", id)
		}

		return append(widgets[:idx], widgets[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "deleted widget",
		slog.String("widget_id", id),
	)

	return nil
}

// AddTestimonial prepends a testimonial to a widget so the newest entry
// shows first. A missing testimonial ID is filled in.
func (s *WidgetService) AddTestimonial(ctx context.Context, widgetID string, testimonial domain.Testimonial) (*domain.Widget, error) {
	if testimonial.ID == "" {
		testimonial.ID = s.newID()
	}

	if err := testimonial.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Widget

	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		idx := indexOf(widgets, widgetID)
		if idx < 0 {
			return nil, domain.NewNotFoundError("widget", widgetID)
		}

		w := &widgets[idx]
		w.Testimonials = append([]domain.Testimonial{testimonial}, w.Testimonials...)
		w.UpdatedAt = s.now().UTC()
		updated = w

		return widgets, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "added testimonial",
		slog.String("widget_id", widgetID),
		slog.String("testimonial_id", testimonial.ID),
	)

	return updated, nil
}

// UpdateTestimonial applies a patch to one testimonial in a widget.
func (s *WidgetService) UpdateTestimonial(ctx context.Context, widgetID, testimonialID string, patch domain.TestimonialPatch) (*domain.Widget, error) {
	var updated *domain.Widget

	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		idx := indexOf(widgets, widgetID)
		if idx < 0 {
			return nil, domain.NewNotFoundError("widget", widgetID)
		}

		w := &widgets[idx]

		found := false
		for i := range w.Testimonials {
			if w.Testimonials[i].ID != testimonialID {
				continue
			}

			next := patch.Apply(w.Testimonials[i])
			if err := next.Validate(); err != nil {
				return nil, err
			}

			w.Testimonials[i] = next
			found = true

			break
		}

		if !found {
			return nil, domain.NewNotFoundError("testimonial", testimonialID)
		}

		w.UpdatedAt = s.now().UTC()
		updated = w

		return widgets, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveTestimonial deletes one testimonial from a widget.
func (s *WidgetService) RemoveTestimonial(ctx context.Context, widgetID, testimonialID string) (*domain.Widget, error) {
	var updated *domain.Widget

	err := s.mutate(ctx, func(widgets []domain.Widget) ([]domain.Widget, error) {
		idx := indexOf(widgets, widgetID)
		if idx < 0 {
			return nil, domain.NewNotFoundError("widget", widgetID)
		}

		w := &widgets[idx]

		kept := w.Testimonials[:0:0]
		for _, t := range w.Testimonials {
			if t.ID != testimonialID {
				kept = append(kept, t)
			}
		}

		if len(kept) == len(w.Testimonials) {
			return nil, domain.NewNotFoundError("testimonial", testimonialID)
		}

		w.Testimonials = kept
		w.UpdatedAt = s.now().UTC()
		updated = w

		return widgets, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "removed testimonial",
		slog.String("widget_id", widgetID),
		slog.String("testimonial_id", testimonialID),
	)

	return updated, nil
}

// ClearAll deletes every widget.
func (s *WidgetService) ClearAll(ctx context.Context) error {
	err := s.repo.Clear(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to clear widgets",
			slog.Any("error", err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "cleared all widgets")

	return nil
}

// mutate runs one load-modify-save cycle. The blob holds all widgets, so
// concurrent writers race with last-write-wins semantics. A failed save is
// logged and dropped: the caller still gets the mutated result, and the
// stored blob simply lags until the next successful write.
func (s *WidgetService) mutate(ctx context.Context, fn func([]domain.Widget) ([]domain.Widget, error)) error {
	widgets, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load widgets",
			slog.Any("error", err),
		)
		return err
	}

	next, err := fn(widgets)
	if err != nil {
		return err
	}

	if err := s.repo.SaveAll(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to save widgets",
			slog.Any("error", err),
		)
	}

	return nil
}

func indexOf(widgets []domain.Widget, id string) int {
	for i := range widgets {
		if widgets[i].ID == id {
			return i
		}
	}

	return -1
}
