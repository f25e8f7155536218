// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
package ports

import (
	"context"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// EmbedProvider fetches provider-rendered embed HTML for a social post URL.
// Implementations must respect context deadlines and map transport failures
// to domain.ErrUnavailable; callers decide whether to substitute fallback
// markup.
type EmbedProvider interface {
	// FetchEmbed returns the embed HTML for the given post URL.
	FetchEmbed(ctx context.Context, postURL string) (string, error)
}

// WidgetRepository persists the widget collection as a single unit.
//
// The collection is stored as one serialized blob under one key, so every
// mutation is a read-modify-write of the whole collection performed by the
// application layer. There is no cross-writer isolation: concurrent writers
// race and the last write wins, which is an accepted property of this store,
// not a defect to compensate for here.
type WidgetRepository interface {
	// LoadAll returns every stored widget. An absent blob yields an empty
	// slice, not an error.
	LoadAll(ctx context.Context) ([]domain.Widget, error)

	// SaveAll replaces the stored collection with the given widgets.
	SaveAll(ctx context.Context, widgets []domain.Widget) error

	// Clear removes the stored collection entirely.
	Clear(ctx context.Context) error
}
