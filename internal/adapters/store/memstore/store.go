// Package memstore is an in-memory ports.WidgetRepository used in tests and
// for running the service without Redis.
package memstore

import (
	"context"
	"sync"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// Store holds the widget collection in process memory.
type Store struct {
	mu      sync.RWMutex
	widgets []domain.Widget
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// LoadAll returns a copy of the stored collection.
func (s *Store) LoadAll(_ context.Context) ([]domain.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.widgets == nil {
		return nil, nil
	}

	out := make([]domain.Widget, len(s.widgets))
	copy(out, s.widgets)

	return out, nil
}

// SaveAll replaces the stored collection.
func (s *Store) SaveAll(_ context.Context, widgets []domain.Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.widgets = make([]domain.Widget, len(widgets))
	copy(s.widgets, widgets)

	return nil
}

// Clear deletes the stored collection.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.widgets = nil

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memstore"
}

// Check implements ports.HealthChecker; an in-memory store is always up.
func (s *Store) Check(_ context.Context) error {
	return nil
}
