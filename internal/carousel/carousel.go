// Package carousel implements the paginated testimonial display: a viewport
// driven pagination state machine, a per-instance embed cache, and the shared
// embed script lifecycle.
package carousel

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// Viewport breakpoints controlling how many testimonials share a page.
const (
	breakpointTablet  = 768
	breakpointDesktop = 1024

	itemsPerPageNarrow = 1
	itemsPerPageMedium = 2
	itemsPerPageWide   = 3
)

// prefetchConcurrency bounds parallel oEmbed fetches during Prefetch.
const prefetchConcurrency = 4

// Embed re-scan delays. The provider's widget script mounts asynchronously,
// so a scan is requested several times after each transition.
var rescanDelays = []time.Duration{
	50 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
}

// ItemsPerPageForWidth maps a viewport width in pixels to a page size.
func ItemsPerPageForWidth(width int) int {
	switch {
	case width < breakpointTablet:
		return itemsPerPageNarrow
	case width < breakpointDesktop:
		return itemsPerPageMedium
	default:
		return itemsPerPageWide
	}
}

// Config mirrors the embeddable widget interface: the containing element id,
// the testimonial list, and the display settings. It is the unit parsed from
// a data-testimonials payload.
type Config struct {
	Container           string               `json:"container"`
	Testimonials        []domain.Testimonial `json:"testimonials"`
	ShowNavigation      bool                 `json:"showNavigation"`
	ShowPagination      bool                 `json:"showPagination"`
	AutoSlide           bool                 `json:"autoSlide"`
	SlideIntervalMillis int                  `json:"slideInterval"`
	TestimonialsPerPage int                  `json:"testimonialsPerPage"`
}

// ParseConfig decodes a JSON config payload as found in a data-testimonials
// attribute.
func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config

	err := json.Unmarshal(raw, &cfg)
	if err != nil {
		return nil, domain.NewValidationError("config", "invalid JSON: "+err.Error())
	}

	if cfg.SlideIntervalMillis == 0 {
		cfg.SlideIntervalMillis = domain.DefaultSettings().SlideIntervalMillis
	}

	return &cfg, nil
}

// Controller is the pagination state machine for one carousel instance.
// State is (page, itemsPerPage, len(items)); transitions are Next, Prev,
// GoTo and viewport resizes. All methods are safe for concurrent use.
//
// After every transition the embed script is asked to re-scan so embeds
// newly brought into view get upgraded; see ScriptLoader.
type Controller struct {
	mu           sync.Mutex
	items        []domain.Testimonial
	page         int
	itemsPerPage int

	autoSlide     bool
	slideInterval time.Duration
	stopAuto      chan struct{}

	loader *ScriptLoader
	logger *slog.Logger

	closed bool
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// Testimonials is the initial item list.
	Testimonials []domain.Testimonial

	// ViewportWidth is the initial viewport width in pixels.
	ViewportWidth int

	// AutoSlide enables the recurring Next timer.
	AutoSlide bool

	// SlideInterval is the auto-advance period; values below the domain
	// minimum are raised to it.
	SlideInterval time.Duration

	// Loader requests embed re-scans after transitions. Optional.
	Loader *ScriptLoader

	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
}

// NewController creates a carousel controller and, when configured, starts
// the auto-advance timer. Callers must Close the controller to release it.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.SlideInterval
	if interval < domain.MinSlideInterval {
		interval = domain.MinSlideInterval
	}

	c := &Controller{
		items:         cfg.Testimonials,
		itemsPerPage:  ItemsPerPageForWidth(cfg.ViewportWidth),
		autoSlide:     cfg.AutoSlide,
		slideInterval: interval,
		loader:        cfg.Loader,
		logger:        logger.With(slog.String("component", "carousel.Controller")),
	}

	if c.autoSlide && len(c.items) > c.itemsPerPage {
		c.startAutoSlide()
	}

	return c
}

// TotalPages returns the page count for the current layout. It is at least 1
// whenever there are items, so an out-of-range page never survives a resize.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalPagesLocked()
}

func (c *Controller) totalPagesLocked() int {
	if len(c.items) == 0 {
		return 0
	}

	pages := (len(c.items) + c.itemsPerPage - 1) / c.itemsPerPage
	if pages < 1 {
		pages = 1
	}

	return pages
}

// Page returns the current zero-based page index.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.page
}

// ItemsPerPage returns the current page size.
func (c *Controller) ItemsPerPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.itemsPerPage
}

// Visible returns the testimonials on the current page. The returned slice
// aliases the controller's items; callers must not mutate it.
func (c *Controller) Visible() []domain.Testimonial {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return nil
	}

	start := c.page * c.itemsPerPage

	end := start + c.itemsPerPage
	if end > len(c.items) {
		end = len(c.items)
	}

	return c.items[start:end]
}

// Next advances one page, wrapping to the first page after the last.
func (c *Controller) Next() {
	c.mu.Lock()

	if pages := c.totalPagesLocked(); pages > 0 {
		c.page = (c.page + 1) % pages
	}

	c.mu.Unlock()
	c.requestRescan()
}

// Prev moves back one page, wrapping to the last page from the first.
func (c *Controller) Prev() {
	c.mu.Lock()

	if pages := c.totalPagesLocked(); pages > 0 {
		c.page = (c.page - 1 + pages) % pages
	}

	c.mu.Unlock()
	c.requestRescan()
}

// GoTo jumps to the given page. Out-of-range indexes are ignored.
func (c *Controller) GoTo(page int) {
	c.mu.Lock()

	moved := false
	if page >= 0 && page < c.totalPagesLocked() {
		c.page = page
		moved = true
	}

	c.mu.Unlock()

	if moved {
		c.requestRescan()
	}
}

// SetViewportWidth recomputes the page size from the new width and clamps
// the current page if the layout now has fewer pages.
func (c *Controller) SetViewportWidth(width int) {
	c.mu.Lock()

	c.itemsPerPage = ItemsPerPageForWidth(width)

	if pages := c.totalPagesLocked(); c.page >= pages {
		c.page = pages - 1
		if c.page < 0 {
			c.page = 0
		}
	}

	changed := c.autoSlide && len(c.items) > c.itemsPerPage
	running := c.stopAuto != nil
	c.mu.Unlock()

	// A wider viewport can make auto-advance pointless (everything fits on
	// one page) and a narrower one can make it needed again.
	switch {
	case changed && !running:
		c.startAutoSlide()
	case !changed && running:
		c.stopAutoSlide()
	}
}

// UpdateTestimonials replaces the item list and clamps the current page.
func (c *Controller) UpdateTestimonials(items []domain.Testimonial) {
	c.mu.Lock()

	c.items = items

	if pages := c.totalPagesLocked(); c.page >= pages {
		c.page = pages - 1
		if c.page < 0 {
			c.page = 0
		}
	}

	c.mu.Unlock()
	c.requestRescan()
}

// RefreshEmbeds schedules an embed re-scan cycle outside a page transition,
// for callers that replaced rendered markup directly.
func (c *Controller) RefreshEmbeds() {
	c.requestRescan()
}

// Close stops the auto-advance timer. The controller must not be used after
// Close; pending re-scan requests are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stopAutoSlide()
}

// startAutoSlide begins the recurring Next timer.
func (c *Controller) startAutoSlide() {
	c.mu.Lock()

	if c.stopAuto != nil || c.closed {
		c.mu.Unlock()
		return
	}

	stop := make(chan struct{})
	c.stopAuto = stop
	interval := c.slideInterval
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Next()
			}
		}
	}()
}

// stopAutoSlide cancels the recurring timer if it is running.
func (c *Controller) stopAutoSlide() {
	c.mu.Lock()
	stop := c.stopAuto
	c.stopAuto = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// requestRescan schedules embed script re-scans after a transition.
func (c *Controller) requestRescan() {
	c.mu.Lock()
	loader := c.loader
	closed := c.closed
	c.mu.Unlock()

	if loader == nil || closed {
		return
	}

	loader.ScheduleRescan(rescanDelays...)
}

// Prefetch populates the cache for every embed testimonial in the list using
// the given fetch function. Fetches for distinct URLs run concurrently; each
// failure is recorded as a miss (nil entry) and never fails the batch, since
// render falls back per card.
func Prefetch(ctx context.Context, cache *EmbedCache, items []domain.Testimonial, fetch func(context.Context, string) (string, error)) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	seen := make(map[string]struct{})

	for _, item := range items {
		if !item.IsEmbed || item.OriginalURL == "" {
			continue
		}

		if _, dup := seen[item.OriginalURL]; dup {
			continue
		}
		seen[item.OriginalURL] = struct{}{}

		url := item.OriginalURL

		g.Go(func() error {
			html, err := fetch(ctx, url)
			if err != nil {
				cache.SetMiss(url)
				return nil
			}

			cache.Set(url, html)

			return nil
		})
	}

	_ = g.Wait()
}
