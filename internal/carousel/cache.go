package carousel

import "sync"

// EmbedCache stores fetched embed HTML keyed by post URL. A recorded miss is
// distinct from an absent entry: a miss means the fetch was attempted and
// failed, so render should use the fallback card instead of waiting.
type EmbedCache struct {
	mu      sync.RWMutex
	entries map[string]embedEntry
}

type embedEntry struct {
	html string
	ok   bool
}

// NewEmbedCache creates an empty cache.
func NewEmbedCache() *EmbedCache {
	return &EmbedCache{entries: make(map[string]embedEntry)}
}

// Get returns the cached HTML for a post URL. The second return reports
// whether the URL has been resolved at all; a resolved miss returns ("",
// true) with ok=false on the first value being empty.
func (c *EmbedCache) Get(url string) (html string, resolved bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, resolved := c.entries[url]

	return entry.html, resolved
}

// Loaded reports whether the URL resolved to real embed markup.
func (c *EmbedCache) Loaded(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.entries[url].ok
}

// Set records successfully fetched embed HTML. Setting the same URL again
// overwrites the previous entry.
func (c *EmbedCache) Set(url, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = embedEntry{html: html, ok: true}
}

// SetMiss records a failed fetch so render can fall back without retrying.
func (c *EmbedCache) SetMiss(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = embedEntry{}
}

// Len returns the number of resolved URLs, hits and misses both.
func (c *EmbedCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
