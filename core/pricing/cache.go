// Package pricing resolves current unit prices for tracked commodities.
// It owns a time-bounded cache and a static fallback table.
package pricing

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one cached commodity price
type Entry struct {
	// Price is the cached price per kg
	Price decimal.Decimal

	// FetchedAt is when the price was fetched from the feed
	FetchedAt time.Time
}

// Cache is a process-wide, mutex-guarded price cache. Writes are atomic
// per-key upserts; last writer wins. Constructed once and injected into
// the Oracle rather than living in package state.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get retrieves an entry
func (c *Cache) Get(commodity string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[commodity]
	return entry, ok
}

// Set upserts an entry
func (c *Cache) Set(commodity string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[commodity] = entry
}

// Clear evicts all entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
