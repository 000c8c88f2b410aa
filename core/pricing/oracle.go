// Package pricing - commodity price oracle
package pricing

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariff-engine/internal/errors"
	"tariff-engine/internal/logging"
)

// Feed fetches live commodity prices from an external source.
// Implementations must bound the call with a timeout.
type Feed interface {
	// FetchPrice returns the current price per kg for a commodity
	FetchPrice(ctx context.Context, commodity string) (decimal.Decimal, error)
}

// CommodityStatus describes the cache state of one tracked commodity
type CommodityStatus struct {
	// Cached reports whether an entry exists
	Cached bool `json:"cached"`

	// Price is the cached price, when cached
	Price decimal.Decimal `json:"price,omitempty"`

	// LastUpdated is when the entry was fetched, when cached
	LastUpdated time.Time `json:"last_updated,omitempty"`

	// AgeHours is the entry age rounded to hours, when cached
	AgeHours int `json:"age_hours,omitempty"`

	// Expired reports whether the entry is older than the freshness window
	Expired bool `json:"expired,omitempty"`
}

// Oracle resolves current unit prices for a fixed set of tracked
// commodities. Resolution order: fresh cache, live feed, stale cache,
// static fallback. The cache/fallback chain is the resilience mechanism;
// the oracle never retries the feed.
type Oracle struct {
	feed     Feed
	cache    *Cache
	ttl      time.Duration
	tracked  []string
	fallback map[string]decimal.Decimal
	log      *zap.Logger
	now      func() time.Time
}

// Option configures an Oracle
type Option func(*Oracle)

// WithClock overrides the oracle clock, for tests
func WithClock(now func() time.Time) Option {
	return func(o *Oracle) { o.now = now }
}

// WithFallback sets the static fallback price table (USD per kg)
func WithFallback(prices map[string]decimal.Decimal) Option {
	return func(o *Oracle) {
		o.fallback = make(map[string]decimal.Decimal, len(prices))
		for name, price := range prices {
			o.fallback[strings.ToLower(name)] = price
		}
	}
}

// NewOracle creates an Oracle over the given feed and cache. The tracked
// set is fixed at construction; untracked commodities are never queried.
func NewOracle(feed Feed, cache *Cache, ttl time.Duration, tracked []string, opts ...Option) *Oracle {
	o := &Oracle{
		feed:     feed,
		cache:    cache,
		ttl:      ttl,
		fallback: make(map[string]decimal.Decimal),
		log:      logging.Logger,
		now:      time.Now,
	}
	for _, name := range tracked {
		o.tracked = append(o.tracked, strings.ToLower(name))
	}
	sort.Strings(o.tracked)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Tracked returns the tracked commodity names in sorted order
func (o *Oracle) Tracked() []string {
	out := make([]string, len(o.tracked))
	copy(out, o.tracked)
	return out
}

// Tracks reports whether the commodity is in the tracked set
func (o *Oracle) Tracks(commodity string) bool {
	name := strings.ToLower(commodity)
	for _, t := range o.tracked {
		if t == name {
			return true
		}
	}
	return false
}

// Price resolves the current price per kg for a tracked commodity.
// Returns a PRICING_ERROR when the commodity is untracked or when the
// feed, cache, and fallback table all come up empty.
func (o *Oracle) Price(ctx context.Context, commodity string) (decimal.Decimal, error) {
	name := strings.ToLower(commodity)
	if !o.Tracks(name) {
		return decimal.Zero, errors.Newf(errors.TypePricing, "commodity not tracked: %s", commodity)
	}

	if entry, ok := o.cache.Get(name); ok && o.now().Sub(entry.FetchedAt) < o.ttl {
		o.log.Debug("using cached price",
			zap.String("commodity", name),
			zap.String("price", entry.Price.String()))
		return entry.Price, nil
	}

	price, err := o.feed.FetchPrice(ctx, name)
	if err == nil {
		o.cache.Set(name, Entry{Price: price, FetchedAt: o.now()})
		o.log.Info("fetched fresh price",
			zap.String("commodity", name),
			zap.String("price", price.String()))
		return price, nil
	}

	// Feed failed: a stale entry is still better than nothing, and better
	// than the static fallback.
	if entry, ok := o.cache.Get(name); ok {
		o.log.Warn("feed failed, using stale cached price",
			zap.String("commodity", name),
			zap.String("price", entry.Price.String()),
			zap.Error(err))
		return entry.Price, nil
	}

	if fallback, ok := o.fallback[name]; ok {
		o.log.Warn("feed failed, using fallback price",
			zap.String("commodity", name),
			zap.String("price", fallback.String()),
			zap.Error(err))
		return fallback, nil
	}

	return decimal.Zero, errors.PriceUnavailable(name, err)
}

// AllPrices resolves every tracked commodity. Commodities that cannot be
// priced are omitted; the map never carries partial failures as errors.
func (o *Oracle) AllPrices(ctx context.Context) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(o.tracked))
	for _, name := range o.tracked {
		price, err := o.Price(ctx, name)
		if err != nil {
			o.log.Error("failed to resolve price",
				zap.String("commodity", name),
				zap.Error(err))
			continue
		}
		prices[name] = price
	}
	return prices
}

// CacheStatus reports the cache state for every tracked commodity
func (o *Oracle) CacheStatus() map[string]CommodityStatus {
	status := make(map[string]CommodityStatus, len(o.tracked))
	for _, name := range o.tracked {
		entry, ok := o.cache.Get(name)
		if !ok {
			status[name] = CommodityStatus{Cached: false}
			continue
		}
		age := o.now().Sub(entry.FetchedAt)
		status[name] = CommodityStatus{
			Cached:      true,
			Price:       entry.Price,
			LastUpdated: entry.FetchedAt,
			AgeHours:    int(age.Round(time.Hour).Hours()),
			Expired:     age >= o.ttl,
		}
	}
	return status
}

// ClearCache evicts all cached prices. Administrative operation.
func (o *Oracle) ClearCache() {
	o.cache.Clear()
	o.log.Info("price cache cleared")
}
