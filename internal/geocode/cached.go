package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/placeshare/placeshare/internal/metrics"
	"github.com/placeshare/placeshare/internal/model"
)

// Cache result labels reported to the metrics recorder.
const (
	cacheHit         = "hit"
	cacheNegativeHit = "negative_hit"
	cacheMiss        = "miss"
	cacheError       = "error"
)

// ResultCache stores geocoding results. *cache.Cache implements it.
type ResultCache interface {
	GetCoordinates(ctx context.Context, key string) (model.Coordinates, bool, error)
	SetCoordinates(ctx context.Context, key string, coords model.Coordinates, ttl time.Duration) error
	IsUnresolvable(ctx context.Context, key string) (bool, error)
	SetUnresolvable(ctx context.Context, key string, ttl time.Duration) error
}

// CachedResolver wraps a Resolver with a shared result cache.
// Unresolvable addresses are cached for negativeTTL; unavailability is never
// cached so the next request retries the service. Cache errors fall through
// to the inner resolver.
type CachedResolver struct {
	inner       Resolver
	cache       ResultCache
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner Resolver, cache ResultCache, ttl, negativeTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *CachedResolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CachedResolver{
		inner:       inner,
		cache:       cache,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		logger:      logger.With("component", "geocode.cache"),
		metrics:     recorder,
	}
}

// Resolve returns cached coordinates when present, otherwise delegates.
func (c *CachedResolver) Resolve(ctx context.Context, address string) (model.Coordinates, error) {
	key := CacheKey(address)

	coords, ok, err := c.cache.GetCoordinates(ctx, key)
	switch {
	case err != nil:
		c.metrics.IncGeocodeCache(cacheError)
		c.logger.Warn("geocode cache read failed", "error", err)
	case ok:
		c.metrics.IncGeocodeCache(cacheHit)
		return coords, nil
	default:
		if neg, err := c.cache.IsUnresolvable(ctx, key); err != nil {
			c.metrics.IncGeocodeCache(cacheError)
			c.logger.Warn("geocode negative cache read failed", "error", err)
		} else if neg {
			c.metrics.IncGeocodeCache(cacheNegativeHit)
			return model.Coordinates{}, ErrUnresolvableAddress
		} else {
			c.metrics.IncGeocodeCache(cacheMiss)
		}
	}

	coords, err = c.inner.Resolve(ctx, address)
	switch {
	case err == nil:
		if err := c.cache.SetCoordinates(ctx, key, coords, c.ttl); err != nil {
			c.logger.Warn("geocode cache write failed", "error", err)
		}
	case errors.Is(err, ErrUnresolvableAddress) && c.negativeTTL > 0:
		if err := c.cache.SetUnresolvable(ctx, key, c.negativeTTL); err != nil {
			c.logger.Warn("geocode negative cache write failed", "error", err)
		}
	}
	return coords, err
}

// CacheKey derives a cache key from an address. Addresses that differ only
// in case or whitespace share a key.
func CacheKey(address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}
