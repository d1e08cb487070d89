package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/placeshare/placeshare/internal/model"
)

// Cache key prefixes.
const (
	geocodeKeyPrefix  = "geocode:"
	negCacheKeySuffix = ":neg"
)

// GetCoordinates returns cached coordinates for a geocode key.
// The boolean is false on a cache miss or a corrupted entry.
func (c *Cache) GetCoordinates(ctx context.Context, key string) (model.Coordinates, bool, error) {
	result, err := c.client.HGetAll(ctx, geocodeKeyPrefix+key).Result()
	if err != nil {
		return model.Coordinates{}, false, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(result) == 0 {
		return model.Coordinates{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(result["lat"], 64)
	lng, lngErr := strconv.ParseFloat(result["lng"], 64)
	if latErr != nil || lngErr != nil {
		// Corrupted cache entry - treat as miss
		return model.Coordinates{}, false, nil
	}

	return model.Coordinates{Lat: lat, Lng: lng}, true, nil
}

// SetCoordinates caches resolved coordinates and clears any negative entry.
func (c *Cache) SetCoordinates(ctx context.Context, key string, coords model.Coordinates, ttl time.Duration) error {
	fullKey := geocodeKeyPrefix + key

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, fullKey, map[string]any{
		"lat": strconv.FormatFloat(coords.Lat, 'f', -1, 64),
		"lng": strconv.FormatFloat(coords.Lng, 'f', -1, 64),
	})
	pipe.Expire(ctx, fullKey, ttl)
	pipe.Del(ctx, fullKey+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache coordinates: %w", err)
	}
	return nil
}

// IsUnresolvable reports whether a geocode key is in the negative cache.
func (c *Cache) IsUnresolvable(ctx context.Context, key string) (bool, error) {
	exists, err := c.client.Exists(ctx, geocodeKeyPrefix+key+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}
	return exists > 0, nil
}

// SetUnresolvable marks a geocode key as having no match.
func (c *Cache) SetUnresolvable(ctx context.Context, key string, ttl time.Duration) error {
	err := c.client.SetEx(ctx, geocodeKeyPrefix+key+negCacheKeySuffix, "", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}
	return nil
}
