// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Geocoding metrics
	ObserveGeocode(outcome string, duration time.Duration) // outcome: "success", "unresolvable", "unavailable"
	IncGeocodeCache(result string)                         // result: "hit", "negative_hit", "miss", "error"

	// Place lifecycle metrics
	IncPlaceCreated()
	IncPlaceUpdated()
	IncPlaceDeleted()
	IncPlaceOperationFailed(op, kind string)

	// Asset metrics
	IncAssetCommitted()
	IncAssetCleanupFailed(stage string) // stage: "commit", "discard"

	// HTTP metrics
	IncRateLimited()
}

