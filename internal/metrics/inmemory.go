package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GeocodeRequests        map[string]uint64 // by outcome
	GeocodeDurationCount   uint64
	GeocodeDurationTotalNs int64
	GeocodeCache           map[string]uint64 // by result
	PlacesCreated          uint64
	PlacesUpdated          uint64
	PlacesDeleted          uint64
	PlaceFailures          map[string]uint64 // keyed "op:kind"
	AssetsCommitted        uint64
	AssetCleanupFailures   map[string]uint64 // by stage
	RateLimited            uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	geocodeDurationCount   uint64
	geocodeDurationTotalNs int64
	placesCreated          uint64
	placesUpdated          uint64
	placesDeleted          uint64
	assetsCommitted        uint64
	rateLimited            uint64

	mu                   sync.Mutex
	geocodeRequests      map[string]uint64
	geocodeCache         map[string]uint64
	placeFailures        map[string]uint64
	assetCleanupFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		geocodeRequests:      make(map[string]uint64),
		geocodeCache:         make(map[string]uint64),
		placeFailures:        make(map[string]uint64),
		assetCleanupFailures: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		GeocodeRequests:        copyCounts(m.geocodeRequests),
		GeocodeDurationCount:   atomic.LoadUint64(&m.geocodeDurationCount),
		GeocodeDurationTotalNs: atomic.LoadInt64(&m.geocodeDurationTotalNs),
		GeocodeCache:           copyCounts(m.geocodeCache),
		PlacesCreated:          atomic.LoadUint64(&m.placesCreated),
		PlacesUpdated:          atomic.LoadUint64(&m.placesUpdated),
		PlacesDeleted:          atomic.LoadUint64(&m.placesDeleted),
		PlaceFailures:          copyCounts(m.placeFailures),
		AssetsCommitted:        atomic.LoadUint64(&m.assetsCommitted),
		AssetCleanupFailures:   copyCounts(m.assetCleanupFailures),
		RateLimited:            atomic.LoadUint64(&m.rateLimited),
	}
}

// ObserveGeocode records a geocoding lookup and its duration.
func (m *InMemoryRecorder) ObserveGeocode(outcome string, duration time.Duration) {
	atomic.AddUint64(&m.geocodeDurationCount, 1)
	atomic.AddInt64(&m.geocodeDurationTotalNs, duration.Nanoseconds())
	m.inc(m.geocodeRequests, outcome)
}

// IncGeocodeCache increments the geocode cache counter for result.
func (m *InMemoryRecorder) IncGeocodeCache(result string) {
	m.inc(m.geocodeCache, result)
}

// IncPlaceCreated increments place created counter.
func (m *InMemoryRecorder) IncPlaceCreated() {
	atomic.AddUint64(&m.placesCreated, 1)
}

// IncPlaceUpdated increments place updated counter.
func (m *InMemoryRecorder) IncPlaceUpdated() {
	atomic.AddUint64(&m.placesUpdated, 1)
}

// IncPlaceDeleted increments place deleted counter.
func (m *InMemoryRecorder) IncPlaceDeleted() {
	atomic.AddUint64(&m.placesDeleted, 1)
}

// IncPlaceOperationFailed counts a failed place operation by op and error kind.
func (m *InMemoryRecorder) IncPlaceOperationFailed(op, kind string) {
	m.inc(m.placeFailures, op+":"+kind)
}

// IncAssetCommitted increments the committed asset counter.
func (m *InMemoryRecorder) IncAssetCommitted() {
	atomic.AddUint64(&m.assetsCommitted, 1)
}

// IncAssetCleanupFailed counts an asset operation that failed after the fact.
func (m *InMemoryRecorder) IncAssetCleanupFailed(stage string) {
	m.inc(m.assetCleanupFailures, stage)
}

// IncRateLimited increments the rejected request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
