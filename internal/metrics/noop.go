package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveGeocode is a no-op.
func (n *NoopRecorder) ObserveGeocode(outcome string, duration time.Duration) {}

// IncGeocodeCache is a no-op.
func (n *NoopRecorder) IncGeocodeCache(result string) {}

// IncPlaceCreated is a no-op.
func (n *NoopRecorder) IncPlaceCreated() {}

// IncPlaceUpdated is a no-op.
func (n *NoopRecorder) IncPlaceUpdated() {}

// IncPlaceDeleted is a no-op.
func (n *NoopRecorder) IncPlaceDeleted() {}

// IncPlaceOperationFailed is a no-op.
func (n *NoopRecorder) IncPlaceOperationFailed(op, kind string) {}

// IncAssetCommitted is a no-op.
func (n *NoopRecorder) IncAssetCommitted() {}

// IncAssetCleanupFailed is a no-op.
func (n *NoopRecorder) IncAssetCleanupFailed(stage string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
