package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "placeshare"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	geocodeRequests    *prometheus.CounterVec // labels: outcome
	geocodeDuration    prometheus.Histogram
	geocodeCache       *prometheus.CounterVec // labels: result
	placeOperations    *prometheus.CounterVec // labels: op
	placeFailures      *prometheus.CounterVec // labels: op, kind
	assetsCommitted    prometheus.Counter
	assetCleanupFailed *prometheus.CounterVec // labels: stage
	rateLimited        prometheus.Counter
}

// NewPrometheus creates a recorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	m := &PrometheusRecorder{
		geocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by outcome.",
		}, []string{"outcome"}),
		geocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_duration_seconds",
			Help:      "Geocoding service request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		geocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		placeOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_operations_total",
			Help:      "Successful place operations.",
		}, []string{"op"}),
		placeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_operation_failures_total",
			Help:      "Failed place operations by error kind.",
		}, []string{"op", "kind"}),
		assetsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_committed_total",
			Help:      "Staged image assets promoted to permanent storage.",
		}),
		assetCleanupFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_cleanup_failures_total",
			Help:      "Asset commits or discards that failed and left files behind.",
		}, []string{"stage"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		m.geocodeRequests,
		m.geocodeDuration,
		m.geocodeCache,
		m.placeOperations,
		m.placeFailures,
		m.assetsCommitted,
		m.assetCleanupFailed,
		m.rateLimited,
	)

	return m
}

func (m *PrometheusRecorder) ObserveGeocode(outcome string, duration time.Duration) {
	m.geocodeRequests.WithLabelValues(outcome).Inc()
	m.geocodeDuration.Observe(duration.Seconds())
}

func (m *PrometheusRecorder) IncGeocodeCache(result string) {
	m.geocodeCache.WithLabelValues(result).Inc()
}

func (m *PrometheusRecorder) IncPlaceCreated() {
	m.placeOperations.WithLabelValues("create").Inc()
}

func (m *PrometheusRecorder) IncPlaceUpdated() {
	m.placeOperations.WithLabelValues("update").Inc()
}

func (m *PrometheusRecorder) IncPlaceDeleted() {
	m.placeOperations.WithLabelValues("delete").Inc()
}

func (m *PrometheusRecorder) IncPlaceOperationFailed(op, kind string) {
	m.placeFailures.WithLabelValues(op, kind).Inc()
}

func (m *PrometheusRecorder) IncAssetCommitted() {
	m.assetsCommitted.Inc()
}

func (m *PrometheusRecorder) IncAssetCleanupFailed(stage string) {
	m.assetCleanupFailed.WithLabelValues(stage).Inc()
}

func (m *PrometheusRecorder) IncRateLimited() {
	m.rateLimited.Inc()
}
