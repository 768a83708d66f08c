package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics covers the discovery pipeline: cache behaviour, candidate
// volumes, fairness sampling and place-lookup degradation.
type SearchMetrics struct {
	cacheTotal      *prometheus.CounterVec
	searchLatency   *prometheus.HistogramVec
	candidates      *prometheus.HistogramVec
	fairnessTotal   prometheus.Counter
	placeLookup     *prometheus.CounterVec
	invalidateTotal *prometheus.CounterVec
}

func NewSearchMetrics(registry *prometheus.Registry, serviceName string) *SearchMetrics {
	if registry == nil {
		registry = NewMetricsRegistry()
	}

	constLabels := prometheus.Labels{}
	if serviceName != "" {
		constLabels["service"] = serviceName
	}

	cacheTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "search",
		Subsystem:   "cache",
		Name:        "lookups_total",
		Help:        "Search cache lookups by endpoint and outcome.",
		ConstLabels: constLabels,
	}, []string{"endpoint", "outcome"})

	searchLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "search",
		Subsystem:   "pipeline",
		Name:        "duration_seconds",
		Help:        "End-to-end search pipeline duration in seconds.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint"})

	candidates := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "search",
		Subsystem:   "pipeline",
		Name:        "candidates",
		Help:        "Candidate set size after filtering.",
		Buckets:     []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	}, []string{"endpoint"})

	fairnessTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "search",
		Subsystem:   "pipeline",
		Name:        "fairness_samples_total",
		Help:        "Requests served by randomized fairness sampling.",
		ConstLabels: constLabels,
	})

	placeLookup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "search",
		Subsystem:   "places",
		Name:        "lookups_total",
		Help:        "Place lookup calls by operation and result.",
		ConstLabels: constLabels,
	}, []string{"operation", "result"})

	invalidateTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "search",
		Subsystem:   "cache",
		Name:        "invalidations_total",
		Help:        "Cache invalidation events by result.",
		ConstLabels: constLabels,
	}, []string{"result"})

	registry.MustRegister(cacheTotal, searchLatency, candidates, fairnessTotal, placeLookup, invalidateTotal)

	return &SearchMetrics{
		cacheTotal:      cacheTotal,
		searchLatency:   searchLatency,
		candidates:      candidates,
		fairnessTotal:   fairnessTotal,
		placeLookup:     placeLookup,
		invalidateTotal: invalidateTotal,
	}
}

// ObserveCache records one cache lookup outcome ("hit", "miss" or "bypass").
func (m *SearchMetrics) ObserveCache(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveSearch records pipeline duration and candidate volume.
func (m *SearchMetrics) ObserveSearch(endpoint string, candidates int, duration time.Duration) {
	if m == nil {
		return
	}
	m.searchLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
	m.candidates.WithLabelValues(endpoint).Observe(float64(candidates))
}

// ObserveFairnessSample counts one randomized-sampling response.
func (m *SearchMetrics) ObserveFairnessSample() {
	if m == nil {
		return
	}
	m.fairnessTotal.Inc()
}

// ObservePlaceLookup records a place lookup call result.
func (m *SearchMetrics) ObservePlaceLookup(operation, result string) {
	if m == nil {
		return
	}
	m.placeLookup.WithLabelValues(operation, result).Inc()
}

// ObserveInvalidation records a cache invalidation event result.
func (m *SearchMetrics) ObserveInvalidation(result string) {
	if m == nil {
		return
	}
	m.invalidateTotal.WithLabelValues(result).Inc()
}
