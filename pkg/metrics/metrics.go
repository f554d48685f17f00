package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors.
// A nil *Metrics is valid and records nothing.
// ⭐ SSOT: 파이프라인 메트릭은 여기서만 정의
type Metrics struct {
	registry     *prometheus.Registry
	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	tickerFaults *prometheus.CounterVec
	records      *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "runs_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		tickerFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "ticker_faults_total",
			Help:      "Per-ticker soft failures by stage and reason.",
		}, []string{"stage", "reason"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "records_total",
			Help:      "Records emitted by the score aggregator.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "run_cache_lookups_total",
			Help:      "Run cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.runsTotal, m.runDuration, m.tickerFaults, m.records, m.cacheLookups)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished run
func (m *Metrics) ObserveRun(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// TickerFault records one per-ticker soft failure
func (m *Metrics) TickerFault(stage, reason string) {
	if m == nil {
		return
	}
	m.tickerFaults.WithLabelValues(stage, reason).Inc()
}

// Records adds n records with the given outcome (scored, excluded)
func (m *Metrics) Records(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.records.WithLabelValues(outcome).Add(float64(n))
}

// CacheLookup records a run cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
