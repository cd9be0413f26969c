// Package metrics defines the Prometheus metrics of the analysis server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moolen/upgradelens/internal/models"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the analysis counters and histograms.
type Metrics struct {
	AnalysesTotal   *prometheus.CounterVec   // analyses by operation and outcome
	AnalysisSeconds *prometheus.HistogramVec // pipeline latency by operation
	FindingsTotal   *prometheus.CounterVec   // classifications by category
	BreakingChanges prometheus.Counter       // breaking change records emitted
	CacheHits       prometheus.Counter       // result cache hits
	CacheMisses     prometheus.Counter       // result cache misses
	RegistryReloads *prometheus.CounterVec   // pattern reloads by outcome
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upgradelens_analyses_total",
			Help: "Total number of analysis requests",
		}, []string{"operation", "outcome"}),
		AnalysisSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upgradelens_analysis_duration_seconds",
			Help:    "Time spent analyzing a document",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		FindingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upgradelens_classifications_total",
			Help: "Total number of classification matches by category",
		}, []string{"category"}),
		BreakingChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upgradelens_breaking_changes_total",
			Help: "Total number of breaking change records emitted",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upgradelens_cache_hits_total",
			Help: "Total number of result cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upgradelens_cache_misses_total",
			Help: "Total number of result cache misses",
		}),
		RegistryReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upgradelens_registry_reloads_total",
			Help: "Total number of pattern registry reloads",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisSeconds,
		m.FindingsTotal,
		m.BreakingChanges,
		m.CacheHits,
		m.CacheMisses,
		m.RegistryReloads,
	)
	return m
}

// ObserveAnalysis records one successful analysis.
func (m *Metrics) ObserveAnalysis(operation string, elapsed time.Duration, r *models.AnalysisResult) {
	m.AnalysesTotal.WithLabelValues(operation, OutcomeSuccess).Inc()
	m.AnalysisSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
	for _, c := range r.Classifications {
		m.FindingsTotal.WithLabelValues(string(c.Category)).Inc()
	}
	m.BreakingChanges.Add(float64(len(r.BreakingChanges)))
}

// ObserveFailure records a rejected or failed analysis.
func (m *Metrics) ObserveFailure(operation, outcome string) {
	m.AnalysesTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}
