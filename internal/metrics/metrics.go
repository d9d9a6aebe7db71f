// Package metrics exposes Prometheus collectors for analysis runs.
package metrics

import (
	"time"

	"github.com/moolen/casa/internal/analysis"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for analysis observability.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // Completed period analyses, by period
	AnalysisDuration prometheus.Histogram   // Wall time of a single period analysis
	FlaggedRoutes    *prometheus.GaugeVec   // Routes per priority in the latest analysis
	CacheRequests    *prometheus.CounterVec // Result cache lookups, by hit/miss
	DatasetCases     prometheus.Gauge       // Cases in the loaded dataset
}

// New creates the collectors and registers them with reg.
// Passing a private registry keeps tests isolated from the global one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casa_analyses_total",
			Help: "Total number of completed period analyses",
		}, []string{"period"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "casa_analysis_duration_seconds",
			Help:    "Duration of a single period analysis",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		FlaggedRoutes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "casa_flagged_routes",
			Help: "Number of routes per priority in the most recent analysis",
		}, []string{"priority"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "casa_cache_requests_total",
			Help: "Result cache lookups",
		}, []string{"result"}),
		DatasetCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "casa_dataset_cases",
			Help: "Number of INAD cases in the loaded dataset",
		}),
	}

	reg.MustRegister(m.AnalysesTotal, m.AnalysisDuration, m.FlaggedRoutes, m.CacheRequests, m.DatasetCases)
	return m
}

// ObserveAnalysis records one finished period analysis.
func (m *Metrics) ObserveAnalysis(period string, d time.Duration, s analysis.Summary) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(period).Inc()
	m.AnalysisDuration.Observe(d.Seconds())

	counts := map[analysis.Priority]int{
		analysis.PriorityHigh:       s.HighPriority,
		analysis.PriorityWatchList:  s.WatchList,
		analysis.PriorityClear:      s.Clear,
		analysis.PriorityUnreliable: s.Unreliable,
		analysis.PriorityNoData:     s.NoData,
	}
	for p, n := range counts {
		m.FlaggedRoutes.WithLabelValues(string(p)).Set(float64(n))
	}
}

// ObserveCache records a result cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// SetDatasetCases records the size of the loaded dataset.
func (m *Metrics) SetDatasetCases(n int) {
	if m == nil {
		return
	}
	m.DatasetCases.Set(float64(n))
}
