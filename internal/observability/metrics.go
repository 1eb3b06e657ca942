package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// recommendation service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec // labels: outcome={success,no_catalog,no_scorer,no_candidates,scoring_error}
	RequestDuration prometheus.Histogram

	// Per-request candidate accounting.
	CandidatesPerRequest prometheus.Histogram
	FacilitiesSkipped    prometheus.Counter
	NonFiniteScores      prometheus.Counter

	// Startup data gauges.
	CatalogFacilities  prometheus.Gauge
	CatalogSheets      prometheus.Gauge
	CatalogDroppedRows prometheus.Gauge
	ModelLoaded        prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CandidatesPerRequest,
		m.FacilitiesSkipped,
		m.NonFiniteScores,
		m.CatalogFacilities,
		m.CatalogSheets,
		m.CatalogDroppedRows,
		m.ModelLoaded,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parking_rec",
			Name:      "requests_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parking_rec",
			Name:      "request_duration_seconds",
			Help:      "Duration of a complete build-score-rank cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		CandidatesPerRequest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parking_rec",
			Name:      "candidates_per_request",
			Help:      "Number of facilities that produced a usable feature vector.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		FacilitiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parking_rec",
			Name:      "facilities_skipped_total",
			Help:      "Facility records skipped during feature building.",
		}),
		NonFiniteScores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parking_rec",
			Name:      "non_finite_scores_total",
			Help:      "Model scores sanitized to null because they were NaN or infinite.",
		}),
		CatalogFacilities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parking_rec",
			Name:      "catalog_facilities",
			Help:      "Facility records loaded at startup.",
		}),
		CatalogSheets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parking_rec",
			Name:      "catalog_sheets",
			Help:      "Workbook sheets read at startup.",
		}),
		CatalogDroppedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parking_rec",
			Name:      "catalog_dropped_rows",
			Help:      "Workbook rows dropped at load for missing coordinates.",
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parking_rec",
			Name:      "model_loaded",
			Help:      "1 when the scoring artifact loaded successfully, 0 otherwise.",
		}),
	}
}
