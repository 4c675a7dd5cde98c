package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	similarityReportsTotal    *prometheus.CounterVec
	similarityPairsEvaluated  prometheus.Histogram
	similarityFlaggedStudents prometheus.Histogram
	similarityBuildSeconds    prometheus.Histogram
	similarityAlertsPublished *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		similarityReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_similarity_reports_total",
			Help: "Similarity reports served, labelled by cache outcome.",
		}, []string{"source"})

		similarityPairsEvaluated = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_similarity_pairs_evaluated",
			Help:    "Number of submission pairs scored per report.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		})

		similarityFlaggedStudents = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_similarity_flagged_students",
			Help:    "Number of flagged students per report.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		})

		similarityBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_similarity_build_seconds",
			Help:    "Time spent building similarity reports.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		})

		similarityAlertsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_similarity_alerts_total",
			Help: "Similarity alerts published, labelled by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			similarityReportsTotal,
			similarityPairsEvaluated,
			similarityFlaggedStudents,
			similarityBuildSeconds,
			similarityAlertsPublished,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SimilarityReports counts served reports by source ("cache" or "computed").
func SimilarityReports() *prometheus.CounterVec {
	RegisterMetrics()
	return similarityReportsTotal
}

// SimilarityPairsEvaluated observes pair counts per computed report.
func SimilarityPairsEvaluated() prometheus.Histogram {
	RegisterMetrics()
	return similarityPairsEvaluated
}

// SimilarityFlaggedStudents observes flagged student counts per computed report.
func SimilarityFlaggedStudents() prometheus.Histogram {
	RegisterMetrics()
	return similarityFlaggedStudents
}

// SimilarityBuildDuration observes report build time.
func SimilarityBuildDuration() prometheus.Histogram {
	RegisterMetrics()
	return similarityBuildSeconds
}

// SimilarityAlerts counts alert publish outcomes.
func SimilarityAlerts() *prometheus.CounterVec {
	RegisterMetrics()
	return similarityAlertsPublished
}
