package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	apiRequestsTotal         *prometheus.CounterVec
	apiLatencySeconds        *prometheus.HistogramVec
	apiErrorsTotal           *prometheus.CounterVec
	activitySubmissionsTotal prometheus.Counter
	activityReviewsTotal     *prometheus.CounterVec
	categoryCacheTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarship_api_requests_total",
			Help: "API requests served, by area (admin, scholar, auth, public).",
		}, []string{"area", "method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scholarship_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"area", "method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarship_api_errors_total",
			Help: "Error responses returned by the API.",
		}, []string{"area", "method", "route", "status"})

		activitySubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_submissions_total",
			Help: "Total number of activities logged by scholars.",
		})

		activityReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_reviews_total",
			Help: "Total number of activity review decisions recorded.",
		}, []string{"decision"})

		categoryCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "category_cache_requests_total",
			Help: "Category list lookups partitioned by cache outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			activitySubmissionsTotal,
			activityReviewsTotal,
			categoryCacheTotal,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for 4xx and 5xx responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ActivitySubmissions counts newly logged activities.
func ActivitySubmissions() prometheus.Counter {
	RegisterMetrics()
	return activitySubmissionsTotal
}

// ActivityReviews counts review decisions by outcome.
func ActivityReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return activityReviewsTotal
}

// CategoryCacheRequests counts category lookups by hit, miss or error.
func CategoryCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return categoryCacheTotal
}
