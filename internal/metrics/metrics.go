// Package metrics exposes Prometheus collectors for the search service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacantes_searches_total",
			Help: "Total number of searches handled, labeled by outcome and error category.",
		},
		[]string{"outcome", "category"},
	)

	searchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vacantes_search_duration_seconds",
			Help:    "Histogram of end-to-end search latencies, labeled by outcome.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 280, 600},
		},
		[]string{"outcome"},
	)

	scrapePagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacantes_scrape_pages_total",
			Help: "Total number of listing pages fetched, labeled by fetch mode and status.",
		},
		[]string{"mode", "status"},
	)

	listingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vacantes_listings_total",
			Help: "Total number of unique listings scraped.",
		},
	)

	rateLimitDelaySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vacantes_scrape_rate_limit_delay_seconds",
			Help:    "Histogram of rate limit wait durations before fetching a page.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	artifactRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacantes_artifact_requests_total",
			Help: "Total number of artifact downloads, labeled by artifact and status.",
		},
		[]string{"artifact", "status"},
	)

	geocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacantes_geocode_requests_total",
			Help: "Total number of geocode proxy requests, labeled by result.",
		},
		[]string{"result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120, 300},
		},
		[]string{"method", "route"},
	)

	once sync.Once
)

// Init registers the collectors with the default Prometheus registry.
// It is safe to call this function multiple times. Observations made before
// Init are kept; they just are not exported until registration.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			searchesTotal,
			searchDurationSeconds,
			scrapePagesTotal,
			listingsTotal,
			rateLimitDelaySeconds,
			artifactRequestsTotal,
			geocodeRequestsTotal,
			httpRequestsTotal,
			httpRequestDurationSeconds,
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records a finished search.
func ObserveSearch(outcome, category string, duration time.Duration) {
	if category == "" {
		category = "none"
	}
	searchesTotal.WithLabelValues(outcome, category).Inc()
	searchDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveScrapePage records a fetched listing page.
func ObserveScrapePage(mode, status string) {
	scrapePagesTotal.WithLabelValues(mode, status).Inc()
}

// ObserveListings adds n scraped listings.
func ObserveListings(n int) {
	if n > 0 {
		listingsTotal.Add(float64(n))
	}
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	rateLimitDelaySeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveArtifactRequest records an artifact download attempt.
func ObserveArtifactRequest(artifact, status string) {
	artifactRequestsTotal.WithLabelValues(artifact, status).Inc()
}

// ObserveGeocode records a geocode proxy result.
func ObserveGeocode(result string) {
	geocodeRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
