// Package metrics exposes Prometheus collectors for the pipeline stages.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchTotal            *prometheus.CounterVec
	fetchBytesTotal       *prometheus.CounterVec
	fetchRetriesTotal     *prometheus.CounterVec
	fetchDurationSeconds  *prometheus.HistogramVec
	rateLimitDelaySeconds *prometheus.HistogramVec
	downloadFilesTotal    *prometheus.CounterVec
	extractJobsTotal      *prometheus.CounterVec
	extractActiveWorkers  prometheus.Gauge
	corpusYearFilesTotal  *prometheus.CounterVec
	discoveredURLsTotal   *prometheus.CounterVec
	publishedObjectsTotal prometheus.Counter
	httpRequestsTotal     *prometheus.CounterVec
	httpDurationSeconds   *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_fetch_total",
				Help: "Total number of fetch calls, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_fetch_bytes_total",
				Help: "Total number of response bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		fetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_fetch_retries_total",
				Help: "Total number of timeout retries, labeled by site.",
			},
			[]string{"site"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "magcorpus_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies including retries, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 600},
			},
			[]string{"site"},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "magcorpus_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		downloadFilesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_download_files_total",
				Help: "Total number of raw pages handled by the downloader, labeled by kind and status.",
			},
			[]string{"kind", "status"},
		)

		extractJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_extract_jobs_total",
				Help: "Total number of extraction jobs, labeled by status.",
			},
			[]string{"status"},
		)

		extractActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "magcorpus_extract_active_workers",
				Help: "Number of extraction workers currently processing a job.",
			},
		)

		corpusYearFilesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_year_files_total",
				Help: "Total number of year files considered by the assembler, labeled by status.",
			},
			[]string{"status"},
		)

		discoveredURLsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_discovered_urls_total",
				Help: "Total number of newly discovered URLs, labeled by kind.",
			},
			[]string{"kind"},
		)

		publishedObjectsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "magcorpus_published_objects_total",
				Help: "Total number of corpus files uploaded to the object store.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magcorpus_http_requests_total",
				Help: "Total number of requests served by the ops endpoint.",
			},
			[]string{"method", "route", "code"},
		)

		httpDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "magcorpus_http_request_duration_seconds",
				Help:    "Latency of requests served by the ops endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one completed fetch call.
func ObserveFetch(rawURL, outcome string, bytesFetched int, duration time.Duration) {
	Init()
	site := SanitizeSite(rawURL)
	fetchTotal.WithLabelValues(site, outcome).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
	fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveRetry records one timeout retry.
func ObserveRetry(rawURL string) {
	Init()
	fetchRetriesTotal.WithLabelValues(SanitizeSite(rawURL)).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveDownload records a downloader decision for one file.
// kind is "index" or "article"; status is "fetched", "skipped" or "failed".
func ObserveDownload(kind, status string) {
	Init()
	downloadFilesTotal.WithLabelValues(kind, status).Inc()
}

// ObserveExtractJob records a finished extraction job.
func ObserveExtractJob(status string) {
	Init()
	extractJobsTotal.WithLabelValues(status).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	extractActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	extractActiveWorkers.Dec()
}

// ObserveYearFile records an assembler decision for one year.
func ObserveYearFile(status string) {
	Init()
	corpusYearFilesTotal.WithLabelValues(status).Inc()
}

// ObserveDiscovered adds n newly discovered URLs of the given kind.
func ObserveDiscovered(kind string, n int) {
	Init()
	if n > 0 {
		discoveredURLsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObservePublished records one uploaded corpus file.
func ObservePublished() {
	Init()
	publishedObjectsTotal.Inc()
}

// ObserveHTTPRequest records one request served by the ops endpoint.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
