// Package metrics exposes Prometheus collectors for the crawl engine.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerPagesTotal           *prometheus.CounterVec
	crawlerWordsMergedTotal     prometheus.Counter
	crawlerRobotsDeniedTotal    prometheus.Counter
	crawlerDuplicateSkipsTotal  prometheus.Counter
	crawlerActiveFetches        prometheus.Gauge
	crawlerFetchDurationSeconds prometheus.Histogram
	crawlerRunDurationSeconds   prometheus.Histogram

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times.
func Init() {
	once.Do(func() {
		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total number of pages processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		crawlerWordsMergedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_words_merged_total",
				Help: "Total number of distinct per-page words merged into the aggregate.",
			},
		)

		crawlerRobotsDeniedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_robots_denied_total",
				Help: "Total number of URLs excluded by robots policy.",
			},
		)

		crawlerDuplicateSkipsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_duplicate_skips_total",
				Help: "Total number of URLs skipped because another task claimed them first.",
			},
		)

		crawlerActiveFetches = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_active_fetches",
				Help: "Number of fetch/parse calls currently in flight.",
			},
		)

		crawlerFetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of fetch/parse latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
		)

		crawlerRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_run_duration_seconds",
				Help:    "Histogram of whole-crawl wall-clock durations.",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		)
	})
}

// SanitizeSite reduces a URL to a lowercase hostname label, or "unknown".
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

// ObservePage increments the page counter for the given URL and status.
func ObservePage(rawURL string, status string) {
	crawlerPagesTotal.WithLabelValues(SanitizeSite(rawURL), status).Inc()
}

// ObserveWordsMerged adds the number of distinct words merged from one page.
func ObserveWordsMerged(n int) {
	if n > 0 {
		crawlerWordsMergedTotal.Add(float64(n))
	}
}

// ObserveRobotsDenied increments the robots exclusion counter.
func ObserveRobotsDenied() {
	crawlerRobotsDeniedTotal.Inc()
}

// ObserveDuplicateSkip increments the dedup skip counter.
func ObserveDuplicateSkip() {
	crawlerDuplicateSkipsTotal.Inc()
}

// IncActiveFetches increments the in-flight fetch gauge.
func IncActiveFetches() {
	crawlerActiveFetches.Inc()
}

// DecActiveFetches decrements the in-flight fetch gauge.
func DecActiveFetches() {
	crawlerActiveFetches.Dec()
}

// ObserveFetchDuration records one fetch/parse latency.
func ObserveFetchDuration(d time.Duration) {
	crawlerFetchDurationSeconds.Observe(d.Seconds())
}

// ObserveCrawlDuration records one whole-crawl duration.
func ObserveCrawlDuration(d time.Duration) {
	crawlerRunDurationSeconds.Observe(d.Seconds())
}
