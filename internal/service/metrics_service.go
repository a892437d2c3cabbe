package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/survey-api/internal/models"
)

// Image cleanup outcomes.
const (
	CleanupSucceeded = "succeeded"
	CleanupFailed    = "failed"
	CleanupQueued    = "queued"
)

// MetricsSnapshot is the JSON view of the in-process counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64                       `json:"requests_total"`
	AverageRequestDurationMs float64                      `json:"average_request_duration_ms"`
	CacheHits                uint64                       `json:"cache_hits"`
	CacheMisses              uint64                       `json:"cache_misses"`
	CacheHitRatio            float64                      `json:"cache_hit_ratio"`
	StoreQueryCount          uint64                       `json:"store_query_count"`
	AverageStoreQueryMs      float64                      `json:"average_store_query_ms"`
	Submissions              map[models.SurveyType]uint64 `json:"submissions"`
	SourceFailures           map[models.SurveyType]uint64 `json:"source_failures"`
	ImageCleanup             map[string]uint64            `json:"image_cleanup"`
	Goroutines               int                          `json:"goroutines"`
	GeneratedAt              time.Time                    `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	storeQueryLatency *prometheus.HistogramVec
	submissions       *prometheus.CounterVec
	sourceFailures    *prometheus.CounterVec
	imageCleanup      *prometheus.CounterVec

	cacheHitCount         uint64
	cacheMissCount        uint64
	requestCount          uint64
	requestDurationTotal  uint64
	storeQueryCount       uint64
	storeQueryDurationSum uint64

	studentSubmissions  uint64
	employerSubmissions uint64
	studentFailures     uint64
	employerFailures    uint64
	cleanupSucceeded    uint64
	cleanupFailed       uint64
	cleanupQueued       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	storeQueryLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "survey_store_query_duration_seconds",
		Help:    "Duration of survey store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "survey_type"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_submissions_total",
		Help: "Stored survey submissions by type",
	}, []string{"survey_type"})

	sourceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_source_failures_total",
		Help: "Survey listings that lost a source, by type",
	}, []string{"survey_type"})

	imageCleanup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_image_cleanup_total",
		Help: "Image cleanup attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		storeQueryLatency, submissions, sourceFailures, imageCleanup, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		storeQueryLatency: storeQueryLatency,
		submissions:       submissions,
		sourceFailures:    sourceFailures,
		imageCleanup:      imageCleanup,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreQuery records survey store timing.
func (m *MetricsService) ObserveStoreQuery(operation string, surveyType models.SurveyType, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeQueryLatency.WithLabelValues(operation, string(surveyType)).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeQueryCount, 1)
	atomic.AddUint64(&m.storeQueryDurationSum, uint64(duration.Nanoseconds()))
}

// RecordSubmission counts a stored survey.
func (m *MetricsService) RecordSubmission(surveyType models.SurveyType) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(surveyType)).Inc()
	switch surveyType {
	case models.SurveyTypeStudent:
		atomic.AddUint64(&m.studentSubmissions, 1)
	case models.SurveyTypeEmployer:
		atomic.AddUint64(&m.employerSubmissions, 1)
	}
}

// RecordSourceFailure counts a survey source that failed during a listing.
func (m *MetricsService) RecordSourceFailure(surveyType models.SurveyType) {
	if m == nil {
		return
	}
	m.sourceFailures.WithLabelValues(string(surveyType)).Inc()
	switch surveyType {
	case models.SurveyTypeStudent:
		atomic.AddUint64(&m.studentFailures, 1)
	case models.SurveyTypeEmployer:
		atomic.AddUint64(&m.employerFailures, 1)
	}
}

// RecordImageCleanup counts an image cleanup outcome.
func (m *MetricsService) RecordImageCleanup(outcome string) {
	if m == nil {
		return
	}
	m.imageCleanup.WithLabelValues(outcome).Inc()
	switch outcome {
	case CleanupSucceeded:
		atomic.AddUint64(&m.cleanupSucceeded, 1)
	case CleanupFailed:
		atomic.AddUint64(&m.cleanupFailed, 1)
	case CleanupQueued:
		atomic.AddUint64(&m.cleanupQueued, 1)
	}
}

// Snapshot returns aggregated metrics for the admin endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{GeneratedAt: time.Now().UTC()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	queries := atomic.LoadUint64(&m.storeQueryCount)
	queryDuration := atomic.LoadUint64(&m.storeQueryDurationSum)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgQueryMs float64
	if queries > 0 {
		avgQueryMs = float64(queryDuration) / float64(queries) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            cacheRatio,
		StoreQueryCount:          queries,
		AverageStoreQueryMs:      avgQueryMs,
		Submissions: map[models.SurveyType]uint64{
			models.SurveyTypeStudent:  atomic.LoadUint64(&m.studentSubmissions),
			models.SurveyTypeEmployer: atomic.LoadUint64(&m.employerSubmissions),
		},
		SourceFailures: map[models.SurveyType]uint64{
			models.SurveyTypeStudent:  atomic.LoadUint64(&m.studentFailures),
			models.SurveyTypeEmployer: atomic.LoadUint64(&m.employerFailures),
		},
		ImageCleanup: map[string]uint64{
			CleanupSucceeded: atomic.LoadUint64(&m.cleanupSucceeded),
			CleanupFailed:    atomic.LoadUint64(&m.cleanupFailed),
			CleanupQueued:    atomic.LoadUint64(&m.cleanupQueued),
		},
		Goroutines:  runtime.NumGoroutine(),
		GeneratedAt: time.Now().UTC(),
	}
}
