package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	auditFailures   prometheus.Counter
	exports         *prometheus.CounterVec
	reports         *prometheus.CounterVec
	archiveSwept    prometheus.Counter

	started time.Time

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	auditFailureCount    uint64
	exportCount          uint64
	reportCount          uint64
	sweptCount           uint64
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
		Help:    "Latency for cache operations",
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

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_failures_total",
		Help: "Audit entries that could not be persisted",
	})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_rendered_total",
		Help: "Exports rendered by module and format",
	}, []string{"module", "format"})

	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_submitted_total",
		Help: "Lecture reports stored by status",
	}, []string{"status"})

	archiveSwept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_archive_swept_total",
		Help: "Archived export files removed by retention",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, auditFailures, exports, reports, archiveSwept, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		auditFailures:   auditFailures,
		exports:         exports,
		reports:         reports,
		archiveSwept:    archiveSwept,
		started:         time.Now(),
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

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// AuditFailed counts an audit entry that was dropped.
func (m *MetricsService) AuditFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
	atomic.AddUint64(&m.auditFailureCount, 1)
}

// ExportRendered counts a rendered export.
func (m *MetricsService) ExportRendered(module, format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(module, format).Inc()
	atomic.AddUint64(&m.exportCount, 1)
}

// ReportSubmitted counts a stored lecture report.
func (m *MetricsService) ReportSubmitted(status string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(status).Inc()
	atomic.AddUint64(&m.reportCount, 1)
}

// ArchiveSwept counts archived files removed by the reaper.
func (m *MetricsService) ArchiveSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.archiveSwept.Add(float64(n))
	atomic.AddUint64(&m.sweptCount, uint64(n))
}

// Snapshot returns aggregated metrics suitable for the admin analytics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	snapshot := models.SystemMetrics{
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / (1 << 20),
	}
	if m == nil {
		return snapshot
	}

	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	if lookups := hits + misses; lookups > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		snapshot.AvgRequestSeconds = float64(reqDuration) / float64(requests) / float64(time.Second)
	}
	snapshot.RequestCount = float64(requests)
	snapshot.AuditFailures = float64(atomic.LoadUint64(&m.auditFailureCount))
	snapshot.ExportsRendered = float64(atomic.LoadUint64(&m.exportCount))
	snapshot.ReportsSubmitted = float64(atomic.LoadUint64(&m.reportCount))
	snapshot.ArchivedFilesSwept = float64(atomic.LoadUint64(&m.sweptCount))
	snapshot.UptimeSeconds = time.Since(m.started).Seconds()
	return snapshot
}
