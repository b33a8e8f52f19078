package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/tkt-widget-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the widget API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storageLatency  prometheus.Observer
	storageWrite    prometheus.Observer
	storageReads    *prometheus.CounterVec
	summaries       *prometheus.CounterVec
	parseSkipped    prometheus.Counter
	publishJobs     *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
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

	storageLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "widget_storage_read_seconds",
		Help:    "Latency for shared storage reads",
		Buckets: prometheus.DefBuckets,
	})

	storageWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "widget_storage_write_seconds",
		Help:    "Latency for shared storage writes",
		Buckets: prometheus.DefBuckets,
	})

	storageReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "widget_storage_reads_total",
		Help: "Shared storage key reads by result",
	}, []string{"result"})

	summaries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "widget_summaries_total",
		Help: "Display summaries built, by chosen source",
	}, []string{"source", "degraded"})

	parseSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "widget_payload_skipped_elements_total",
		Help: "Malformed course elements skipped while parsing storage payloads",
	})

	publishJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "widget_publish_jobs_total",
		Help: "Publish jobs processed, by outcome",
	}, []string{"outcome"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storageLatency, storageWrite, storageReads, summaries, parseSkipped, publishJobs, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storageLatency:  storageLatency,
		storageWrite:    storageWrite,
		storageReads:    storageReads,
		summaries:       summaries,
		parseSkipped:    parseSkipped,
		publishJobs:     publishJobs,
		dbQueryDuration: dbQueryDuration,
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

// Registry exposes the underlying registry, mostly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordStorageRead records a shared storage lookup.
func (m *MetricsService) RecordStorageRead(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.storageLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.storageReads.WithLabelValues(result).Inc()
}

// ObserveStorageWrite tracks the duration of shared storage writes.
func (m *MetricsService) ObserveStorageWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.storageWrite.Observe(duration.Seconds())
}

// RecordSummary counts a built summary by the source it displayed.
func (m *MetricsService) RecordSummary(source models.SourceKind, degraded bool) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(string(source), fmt.Sprintf("%t", degraded)).Inc()
}

// RecordSkippedElements adds n skipped payload elements.
func (m *MetricsService) RecordSkippedElements(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.parseSkipped.Add(float64(n))
}

// RecordPublish counts a publish job outcome ("ok", "retry", "failed", "coalesced").
func (m *MetricsService) RecordPublish(outcome string) {
	if m == nil {
		return
	}
	m.publishJobs.WithLabelValues(outcome).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
