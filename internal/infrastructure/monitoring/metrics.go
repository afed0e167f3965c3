package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Connector metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	UploadBytes       prometheus.Histogram
	Downloads         *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the health endpoint
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	TotalOperations int64   `json:"total_operations"`
	FailedOps       int64   `json:"failed_operations"`
	TotalDuration   float64 `json:"-"`
	RequestCount    int64   `json:"-"`
	AvgDurationSecs float64 `json:"avg_duration_seconds"`
	UptimeSecs      float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several collectors can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filemanager_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filemanager_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filemanager_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Connector metrics
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_operations_total",
				Help: "Total number of connector operations by mode",
			},
			[]string{"mode", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filemanager_operation_duration_seconds",
				Help:    "Connector operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"mode"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_operation_errors_total",
				Help: "Total number of failed connector operations by error kind",
			},
			[]string{"mode", "kind"},
		),
		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filemanager_upload_size_bytes",
				Help:    "Size of accepted uploads in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		Downloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemanager_downloads_total",
				Help: "Total number of downloads by kind",
			},
			[]string{"kind"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "filemanager_uptime_seconds",
			Help: "Connector uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a connector operation
func (m *Metrics) RecordOperation(mode, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(mode, status).Inc()
	m.OperationDuration.WithLabelValues(mode).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalOperations++
	if status != StatusSuccess {
		m.snapshot.FailedOps++
	}
	m.mu.Unlock()
}

// RecordOperationError records the kind of a failed connector operation
func (m *Metrics) RecordOperationError(mode, kind string) {
	m.OperationErrors.WithLabelValues(mode, kind).Inc()
}

// RecordUpload records the size of an accepted upload
func (m *Metrics) RecordUpload(size int64) {
	m.UploadBytes.Observe(float64(size))
}

// RecordDownload records a served download, kind is "file" or "zip"
func (m *Metrics) RecordDownload(kind string) {
	m.Downloads.WithLabelValues(kind).Inc()
}

// Snapshot returns a copy of the tracked totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.RequestCount > 0 {
		s.AvgDurationSecs = s.TotalDuration / float64(s.RequestCount)
	}
	s.UptimeSecs = time.Since(m.startTime).Seconds()
	return s
}
