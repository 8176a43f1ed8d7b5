package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/blockfile/pkg/pipeline"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Packing metrics
	packRunsTotal     *prometheus.CounterVec
	packDuration      *prometheus.HistogramVec
	packBlocksTotal   *prometheus.CounterVec
	packRecordsTotal  *prometheus.CounterVec
	packSplitsTotal   *prometheus.CounterVec
	packEfficiency    *prometheus.GaugeVec
	packPartialBlocks *prometheus.GaugeVec

	// Authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockfile_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "blockfile_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		packRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_pack_runs_total",
				Help: "Total number of packing runs",
			},
			[]string{"layout", "status"},
		),

		packDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockfile_pack_duration_seconds",
				Help:    "Packing run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"layout"},
		),

		packBlocksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_pack_blocks_total",
				Help: "Total number of blocks produced",
			},
			[]string{"layout"},
		),

		packRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_pack_records_total",
				Help: "Total number of records packed",
			},
			[]string{"layout"},
		),

		packSplitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_pack_splits_total",
				Help: "Total number of records split across blocks",
			},
			[]string{"layout"},
		),

		packEfficiency: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "blockfile_pack_efficiency_percent",
				Help: "Useful-byte efficiency of the most recent run",
			},
			[]string{"layout"},
		),

		packPartialBlocks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "blockfile_pack_partial_blocks",
				Help: "Partially filled blocks in the most recent run",
			},
			[]string{"layout"},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfile_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPack records a successful packing run
func (m *Metrics) RecordPack(res *pipeline.Result) {
	layout := res.Layout.String()

	m.packRunsTotal.WithLabelValues(layout, statusSuccess).Inc()
	m.packDuration.WithLabelValues(layout).Observe(res.Elapsed.Seconds())
	m.packBlocksTotal.WithLabelValues(layout).Add(float64(res.Report.BlockCount))
	m.packRecordsTotal.WithLabelValues(layout).Add(float64(res.Records))
	m.packSplitsTotal.WithLabelValues(layout).Add(float64(res.Splits))
	m.packEfficiency.WithLabelValues(layout).Set(res.Report.Efficiency)
	m.packPartialBlocks.WithLabelValues(layout).Set(float64(res.Report.PartialBlocks))
}

// RecordPackFailure records a packing run that returned an error
func (m *Metrics) RecordPackFailure(layout string) {
	m.packRunsTotal.WithLabelValues(layout, statusError).Inc()
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware counts requests that carried an API key, split by
// whether the key was accepted.
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
