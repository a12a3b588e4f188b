package metrics

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Business metrics are registered lazily and only recorded when ENABLE_BUSINESS_METRICS=true
var (
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPActiveConnections prometheus.Gauge

	QueryIntentsTotal  *prometheus.CounterVec
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	UploadsTotal       *prometheus.CounterVec
	RecordsInserted    *prometheus.CounterVec
	SeedRunsTotal      *prometheus.CounterVec

	businessOnce sync.Once
)

func businessMetricsEnabled() bool {
	return os.Getenv("ENABLE_BUSINESS_METRICS") == "true"
}

func initializeBusinessMetrics() {
	businessOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		)

		HTTPRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		)

		HTTPActiveConnections = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		)

		QueryIntentsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oncoaide_query_intents_total",
				Help: "Queries by routed intent and whether a record was resolved",
			},
			[]string{"intent", "resolved"},
		)

		LLMRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oncoaide_llm_requests_total",
				Help: "Chat completion calls by model and outcome",
			},
			[]string{"model", "status"}, // "success", "error", "empty"
		)

		LLMRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oncoaide_llm_request_duration_seconds",
				Help:    "Duration of chat completion calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"model", "status"},
		)

		UploadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oncoaide_uploads_total",
				Help: "Patient file uploads by file kind and result",
			},
			[]string{"kind", "result"},
		)

		RecordsInserted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oncoaide_records_inserted_total",
				Help: "Patient records inserted by source",
			},
			[]string{"source"}, // "upload", "seed"
		)

		SeedRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oncoaide_seed_runs_total",
				Help: "Seed loader runs by result",
			},
			[]string{"result"},
		)

		GetInstance().registry.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPActiveConnections,
			QueryIntentsTotal,
			LLMRequestsTotal,
			LLMRequestDuration,
			UploadsTotal,
			RecordsInserted,
			SeedRunsTotal,
		)
	})
}

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()

	status := strconv.Itoa(statusCode)
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// IncActiveConnections increments active connections
func IncActiveConnections() {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	HTTPActiveConnections.Inc()
}

// DecActiveConnections decrements active connections
func DecActiveConnections() {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	HTTPActiveConnections.Dec()
}

// RecordQueryIntent counts a routed query
func RecordQueryIntent(intent string, resolved bool) {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	QueryIntentsTotal.WithLabelValues(intent, strconv.FormatBool(resolved)).Inc()
}

// RecordLLMRequest counts a chat completion call and its latency
func RecordLLMRequest(model, status string, duration time.Duration) {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	LLMRequestsTotal.WithLabelValues(model, status).Inc()
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// RecordUpload counts an upload attempt and the records it inserted
func RecordUpload(kind, result string, inserted int) {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	UploadsTotal.WithLabelValues(kind, result).Inc()
	if inserted > 0 {
		RecordsInserted.WithLabelValues("upload").Add(float64(inserted))
	}
}

// RecordSeedRun counts a seed loader run and the records it inserted
func RecordSeedRun(result string, inserted int) {
	if !businessMetricsEnabled() {
		return
	}
	initializeBusinessMetrics()
	SeedRunsTotal.WithLabelValues(result).Inc()
	if inserted > 0 {
		RecordsInserted.WithLabelValues("seed").Add(float64(inserted))
	}
}
