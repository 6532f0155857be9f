package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diabetescheck"

// Metrics groups the service's collectors on a private registry.
type Metrics struct {
	Predictions        *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	PredictionErrors   prometheus.Counter
	PredictionDuration prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec

	registry *prometheus.Registry
}

// PredictionCount counts predictions by outcome.
func PredictionCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of predictions served, by outcome",
		},
		[]string{"outcome"},
	)
}

// ValidationFailureCount counts rejected inputs by reason.
func ValidationFailureCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected inputs, by reason and field",
		},
		[]string{"reason", "field"},
	)
}

func PredictionErrorCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Total number of classifier failures",
		},
	)
}

func PredictionDurationSeconds() prometheus.Histogram {
	return prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent scaling and classifying one vector",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)
}

// CacheLookupCount counts prediction cache lookups by result (hit or miss).
func CacheLookupCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of prediction cache lookups, by result",
		},
		[]string{"result"},
	)
}

func HTTPRequestCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests, by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
}

func HTTPDurationSeconds() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// NewMetrics creates and registers all collectors, including the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Predictions:        PredictionCount(),
		ValidationFailures: ValidationFailureCount(),
		PredictionErrors:   PredictionErrorCount(),
		PredictionDuration: PredictionDurationSeconds(),
		CacheLookups:       CacheLookupCount(),
		HTTPRequests:       HTTPRequestCount(),
		HTTPDuration:       HTTPDurationSeconds(),
		registry:           prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.Predictions,
		m.ValidationFailures,
		m.PredictionErrors,
		m.PredictionDuration,
		m.CacheLookups,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePrediction(outcome string, d time.Duration) {
	m.Predictions.WithLabelValues(outcome).Inc()
	m.PredictionDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveValidationFailure(reason, field string) {
	m.ValidationFailures.WithLabelValues(reason, field).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
