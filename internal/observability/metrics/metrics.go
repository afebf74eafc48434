package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics carries the HTTP and query-processing instruments on a
// private registry so tests can create isolated instances.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queriesTotal      *prometheus.CounterVec
	sourceOutcomes    *prometheus.CounterVec
	sourceDuration    *prometheus.HistogramVec
	queryDuration     *prometheus.HistogramVec
	contextSizeChars  *prometheus.HistogramVec
	retrievedEntities *prometheus.HistogramVec
	fallbacksTotal    *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "processed_total",
			Help:      "Total processed queries by primary intent.",
		},
		[]string{"service", "intent"},
	)
	sourceOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "source_outcomes_total",
			Help:      "Retrieval source outcomes by source and status.",
		},
		[]string{"service", "source", "outcome"},
	)
	sourceDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "source_duration_seconds",
			Help:      "Per-source retrieval duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "source"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end query processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	contextSizeChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "context_size_chars",
			Help:      "Assembled context length in characters.",
			Buckets:   []float64{256, 512, 1024, 2048, 4096, 8192, 16384},
		},
		[]string{"service"},
	)
	retrievedEntities := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "retrieved_entities",
			Help:      "Distribution of semantic hits per processed query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oqa",
			Subsystem: "query",
			Name:      "schema_fallbacks_total",
			Help:      "Total queries answered from the schema-overview fallback.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queriesTotal,
		sourceOutcomes,
		sourceDuration,
		queryDuration,
		contextSizeChars,
		retrievedEntities,
		fallbacksTotal,
	)

	return &ServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		queriesTotal:      queriesTotal,
		sourceOutcomes:    sourceOutcomes,
		sourceDuration:    sourceDuration,
		queryDuration:     queryDuration,
		contextSizeChars:  contextSizeChars,
		retrievedEntities: retrievedEntities,
		fallbacksTotal:    fallbacksTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *ServerMetrics) RecordQuery(service, intent string, entityCount int, usedFallback bool, duration time.Duration) {
	if m == nil {
		return
	}
	if intent == "" {
		intent = "unknown"
	}
	m.queriesTotal.WithLabelValues(service, intent).Inc()
	m.queryDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.retrievedEntities.WithLabelValues(service).Observe(float64(entityCount))
	if usedFallback {
		m.fallbacksTotal.WithLabelValues(service).Inc()
	}
}

func (m *ServerMetrics) RecordSourceOutcome(service, source, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sourceOutcomes.WithLabelValues(service, source, outcome).Inc()
	m.sourceDuration.WithLabelValues(service, source).Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordContextSize(service string, chars int) {
	if m == nil {
		return
	}
	m.contextSizeChars.WithLabelValues(service).Observe(float64(chars))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
