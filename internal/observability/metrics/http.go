package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answersTotal    *prometheus.CounterVec
	answerDuration  *prometheus.HistogramVec
	answersFiltered *prometheus.CounterVec
	greetingsTotal  *prometheus.CounterVec
	lexiconReloads  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "svia",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "answers",
			Name:      "total",
			Help:      "Total answered queries by content source.",
		},
		[]string{"service", "source", "generated"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svia",
			Subsystem: "answers",
			Name:      "duration_seconds",
			Help:      "End-to-end answer pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	answersFiltered := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "answers",
			Name:      "filtered_total",
			Help:      "Total answers where the safety filter removed content.",
		},
		[]string{"service"},
	)
	greetingsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "answers",
			Name:      "greetings_total",
			Help:      "Total queries short-circuited by the greeting fast path.",
		},
		[]string{"service"},
	)
	lexiconReloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "lexicon",
			Name:      "reloads_total",
			Help:      "Total lexicon reloads by outcome.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answersTotal,
		answerDuration,
		answersFiltered,
		greetingsTotal,
		lexiconReloads,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		answersTotal:    answersTotal,
		answerDuration:  answerDuration,
		answersFiltered: answersFiltered,
		greetingsTotal:  greetingsTotal,
		lexiconReloads:  lexiconReloads,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &metricsStatusRecorder{
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

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/profiles/"):
		return "/v1/profiles/{account_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAnswerObservation(service, source string, generated, filtered, greeting bool, duration time.Duration) {
	if source == "" {
		source = "none"
	}
	m.answersTotal.WithLabelValues(service, source, strconv.FormatBool(generated)).Inc()
	m.answerDuration.WithLabelValues(service).Observe(duration.Seconds())
	if filtered {
		m.answersFiltered.WithLabelValues(service).Inc()
	}
	if greeting {
		m.greetingsTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordLexiconReload(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.lexiconReloads.WithLabelValues(service, status).Inc()
}

type metricsStatusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsStatusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsStatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
