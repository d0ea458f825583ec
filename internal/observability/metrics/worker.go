package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec

	stageDuration  *prometheus.HistogramVec
	stageFallbacks *prometheus.CounterVec
	unsafeDegraded *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "worker",
			Name:      "audit_process_total",
			Help:      "Total processed pipeline audit records by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svia",
			Subsystem: "worker",
			Name:      "audit_process_duration_seconds",
			Help:      "Audit record processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "svia",
			Subsystem: "worker",
			Name:      "audit_process_in_flight",
			Help:      "Number of in-flight audit processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svia",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between pipeline completion and audit processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "svia",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	stageFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "pipeline",
			Name:      "stage_fallback_total",
			Help:      "Total stage executions that degraded to their fallback.",
		},
		[]string{"service", "stage"},
	)
	unsafeDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svia",
			Subsystem: "pipeline",
			Name:      "unsafe_degraded_total",
			Help:      "Total answers served without safety filtering after an internal filter failure.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		queueLag,
		stageDuration,
		stageFallbacks,
		unsafeDegraded,
	)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		stageDuration:   stageDuration,
		stageFallbacks:  stageFallbacks,
		unsafeDegraded:  unsafeDegraded,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartAudit() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishAudit(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveStage(service, stage string, duration time.Duration, fallback bool) {
	if duration < 0 {
		duration = 0
	}
	m.stageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
	if fallback {
		m.stageFallbacks.WithLabelValues(service, stage).Inc()
	}
}

func (m *WorkerMetrics) RecordUnsafeDegraded(service string) {
	m.unsafeDegraded.WithLabelValues(service).Inc()
}
