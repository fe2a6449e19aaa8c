package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storybook"

// Metrics gom các collector của service. Mọi method đều an toàn với receiver nil.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	generationCalls *prometheus.CounterVec
	generationTime  *prometheus.HistogramVec
	relayCalls      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms tới ~10s
			},
			[]string{"method", "route"},
		),
		generationCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "calls_total",
				Help:      "Generation calls by kind (story, image, audio) and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		generationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "storybook_duration_seconds",
				Help:      "Wall time of a full storybook generation.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s tới ~8 phút
			},
			[]string{"outcome"},
		),
		relayCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "calls_total",
				Help:      "Token relay calls by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
	}
	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.generationCalls,
		m.generationTime,
		m.relayCalls,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler mở registry cho Prometheus scrape
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveGeneration(kind string, err error) {
	if m == nil {
		return
	}
	m.generationCalls.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) ObserveStorybook(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.generationTime.WithLabelValues(outcome(err)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRelay(action string, err error) {
	if m == nil {
		return
	}
	m.relayCalls.WithLabelValues(action, outcome(err)).Inc()
}
