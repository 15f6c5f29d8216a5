package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and the server never collide on the
// default one. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	uploads      *prometheus.CounterVec
	orphans      *prometheus.CounterVec
	aiRelay      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travelgram",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelgram",
			Name:      "uploads_total",
			Help:      "Upload attempts by media kind and outcome.",
		}, []string{"kind", "outcome"}),
		orphans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelgram",
			Name:      "orphaned_blobs_total",
			Help:      "Binary objects left without a metadata row, or rows whose binary delete failed.",
		}, []string{"kind", "reason"}),
		aiRelay: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelgram",
			Name:      "ai_relay_requests_total",
			Help:      "Calls to the generative model by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration,
		m.uploads,
		m.orphans,
		m.aiRelay,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) UploadOutcome(kind, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) OrphanedBlob(kind, reason string) {
	if m == nil {
		return
	}
	m.orphans.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) AIRelay(outcome string) {
	if m == nil {
		return
	}
	m.aiRelay.WithLabelValues(outcome).Inc()
}
