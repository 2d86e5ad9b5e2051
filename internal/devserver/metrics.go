package devserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sace",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sace",
			Name:      "submission_transitions_total",
			Help:      "Submission status changes made by instructors.",
		}, []string{"to"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sace",
			Name:      "submissions_created_total",
			Help:      "Submissions created, by file type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(m.requests, m.transitions, m.uploads)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
