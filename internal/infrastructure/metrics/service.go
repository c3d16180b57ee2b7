package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns the Prometheus registry for the process. A nil *Service is
// valid and records nothing, so tests can pass nil instead of wiring a
// registry.
type Service struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	backendRequests *prometheus.CounterVec
	sessionInits    *prometheus.CounterVec
	cookieRotations *prometheus.CounterVec
}

func NewService() *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Service{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route template, method and status code.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "janus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route template and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "backend_requests_total",
			Help:      "Generate calls issued to the Gemini backend, by model, mode and outcome.",
		}, []string{"model", "mode", "status"}),
		sessionInits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "session_inits_total",
			Help:      "Gemini session initializations, by outcome.",
		}, []string{"status"}),
		cookieRotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "cookie_rotations_total",
			Help:      "Background cookie rotation attempts, by outcome.",
		}, []string{"status"}),
	}

	registry.MustRegister(
		s.httpRequests,
		s.httpDuration,
		s.backendRequests,
		s.sessionInits,
		s.cookieRotations,
	)
	return s
}

func (s *Service) RecordHTTPRequest(path, method string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	s.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

func (s *Service) RecordBackendRequest(model, mode, status string) {
	if s == nil {
		return
	}
	s.backendRequests.WithLabelValues(model, mode, status).Inc()
}

func (s *Service) RecordSessionInit(status string) {
	if s == nil {
		return
	}
	s.sessionInits.WithLabelValues(status).Inc()
}

func (s *Service) RecordCookieRotation(status string) {
	if s == nil {
		return
	}
	s.cookieRotations.WithLabelValues(status).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (s *Service) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
