package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bookingAdmissions   *prometheus.CounterVec
	bookingTransitions  *prometheus.CounterVec
}

// New создает и регистрирует метрики в собственном реестре
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		bookingAdmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_admissions_total",
				Help:        "Booking admission attempts by result.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		bookingTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_transitions_total",
				Help:        "Booking status transitions by source, target and result.",
				ConstLabels: constLabels,
			},
			[]string{"from", "to", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.bookingAdmissions,
		m.bookingTransitions,
	)

	return m
}

// Handler HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest учитывает HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAdmission учитывает результат создания бронирования
func (m *Metrics) ObserveAdmission(result string) {
	m.bookingAdmissions.WithLabelValues(result).Inc()
}

// ObserveTransition учитывает результат перехода статуса
func (m *Metrics) ObserveTransition(from, to, result string) {
	m.bookingTransitions.WithLabelValues(from, to, result).Inc()
}
