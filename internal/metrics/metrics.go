// Package metrics содержит Prometheus-метрики HTTP и заказов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - набор коллекторов сервиса, зарегистрированных в своём реестре.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ordersCreated    prometheus.Counter
	orderTransitions *prometheus.CounterVec
	orderConflicts   prometheus.Counter
	eventsPublished  *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их вместе со стандартными коллекторами процесса.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of created orders",
		}),
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Total number of order status transitions",
			},
			[]string{"from", "to"},
		),
		orderConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_update_conflicts_total",
			Help: "Total number of optimistic lock conflicts on order updates",
		}),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_events_published_total",
				Help: "Total number of order events sent to the message bus",
			},
			[]string{"type", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.ordersCreated,
		m.orderTransitions,
		m.orderConflicts,
		m.eventsPublished,
	)
	return m
}

// Registry возвращает реестр, например для тестов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *Metrics) OrderTransitioned(from, to models.OrderStatus) {
	m.orderTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) OrderConflict() {
	m.orderConflicts.Inc()
}

func (m *Metrics) EventPublished(eventType string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

// Middleware считает запросы и время ответа по шаблону маршрута.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.httpRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}
