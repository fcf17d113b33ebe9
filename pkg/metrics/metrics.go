package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration  *prometheus.HistogramVec
	DBQueryErrors    *prometheus.CounterVec
	DBConnectionPool *prometheus.GaugeVec

	// Бизнес-метрики
	BookingOperations *prometheus.CounterVec
	SweepCompleted    prometheus.Counter
	CacheRequests     *prometheus.CounterVec
}

// New создает и регистрирует метрики в стандартном реестре
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает и регистрирует метрики в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency",
				ConstLabels: labels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query latency",
				ConstLabels: labels,
				Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "db_query_errors_total",
				Help:        "Total number of failed database queries",
				ConstLabels: labels,
			},
			[]string{"operation"},
		),
		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_connection_pool",
				Help:        "Database connection pool state",
				ConstLabels: labels,
			},
			[]string{"state"},
		),
		BookingOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_operations_total",
				Help:        "Booking lifecycle operations by result",
				ConstLabels: labels,
			},
			[]string{"operation", "result"},
		),
		SweepCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name:        "booking_visits_completed_total",
				Help:        "Bookings marked as visit-completed by the sweep",
				ConstLabels: labels,
			},
		),
		CacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "availability_cache_requests_total",
				Help:        "Availability cache lookups by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
	}
}

// RecordBookingOperation увеличивает счетчик операции жизненного цикла
// Безопасен для nil-получателя (метрики выключены)
func (m *Metrics) RecordBookingOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BookingOperations.WithLabelValues(operation, result).Inc()
}

// RecordCache увеличивает счетчик обращений к кешу (hit/miss/error)
func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// RecordSweep учитывает количество завершенных визитов
func (m *Metrics) RecordSweep(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepCompleted.Add(float64(n))
}
