package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
// Все методы безопасны для nil-получателя: если метрики выключены, вызовы ничего не делают
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBConnections   *prometheus.GaugeVec

	DispatchJobsTotal         *prometheus.CounterVec
	DispatchRunDuration       prometheus.Histogram
	PaymentReconciliations    *prometheus.CounterVec
	WaitlistFulfillmentsTotal *prometheus.CounterVec
	BookingConflictsTotal     prometheus.Counter
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "status"}),

		DBConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: constLabels,
		}, []string{"state"}),

		DispatchJobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "notification_dispatch_jobs_total",
			Help:        "Notification jobs processed by the dispatcher, by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		DispatchRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "notification_dispatch_run_duration_seconds",
			Help:        "Duration of a single dispatcher run",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),

		PaymentReconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_reconciliations_total",
			Help:        "Payment reconciliation results, by source and outcome",
			ConstLabels: constLabels,
		}, []string{"source", "outcome"}),

		WaitlistFulfillmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "waitlist_fulfillments_total",
			Help:        "Waitlist fulfillment attempts, by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		BookingConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "booking_slot_conflicts_total",
			Help:        "Booking inserts rejected by the slot uniqueness constraint",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveHTTPRequest фиксирует завершённый HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBConnections.WithLabelValues("open").Set(float64(open))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
}

// IncDispatchJob увеличивает счётчик обработанных задач уведомлений
func (m *Metrics) IncDispatchJob(outcome string) {
	if m == nil {
		return
	}
	m.DispatchJobsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDispatchRun фиксирует длительность прогона диспетчера
func (m *Metrics) ObserveDispatchRun(duration time.Duration) {
	if m == nil {
		return
	}
	m.DispatchRunDuration.Observe(duration.Seconds())
}

// IncReconciliation увеличивает счётчик сверок платежей
func (m *Metrics) IncReconciliation(source, outcome string) {
	if m == nil {
		return
	}
	m.PaymentReconciliations.WithLabelValues(source, outcome).Inc()
}

// IncWaitlistFulfillment увеличивает счётчик попыток обработки листа ожидания
func (m *Metrics) IncWaitlistFulfillment(reason string) {
	if m == nil {
		return
	}
	m.WaitlistFulfillmentsTotal.WithLabelValues(reason).Inc()
}

// IncBookingConflict увеличивает счётчик конфликтов слотов
func (m *Metrics) IncBookingConflict() {
	if m == nil {
		return
	}
	m.BookingConflictsTotal.Inc()
}
