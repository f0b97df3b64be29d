package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbConnections   *prometheus.GaugeVec

	bookingsFinalized      *prometheus.CounterVec
	appointmentTransitions *prometheus.CounterVec
	conversationEvents     *prometheus.CounterVec
	notificationsRelayed   *prometheus.CounterVec
	remindersSent          *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry (его отдает promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registry
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database operations",
		}, []string{"service", "operation"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),
		bookingsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_finalizations_total",
			Help: "Booking finalization attempts by result",
		}, []string{"service", "result"}),
		appointmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Appointment status transitions by action and result",
		}, []string{"service", "action", "result"}),
		conversationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conversation_events_total",
			Help: "Booking conversation events by kind",
		}, []string{"service", "kind"}),
		notificationsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_relayed_total",
			Help: "Outbox notifications relayed to the broker by result",
		}, []string{"service", "result"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_reminders_total",
			Help: "Day-before reminders enqueued",
		}, []string{"service"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.bookingsFinalized,
		m.appointmentTransitions,
		m.conversationEvents,
		m.notificationsRelayed,
		m.remindersSent,
	)

	return m
}

// ObserveHTTPRequest фиксирует обработанный HTTP-запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует операцию с БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.serviceName, operation).Inc()
	}
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues(m.serviceName, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.serviceName, "in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues(m.serviceName, "idle").Set(float64(idle))
}

// IncBookingFinalization result: created, conflict, rejected, error
func (m *Metrics) IncBookingFinalization(result string) {
	if m == nil {
		return
	}
	m.bookingsFinalized.WithLabelValues(m.serviceName, result).Inc()
}

func (m *Metrics) IncAppointmentTransition(action, result string) {
	if m == nil {
		return
	}
	m.appointmentTransitions.WithLabelValues(m.serviceName, action, result).Inc()
}

func (m *Metrics) IncConversationEvent(kind string) {
	if m == nil {
		return
	}
	m.conversationEvents.WithLabelValues(m.serviceName, kind).Inc()
}

func (m *Metrics) IncNotificationRelayed(result string) {
	if m == nil {
		return
	}
	m.notificationsRelayed.WithLabelValues(m.serviceName, result).Inc()
}

func (m *Metrics) IncReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(m.serviceName).Inc()
}
