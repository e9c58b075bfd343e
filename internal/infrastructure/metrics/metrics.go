package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	MessagesSent         *prometheus.CounterVec
	NotificationsCreated *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	RealtimeEvents       *prometheus.CounterVec
	WebSocketConnections prometheus.Gauge
	HelpBotEscalations   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partmatch",
			Name:      "messages_sent_total",
			Help:      "Chat messages stored, by message type.",
		}, []string{"type"}),
		NotificationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partmatch",
			Name:      "notifications_created_total",
			Help:      "User notifications written, by kind.",
		}, []string{"kind"}),
		NotificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partmatch",
			Name:      "notification_failures_total",
			Help:      "Best-effort notification side effects that failed, by stage.",
		}, []string{"stage"}),
		RealtimeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partmatch",
			Name:      "realtime_events_published_total",
			Help:      "Change events published to the realtime channel, by table.",
		}, []string{"table"}),
		WebSocketConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partmatch",
			Name:      "websocket_connections",
			Help:      "Open realtime connections on this instance.",
		}),
		HelpBotEscalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partmatch",
			Name:      "helpbot_escalations_total",
			Help:      "Help bot conversations escalated to staff.",
		}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.MessagesSent,
		m.NotificationsCreated,
		m.NotificationFailures,
		m.RealtimeEvents,
		m.WebSocketConnections,
		m.HelpBotEscalations,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveMessage(messageType string) {
	m.MessagesSent.WithLabelValues(messageType).Inc()
}

func (m *Metrics) ObserveNotification(kind string) {
	m.NotificationsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFailure(stage string) {
	m.NotificationFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveEvent(table string) {
	m.RealtimeEvents.WithLabelValues(table).Inc()
}

func (m *Metrics) SetConnections(n int) {
	m.WebSocketConnections.Set(float64(n))
}

func (m *Metrics) ObserveEscalation() {
	m.HelpBotEscalations.Inc()
}
