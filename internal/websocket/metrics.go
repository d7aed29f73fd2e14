package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "support_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "support_ws_rooms",
			Help: "Current number of websocket rooms.",
		},
	)
	wsMessagesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_ws_messages_delivered_total",
			Help: "Total websocket frames delivered to clients.",
		},
	)
	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_ws_events_total",
			Help: "Inbound websocket events by name.",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsMessagesDelivered, wsEvents)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRooms(count int) {
	wsRooms.Set(float64(count))
}

func addDelivered(count int) {
	wsMessagesDelivered.Add(float64(count))
}

func countEvent(event string) {
	wsEvents.WithLabelValues(event).Inc()
}
