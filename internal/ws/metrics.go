package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open websocket connections",
	})
	TaskEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_events_published_total",
			Help: "Task events published to the hub",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(WSConnections)
	prometheus.MustRegister(TaskEvents)
}
