package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the relay.
type Metrics struct {
	ActiveClients  prometheus.Gauge
	ClientEvents   *prometheus.CounterVec
	WSMessages     *prometheus.CounterVec
	UpstreamEvents *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	AgentSwitches  prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_clients",
			Help:      "Number of connected relay clients.",
		}),
		ClientEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_events_total",
			Help:      "Client lifecycle events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Client websocket messages by direction and type.",
		}, []string{"direction", "type"}),
		UpstreamEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_events_total",
			Help:      "Upstream realtime events by type.",
		}, []string{"type"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream failures by operation.",
		}, []string{"op"}),
		AgentSwitches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_switches_total",
			Help:      "Completed persona switches.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
