// Package metrics holds the Prometheus collectors for rooms and the
// gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partycards"

type Metrics struct {
	registry *prometheus.Registry

	RoomsCreated      prometheus.Counter
	RoomsReaped       prometheus.Counter
	GamesStarted      prometheus.Counter
	GamesFinished     prometheus.Counter
	GatewayActions    *prometheus.CounterVec
	GatewayErrors     *prometheus.CounterVec
	ConnectionsActive prometheus.Gauge
}

// New builds a registry with the process collectors and every partycards
// collector. activeRooms backs the rooms_active gauge.
func New(activeRooms func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created.",
		}),
		RoomsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_reaped_total",
			Help:      "Rooms deleted by the idle reaper.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started, restarts included.",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached game over.",
		}),
		GatewayActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_actions_total",
			Help:      "Client actions received, by type.",
		}, []string{"type"}),
		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Errors returned to clients, by code.",
		}, []string{"code"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open WebSocket connections.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently in the repository.",
		}, func() float64 { return float64(activeRooms()) }),
		m.RoomsCreated,
		m.RoomsReaped,
		m.GamesStarted,
		m.GamesFinished,
		m.GatewayActions,
		m.GatewayErrors,
		m.ConnectionsActive,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
