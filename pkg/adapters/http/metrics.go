package http

import (
	"context"
	"net/http"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests            *prometheus.CounterVec
	Mutations           *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
	Broadcasts          prometheus.Counter
	Delivered           prometheus.Counter
	Dropped             prometheus.Counter
	Subscribers         prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unitgrid_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unitgrid_project_mutations_total",
				Help: "Committed project writes by kind",
			},
			[]string{"type"},
		),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitgrid_persistence_failures_total",
			Help: "Project writes rejected by the store",
		}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitgrid_broadcasts_total",
			Help: "Update messages fanned out",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitgrid_broadcast_delivered_total",
			Help: "Update messages queued to a subscriber",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitgrid_broadcast_dropped_total",
			Help: "Update messages dropped because a subscriber buffer was full",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "unitgrid_sse_subscribers",
			Help: "Open event-stream connections",
		}),
	}
	m.registry.MustRegister(
		m.Requests,
		m.Mutations,
		m.PersistenceFailures,
		m.Broadcasts,
		m.Delivered,
		m.Dropped,
		m.Subscribers,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records service and hub events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnUpdate: func(_ context.Context, e *domain.UpdateEvent) {
			if e.Err != nil {
				m.PersistenceFailures.Inc()
				return
			}
			m.Mutations.WithLabelValues(string(e.Type)).Inc()
		},
		OnBroadcast: func(_ context.Context, e *domain.BroadcastEvent) {
			m.Broadcasts.Inc()
			m.Delivered.Add(float64(e.Delivered))
			m.Dropped.Add(float64(e.Dropped))
		},
	}
}
