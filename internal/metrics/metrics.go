// Package metrics holds the prometheus collectors shared by the feed services.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	CacheRequests *prometheus.CounterVec
	Mutations     *prometheus.CounterVec
	StreamClients prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_cache_requests_total",
			Help: "Feed cache lookups partitioned by hit or miss.",
		}, []string{"result"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_mutations_total",
			Help: "Applied social mutations partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_stream_clients",
			Help: "Websocket clients currently subscribed to feed events.",
		}),
	}
	m.registry.MustRegister(
		m.CacheRequests,
		m.Mutations,
		m.StreamClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheHit and friends tolerate a nil receiver so components can run without metrics.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheRequests.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheRequests.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) Mutation(operation, outcome string) {
	if m != nil {
		m.Mutations.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) StreamClientAdded() {
	if m != nil {
		m.StreamClients.Inc()
	}
}

func (m *Metrics) StreamClientRemoved() {
	if m != nil {
		m.StreamClients.Dec()
	}
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
