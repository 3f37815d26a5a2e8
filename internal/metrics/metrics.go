// Package metrics exposes Prometheus collectors for sensor ingestion and
// store activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every homedash collector.
	Registry = prometheus.NewRegistry()

	Publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homedash_store_publishes_total",
		Help: "Snapshots published by the reading store, by cause.",
	}, []string{"cause"})

	Payloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homedash_stream_payloads_total",
		Help: "Live stream events received, by outcome (applied, keepalive, discarded).",
	}, []string{"outcome"})

	Reconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homedash_stream_reconnects_total",
		Help: "Live stream reconnect attempts.",
	})

	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homedash_stream_clients",
		Help: "Clients currently attached to the served sensor stream.",
	})

	ChatRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homedash_chat_requests_total",
		Help: "Chat requests sent, by outcome (ok, fallback).",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		Publishes,
		Payloads,
		Reconnects,
		StreamClients,
		ChatRequests,
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
