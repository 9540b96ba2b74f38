package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToastsEnqueued counts notifications added to any toast queue.
	ToastsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_toasts_enqueued_total",
			Help: "Total number of toast notifications enqueued",
		},
	)

	// ToastsRemoved counts notifications leaving a queue by reason (dismissed|expired|cleared).
	ToastsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_toasts_removed_total",
			Help: "Total number of toast notifications removed",
		},
		[]string{"reason"},
	)

	// ToastsActive tracks the number of visible toasts.
	ToastsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_toasts_active",
			Help: "Number of toast notifications currently displayed",
		},
	)

	// CatalogReloads counts fixture reloads by result (success|failure).
	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_reloads_total",
			Help: "Total number of catalog fixture reloads",
		},
		[]string{"result"},
	)

	// Backups counts settings backups by trigger (manual|scheduled) and result.
	Backups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_settings_backups_total",
			Help: "Total number of settings backups taken",
		},
		[]string{"trigger", "result"},
	)

	// RealtimeClients tracks connected WebSocket subscribers.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_realtime_clients",
			Help: "Number of connected realtime stream clients",
		},
	)

	// RealtimeDropped counts clients disconnected for falling behind.
	RealtimeDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_realtime_dropped_clients_total",
			Help: "Total number of realtime clients dropped for slow consumption",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
