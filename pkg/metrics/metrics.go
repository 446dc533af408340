package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationDispatches counts dispatch attempts by channel and outcome (delivered|failed).
	NotificationDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentms_notification_dispatches_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"channel", "outcome"},
	)

	// NotificationDispatchLatency measures how long a channel takes to conclude an attempt.
	NotificationDispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studentms_notification_dispatch_seconds",
			Help:    "Notification dispatch latency per channel",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// Broadcasts counts broadcast requests by channel.
	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentms_notification_broadcasts_total",
			Help: "Total number of broadcast requests",
		},
		[]string{"channel"},
	)

	// NotificationsByStatus is refreshed by the maintenance reporter.
	NotificationsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studentms_notifications",
			Help: "Number of stored notifications per status",
		},
		[]string{"status"},
	)

	// StalePendingNotifications tracks records stuck in Pending past the configured threshold.
	StalePendingNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studentms_notifications_stale_pending",
			Help: "Pending notifications older than the stale threshold",
		},
	)

	// HTTPInFlight is the number of requests currently being served.
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studentms_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studentms_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
