package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP traffic

var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"method", "path"},
)

// Order lifecycle

var OrdersCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	},
)

var OrderStatusChanges = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status transitions",
	},
	[]string{"to"},
)

// StockClamps counts decrements that hit the zero floor, i.e. oversell
// information silently lost by the clamp.
var StockClamps = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "stock_clamps_total",
		Help: "Total number of stock adjustments clamped at zero",
	},
)

// Notification fan-out. Delivery is best-effort, so drops are expected;
// these counters make the losses observable.

var NotificationsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total number of notification documents persisted",
	},
)

var NotificationsPushed = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notifications_pushed_total",
		Help: "Total number of notifications delivered to a live stream",
	},
)

var NotificationsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notifications_dropped_total",
		Help: "Total number of live pushes dropped (no stream or dead stream)",
	},
)

var StreamConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "stream_connections_open",
		Help: "Current number of open notification streams",
	},
)
