// Package metrics defines and registers all custom Prometheus metrics for the
// concierge admin API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "concierge"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - user_type: "admin" or "vendor"
//   - result: "ok", "invalid_credentials", "inactive", "pending_approval", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by user type and result.",
	},
	[]string{"user_type", "result"},
)

// ── Inventory metrics ─────────────────────────────────────────────────────────

// InventoryMutationsTotal counts successful inventory writes.
// Labels:
//   - category: the category slug (e.g. "yachts")
//   - action: "create", "update", "delete", "image"
var InventoryMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_mutations_total",
		Help:      "Total number of inventory mutations, by category and action.",
	},
	[]string{"category", "action"},
)

// EventSubscribers tracks the number of connected live-update clients.
var EventSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_subscribers",
		Help:      "Current number of live inventory event subscribers.",
	},
)

// EventsDroppedTotal counts live events not delivered to a slow subscriber.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of inventory events dropped because a subscriber buffer was full.",
	},
)

// ── Vendor metrics ────────────────────────────────────────────────────────────

// VendorTransitionsTotal counts applied verification transitions.
// Label:
//   - status: the new verification status
var VendorTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_transitions_total",
		Help:      "Total number of vendor verification transitions, by resulting status.",
	},
	[]string{"status"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsEnqueuedTotal counts enqueue decisions.
// Label:
//   - result: "queued" or "dropped"
var NotificationsEnqueuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_enqueued_total",
		Help:      "Total number of vendor notifications offered to the dispatcher, by result.",
	},
	[]string{"result"},
)

// NotificationsSentTotal counts delivery attempts.
// Labels:
//   - kind: "vendor.approved" or "vendor.rejected"
//   - result: "ok" or "error"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of vendor notification deliveries, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationsQueueDepth tracks pending notifications per worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationSendDuration measures a single delivery to the mailer stream.
var NotificationSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single vendor notification delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)
