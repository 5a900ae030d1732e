// Package metrics defines all custom Prometheus metrics for the storefront
// SDK. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry via promauto; an
// embedding program exposes them however it likes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ActionsTotal counts resource-store actions by outcome.
// Labels:
//   - store: resource name (e.g. "events")
//   - action: "fetch_list", "fetch_one", "create", "update", "delete"
//   - result: "success" or "failure"
var ActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Total number of resource-store actions, by store, action, and result.",
	},
	[]string{"store", "action", "result"},
)

// ActionDuration measures wall time from action invocation to terminal
// resolution (the window the loading flag is raised for).
var ActionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "action_duration_seconds",
		Help:      "Duration of resource-store actions from invocation to resolution.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"store", "action"},
)

// StaleResponsesTotal counts completions discarded because a newer request
// on the same slice had already been issued.
var StaleResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Total number of out-of-order responses discarded by sequence check.",
	},
	[]string{"store"},
)

// NotificationsTotal counts toasts pushed onto the side-channel.
// Label:
//   - kind: "success", "error", or "info"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications emitted on the side-channel.",
	},
	[]string{"kind"},
)

// NotificationsDroppedTotal counts notifications dropped because a
// subscriber's buffer was full. Publishing never blocks an action.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped due to a lagging subscriber.",
	},
)

// IdentityTransitionsTotal counts identity state-machine transitions.
// Labels:
//   - actor: actor kind
//   - state: resulting state ("authenticated", "unauthenticated", "pending")
var IdentityTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_transitions_total",
		Help:      "Total number of identity state transitions, by actor kind and new state.",
	},
	[]string{"actor", "state"},
)
