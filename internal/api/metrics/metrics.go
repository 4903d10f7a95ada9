// Package metrics defines the custom Prometheus metrics of the identity
// service. HTTP request metrics come from echoprometheus; everything here
// describes authentication and account activity.
//
// All metrics register with the default registry through promauto on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts gate decisions on protected routes.
// Labels:
//   - operation: the gated operation (e.g. "users.create"), or "authenticate"
//     for bearer token checks
//   - decision: "allowed", "unauthorized" or "forbidden"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by operation and outcome.",
	},
	[]string{"operation", "decision"},
)

// ── Accounts ─────────────────────────────────────────────────────────────────

// UsersCreatedTotal counts created accounts.
// Label:
//   - role: role of the new account
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

// UsersDeletedTotal counts permanently deleted accounts.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of user accounts deleted.",
	},
)

// ── Audit pipeline ───────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events leaving the dispatcher.
// Label:
//   - result: "recorded", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by delivery result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks events waiting in each dispatcher worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
