// Package metrics defines and registers all custom Prometheus metrics for
// the Jooy auth platform. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jooy_auth"

// ── Sign-in metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts credential-exchange attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "suspended", or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// LoginRateLimitedTotal counts sign-in requests denied by the rate limiter
// before any credential exchange.
var LoginRateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_rate_limited_total",
		Help:      "Total number of login attempts rejected by the rate limiter.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "success", "duplicate_email", "duplicate_username", "invalid", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts password reset dispatch requests. Deliberately
// unlabelled by existence: the response shape must not reveal whether the
// address has an account, and neither should an obvious metric split.
var PasswordResetsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset dispatch requests.",
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes on protected views.
// Label:
//   - decision: "allowed", "unauthenticated", "forbidden", "suspended"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of attempts waiting in each
// audit dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of login attempts pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)
