// Package metrics defines and registers all custom Prometheus metrics for the
// chatbot engine. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry on
// package import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatbot"

// ── Dispatch metrics ──────────────────────────────────────────────────────────

// MessagesProcessedTotal counts inbound messages that completed dispatch.
// Labels:
//   - role: the acting user's role ("employee", "customer")
var MessagesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_processed_total",
		Help:      "Total number of inbound messages dispatched, by user role.",
	},
	[]string{"role"},
)

// MessageProcessingDuration measures dispatch latency from dequeue to the
// last outbound send.
var MessageProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_processing_duration_seconds",
		Help:      "Duration of inbound message dispatch from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// DispatchFaultsTotal counts internal faults absorbed at the dispatcher
// boundary (the user received an apology instead of silence).
var DispatchFaultsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_faults_total",
		Help:      "Total number of internal faults caught at the dispatcher boundary.",
	},
)

// ── Resilience metrics ────────────────────────────────────────────────────────

// GuardDegradedTotal counts guarded persistence calls that did not complete.
// Labels:
//   - operation: the guarded call site (e.g. "user_resolve", "session_resolve")
//   - outcome: "timed_out" or "failed"
var GuardDegradedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_degraded_total",
		Help:      "Total number of guarded store calls that timed out or failed.",
	},
	[]string{"operation", "outcome"},
)

// ── Verification metrics ──────────────────────────────────────────────────────

// OTPIssuedTotal counts verification code issue attempts.
// Label:
//   - result: "sent" or "failed"
var OTPIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of one-time codes issued, by delivery result.",
	},
	[]string{"result"},
)

// OTPVerifyTotal counts verification attempts.
// Label:
//   - result: "accepted" or "rejected"
var OTPVerifyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verify_total",
		Help:      "Total number of one-time code verification attempts, by result.",
	},
	[]string{"result"},
)

// ── Queue metrics ─────────────────────────────────────────────────────────────

// QueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", …)
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of inbound events pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ── Outbound metrics ──────────────────────────────────────────────────────────

// OutboundFailuresTotal counts failed sends to the messaging platform.
// Label:
//   - kind: payload kind ("text", "buttons", "list", "mark_read", "media")
var OutboundFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbound_failures_total",
		Help:      "Total number of failed outbound transport calls, by payload kind.",
	},
	[]string{"kind"},
)
