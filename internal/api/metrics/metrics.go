// Package metrics defines and registers all custom Prometheus metrics for the
// TalentSphere API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "talentsphere"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts account operations.
// Labels:
//   - operation: "register", "login" or "associate_company"
//   - result: "success", "invalid_credentials", "throttled", "conflict", "invalid", "forbidden" or "error"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of account operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuthEventsRecordedTotal counts audit events persisted.
// Label:
//   - type: the event type (e.g. "login_failed")
var AuthEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_recorded_total",
		Help:      "Total number of account audit events persisted.",
	},
	[]string{"type"},
)

// AuthEventsErrorsTotal counts audit events that could not be persisted or were dropped.
// Label:
//   - reason: "insert_failed", "queue_full" or "closed"
var AuthEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_errors_total",
		Help:      "Total number of account audit events that failed or were dropped.",
	},
	[]string{"reason"},
)

// AuthEventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_events_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Resume metrics ────────────────────────────────────────────────────────────

// ResumeParseTotal counts resume parsing attempts.
// Label:
//   - result: "success", "invalid_output" or "error"
var ResumeParseTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_parse_total",
		Help:      "Total number of resume parsing attempts, by result.",
	},
	[]string{"result"},
)

// ResumeParseDuration measures how long the language model takes per resume.
var ResumeParseDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resume_parse_duration_seconds",
		Help:      "Duration of resume parsing calls to the language model.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40},
	},
)
