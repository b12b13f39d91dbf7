// Package metrics holds Prometheus instruments that are used across Folio.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeInvalid   = "invalid"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_form_submissions_total",
			Help: "Submit attempts by outcome: succeeded, failed, rejected (in flight), or invalid.",
		}, []string{"outcome"})

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_form_validation_failures_total",
			Help: "Failing field verdicts by field and rule.",
		}, []string{"field", "rule"})

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_gateway_request_duration_seconds",
			Help:    "Time spent relaying one payload to the remote endpoint.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"gateway", "outcome"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_active_form_sessions",
			Help: "Number of form controllers currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_form_session_evict_total",
			Help: "Cumulative number of form sessions evicted from the store.",
		})

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_notification_emails_total",
			Help: "Owner notification emails by outcome.",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ValidationFailuresTotal,
		GatewayDuration,
		ActiveSessions,
		SessionEvictTotal,
		EmailsTotal,
	)
}
