// Package metrics exposes the Prometheus instruments of the intake service.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the wizard, pricing and integration instruments.
type Metrics struct {
	// Stage transitions by operation (advance, retreat, finalize, reset) and target stage
	StageTransitions *prometheus.CounterVec

	// Validation rejections by stage
	ValidationFailures *prometheus.CounterVec

	// Quotes computed, by origin (draft, preview) and express tier
	Quotes *prometheus.CounterVec

	// External call latency by dependency (geocoder, router, submission) and outcome
	ExternalLatency *prometheus.HistogramVec

	// Draft store failures by operation; each one degrades a session to memory
	PersistenceDegradations *prometheus.CounterVec

	// Submission outcomes (success, rejected, failed)
	Submissions *prometheus.CounterVec

	// Sessions currently held in memory
	ActiveSessions prometheus.Gauge
}

// New registers every instrument with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StageTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expedition_stage_transitions_total",
			Help: "Wizard stage transitions by operation and resulting stage",
		}, []string{"operation", "stage"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expedition_validation_failures_total",
			Help: "Stage inputs rejected by validation",
		}, []string{"stage"}),

		Quotes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expedition_quotes_total",
			Help: "Quotes computed by origin and express tier",
		}, []string{"origin", "tier"}),

		ExternalLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expedition_external_call_duration_seconds",
			Help:    "Duration of geocoding, routing and submission calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"dependency", "outcome"}),

		PersistenceDegradations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expedition_persistence_degradations_total",
			Help: "Draft store failures that left a session in memory only",
		}, []string{"operation"}),

		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expedition_submissions_total",
			Help: "Shipment submissions by outcome",
		}, []string{"outcome"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "expedition_active_sessions",
			Help: "Wizard sessions held in memory",
		}),
	}
}

// IncrementTransition records a stage change.
func (m *Metrics) IncrementTransition(operation, stage string) {
	if m != nil {
		m.StageTransitions.WithLabelValues(operation, stage).Inc()
	}
}

// IncrementValidationFailure records a rejected stage input.
func (m *Metrics) IncrementValidationFailure(stage string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(stage).Inc()
	}
}

// IncrementQuote records a computed quote.
func (m *Metrics) IncrementQuote(origin, tier string) {
	if m != nil {
		m.Quotes.WithLabelValues(origin, tier).Inc()
	}
}

// ObserveExternalCall records the duration of a call to a dependency.
func (m *Metrics) ObserveExternalCall(dependency string, err error, d time.Duration) {
	if m != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.ExternalLatency.WithLabelValues(dependency, outcome).Observe(d.Seconds())
	}
}

// IncrementPersistenceDegradation records a draft store failure.
func (m *Metrics) IncrementPersistenceDegradation(operation string) {
	if m != nil {
		m.PersistenceDegradations.WithLabelValues(operation).Inc()
	}
}

// IncrementSubmission records a submission outcome.
func (m *Metrics) IncrementSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

// SetActiveSessions records the number of sessions in memory.
func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}
