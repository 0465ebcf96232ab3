package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pixfunnel"

// CheckoutMetrics records the funnel's outbound calls and submission outcomes.
type CheckoutMetrics struct {
	chargeAttempts *prometheus.CounterVec
	chargeDuration *prometheus.HistogramVec
	submissions    *prometheus.CounterVec
	cepLookups     *prometheus.CounterVec
}

// NewCheckoutMetrics registers the funnel collectors on reg. A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	chargeAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pix_charge_attempts_total",
		Help:      "Pix charge requests sent to the gateway, by attempt and outcome.",
	}, []string{"attempt", "outcome"})
	chargeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pix_charge_duration_seconds",
		Help:      "Latency of Pix gateway calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"attempt"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_submissions_total",
		Help:      "Checkout submissions by final outcome.",
	}, []string{"outcome"})
	cepLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cep_lookups_total",
		Help:      "Postal code lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(chargeAttempts, chargeDuration, submissions, cepLookups)
	return &CheckoutMetrics{
		chargeAttempts: chargeAttempts,
		chargeDuration: chargeDuration,
		submissions:    submissions,
		cepLookups:     cepLookups,
	}
}

// ObserveCharge records one gateway call.
func (m *CheckoutMetrics) ObserveCharge(attempt, outcome string, took time.Duration) {
	if m == nil || m.chargeAttempts == nil {
		return
	}
	attempt = normalizeLabel(attempt)
	m.chargeAttempts.WithLabelValues(attempt, normalizeLabel(outcome)).Inc()
	m.chargeDuration.WithLabelValues(attempt).Observe(took.Seconds())
}

// IncSubmission counts a finished submission.
func (m *CheckoutMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCEPLookup counts a postal code lookup.
func (m *CheckoutMetrics) IncCEPLookup(outcome string) {
	if m == nil || m.cepLookups == nil {
		return
	}
	m.cepLookups.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
