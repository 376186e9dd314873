package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
// Tracks submission outcomes and critical path durations.
type Metrics struct {
	// Submission outcomes by classification result
	SubmissionOutcome *prometheus.CounterVec

	// Registry lookup latencies by strategy
	LookupLatency *prometheus.HistogramVec

	// Overall submission latency including registry round trips
	SubmitLatency prometheus.Histogram

	// Review tasks raised for human resolution
	ReviewTasksRaised prometheus.Counter
}

// New creates a new Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		SubmissionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_submission_outcomes_total",
			Help: "Total submission outcomes by classification result",
		}, []string{"outcome"}), // outcome: "unique", "unique_attach", "potential_duplicate", "conflict", "invalid", "unavailable"

		LookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_lookup_duration_seconds",
			Help:    "Duration of registry lookup operations by strategy",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"strategy"}),

		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_submit_duration_seconds",
			Help:    "Duration of full submission handling including registry round trips",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ReviewTasksRaised: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_review_tasks_raised_total",
			Help: "Total review tasks raised for human resolution",
		}),
	}
}

// IncrementOutcome records a submission outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.SubmissionOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveLookupLatency records the duration of a registry lookup by strategy.
func (m *Metrics) ObserveLookupLatency(strategy string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(strategy).Observe(d.Seconds())
	}
}

// ObserveSubmitLatency records the total submission handling duration.
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}

// IncrementReviewTasksRaised records a review task being raised.
func (m *Metrics) IncrementReviewTasksRaised() {
	if m != nil {
		m.ReviewTasksRaised.Inc()
	}
}
