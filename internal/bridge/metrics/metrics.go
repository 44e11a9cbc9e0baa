package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for verification attempts.
// Tracks attempt volume, how attempts resolve, and dropped late signals.
type Metrics struct {
	AttemptsStarted    *prometheus.CounterVec
	Results            *prometheus.CounterVec
	Presentations      prometheus.Counter
	DroppedResolutions *prometheus.CounterVec
	AttemptDuration    prometheus.Histogram
}

// New registers bridge metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AttemptsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verifybridge_attempts_started_total",
			Help: "Verification attempts started, by start method",
		}, []string{"method"}),
		Results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verifybridge_results_total",
			Help: "Results delivered to callers, by result type and error type",
		}, []string{"type", "error_type"}),
		Presentations: f.NewCounter(prometheus.CounterOpts{
			Name: "verifybridge_presentations_total",
			Help: "Times verification UI was presented on a host surface",
		}),
		DroppedResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verifybridge_dropped_resolutions_total",
			Help: "Completion signals dropped because the attempt was already resolved",
		}, []string{"source"}),
		AttemptDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "verifybridge_attempt_duration_seconds",
			Help:    "Time from start to delivered result",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

func (m *Metrics) IncrementAttemptStarted(method string) {
	m.AttemptsStarted.WithLabelValues(method).Inc()
}

func (m *Metrics) IncrementResult(resultType, errorType string) {
	m.Results.WithLabelValues(resultType, errorType).Inc()
}

func (m *Metrics) IncrementPresentation() {
	m.Presentations.Inc()
}

func (m *Metrics) IncrementDroppedResolution(source string) {
	m.DroppedResolutions.WithLabelValues(source).Inc()
}

// ObserveAttempt records the duration of an attempt.
// Call with time.Now() at the start of the attempt.
func (m *Metrics) ObserveAttempt(start time.Time) {
	m.AttemptDuration.Observe(time.Since(start).Seconds())
}
