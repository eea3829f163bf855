package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the assessment engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Submissions         *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
	ScorePercentage     prometheus.Histogram
}

// New registers the engine metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Subsystem: "assessment",
				Name:      "submissions_total",
				Help:      "Total number of quiz submissions",
			},
			[]string{"trigger", "status"},
		),
		PersistenceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Subsystem: "assessment",
				Name:      "persistence_failures_total",
				Help:      "Failed attempt or answer writes",
			},
			[]string{"phase"}, // attempt, answers, compensation
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "quiz",
				Subsystem: "assessment",
				Name:      "active_sessions",
				Help:      "Sessions currently in progress",
			},
		),
		ScorePercentage: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "quiz",
				Subsystem: "assessment",
				Name:      "score_percentage",
				Help:      "Distribution of submitted score percentages",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

func (m *Metrics) ObserveSubmission(trigger, status string, percentage int) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(trigger, status).Inc()
	m.ScorePercentage.Observe(float64(percentage))
}

func (m *Metrics) PersistenceFailed(phase string) {
	if m == nil {
		return
	}
	m.PersistenceFailures.WithLabelValues(phase).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}
