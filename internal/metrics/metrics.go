// Package metrics holds the prometheus counters of the authoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lesson_studio"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics is the set of counters shared by the content service and the
// save controller.
type Metrics struct {
	// RepositoryCalls counts repository calls by operation and outcome.
	RepositoryCalls *prometheus.CounterVec
	// Saves counts save actions by aggregate outcome.
	Saves *prometheus.CounterVec
	// VersionFallbacks counts lessons whose current version pointer did
	// not resolve and fell back to another version of the lesson.
	VersionFallbacks prometheus.Counter
	// CheckpointsSaved observes the size of each saved checkpoint set.
	CheckpointsSaved prometheus.Histogram
}

// New registers the counters on reg. A nil reg gets a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		RepositoryCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "calls_total",
			Help:      "Repository calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commit",
			Name:      "saves_total",
			Help:      "Save actions by aggregate outcome.",
		}, []string{"outcome"}),
		VersionFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "version_fallbacks_total",
			Help:      "Lessons whose current version id did not resolve during assembly.",
		}),
		CheckpointsSaved: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "commit",
			Name:      "checkpoints_per_save",
			Help:      "Number of checkpoints written per save.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}

// Observe records one repository call.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.RepositoryCalls.WithLabelValues(op, outcome).Inc()
}
