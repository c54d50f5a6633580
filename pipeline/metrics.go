package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Founder outcomes.
const (
	OutcomeExtracted = "extracted"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

// Company outcomes. OutcomeTimedOut is also the founder outcome when the
// founder deadline expires.
const (
	OutcomeComplete      = "complete"
	OutcomeSessionFailed = "session_failed"
	OutcomeTimedOut      = "timed_out"
)

// Metrics are the pipeline's Prometheus counters.
type Metrics struct {
	Founders        *prometheus.CounterVec
	StructuralMiss  *prometheus.CounterVec
	Companies       *prometheus.CounterVec
	LayoutDrift     prometheus.Counter
	FounderDuration prometheus.Histogram
}

// NewMetrics creates the counters and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Founders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "founderscope",
			Name:      "founders_total",
			Help:      "Founders processed, by outcome.",
		}, []string{"outcome"}),
		StructuralMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "founderscope",
			Name:      "structural_misses_total",
			Help:      "Profile fields left empty because the expected markup was absent.",
		}, []string{"field"}),
		Companies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "founderscope",
			Name:      "companies_total",
			Help:      "Companies processed, by outcome.",
		}, []string{"outcome"}),
		LayoutDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "founderscope",
			Name:      "layout_drift_total",
			Help:      "Profiles whose markup structure differs from the first profile of the run.",
		}),
		FounderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "founderscope",
			Name:      "founder_duration_seconds",
			Help:      "Time spent resolving and extracting one founder.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 9),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Founders, m.StructuralMiss, m.Companies, m.LayoutDrift, m.FounderDuration)
	}
	return m
}
