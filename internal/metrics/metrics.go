// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values, matching core.Variant plus a frame-level error.
const (
	OutcomeKnown   = "known"
	OutcomeUnknown = "unknown"
	OutcomeIllegal = "illegal"
)

// Metrics holds the dissector collectors. Each instance registers on its
// own Registerer so tests can use a fresh registry.
type Metrics struct {
	// FramesTotal counts frames read, by result (decoded, filtered, skipped, fragment)
	FramesTotal *prometheus.CounterVec

	// UnitsTotal counts dissected units by family and outcome
	UnitsTotal *prometheus.CounterVec

	// UnitBytes measures unit sizes per family
	UnitBytes *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otus_dissect_frames_total",
				Help: "Total number of frames read",
			},
			[]string{"result"},
		),
		UnitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otus_dissect_units_total",
				Help: "Total number of protocol units dissected",
			},
			[]string{"family", "outcome"},
		),
		UnitBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "otus_dissect_unit_bytes",
				Help:    "Size of dissected protocol units in bytes",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1, 2, 4, ..., 2048
			},
			[]string{"family"},
		),
	}
}

// ObserveUnit records one dissected unit.
func (m *Metrics) ObserveUnit(family, outcome string, size int) {
	m.UnitsTotal.WithLabelValues(family, outcome).Inc()
	m.UnitBytes.WithLabelValues(family).Observe(float64(size))
}

// ObserveFrame records one frame read with its result.
func (m *Metrics) ObserveFrame(result string) {
	m.FramesTotal.WithLabelValues(result).Inc()
}
