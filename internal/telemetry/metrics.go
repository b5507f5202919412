package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AnalysesTotal counts completed optimization runs
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stpmap",
			Name:      "analyses_total",
			Help:      "Total number of STP optimization runs",
		},
		[]string{"source"},
	)

	// AnalysisErrors counts runs that failed before producing a report
	AnalysisErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stpmap",
			Name:      "analysis_errors_total",
			Help:      "Total number of failed STP optimization runs",
		},
		[]string{"source", "reason"},
	)

	// AnalysisDuration observes the wall time of a full optimization run
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stpmap",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of STP optimization runs including snapshot collection",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SwitchesAnalyzed tracks the switch count of the most recent run
	SwitchesAnalyzed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stpmap",
			Name:      "switches_analyzed",
			Help:      "Number of switches in the most recent topology snapshot",
		},
	)

	// BlockedPorts tracks blocked/discarding ports in the most recent run
	BlockedPorts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stpmap",
			Name:      "blocked_ports",
			Help:      "Number of blocked or discarding ports in the most recent topology",
		},
	)

	// LoopsDetected is 1 when the most recent run flagged a loop
	LoopsDetected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stpmap",
			Name:      "loops_detected",
			Help:      "Whether the most recent topology showed loop risk (0 or 1)",
		},
	)

	// ChangesRecommended tracks the size of the most recent change plan
	ChangesRecommended = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stpmap",
			Name:      "changes_recommended",
			Help:      "Number of priority changes recommended by the most recent run",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(AnalysesTotal)
		prometheus.DefaultRegisterer.Register(AnalysisErrors)
		prometheus.DefaultRegisterer.Register(AnalysisDuration)
		prometheus.DefaultRegisterer.Register(SwitchesAnalyzed)
		prometheus.DefaultRegisterer.Register(BlockedPorts)
		prometheus.DefaultRegisterer.Register(LoopsDetected)
		prometheus.DefaultRegisterer.Register(ChangesRecommended)
	})
}
