package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
	"github.com/lcalzada-xor/stpmap/internal/core/ports"
	"github.com/lcalzada-xor/stpmap/internal/core/services/optimizer"
	"github.com/lcalzada-xor/stpmap/internal/core/services/reporting"
	"github.com/lcalzada-xor/stpmap/internal/core/services/topology"
	"github.com/lcalzada-xor/stpmap/internal/telemetry"
)

// Service orchestrates one optimization run: snapshot collection, topology
// build, priority optimization, report assembly, persistence and fan-out.
// It holds no mutable state between runs and is safe for concurrent callers.
type Service struct {
	source     ports.DeviceSource
	store      ports.ReportStore
	publisher  ports.ReportPublisher
	builder    *topology.Builder
	optimizer  *optimizer.Optimizer
	generator  *reporting.ReportGenerator
	sourceName string
}

// NewService wires an analysis service. store and publisher may be nil;
// persistence and broadcasting are then skipped.
func NewService(
	source ports.DeviceSource,
	renderer ports.DiagramRenderer,
	store ports.ReportStore,
	publisher ports.ReportPublisher,
	sourceName string,
) *Service {
	return &Service{
		source:     source,
		store:      store,
		publisher:  publisher,
		builder:    topology.NewBuilder(),
		optimizer:  optimizer.NewOptimizer(),
		generator:  reporting.NewReportGenerator(renderer),
		sourceName: sourceName,
	}
}

// DiscoverTopology collects a snapshot and builds the topology without
// running the optimizer.
func (s *Service) DiscoverTopology(ctx context.Context) (domain.STPTopology, []string, error) {
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		telemetry.AnalysisErrors.WithLabelValues(s.sourceName, "snapshot").Inc()
		return domain.STPTopology{}, nil, fmt.Errorf("collecting topology snapshot: %w", err)
	}
	res := s.builder.Build(snapshot)
	return res.Topology, res.Issues, nil
}

// RunAnalysis performs a full optimization run and returns the fresh report.
func (s *Service) RunAnalysis(ctx context.Context) (*domain.STPOptimizationReport, error) {
	start := time.Now()

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		telemetry.AnalysisErrors.WithLabelValues(s.sourceName, "snapshot").Inc()
		return nil, fmt.Errorf("collecting topology snapshot: %w", err)
	}

	built := s.builder.Build(snapshot)
	opt := s.optimizer.Optimize(built.Topology)
	report := s.generator.Generate(opt, built.Issues)

	telemetry.AnalysesTotal.WithLabelValues(s.sourceName).Inc()
	telemetry.AnalysisDuration.Observe(time.Since(start).Seconds())
	telemetry.SwitchesAnalyzed.Set(float64(report.SwitchesAnalyzed))
	telemetry.BlockedPorts.Set(float64(report.Topology.BlockedPortsCount))
	telemetry.ChangesRecommended.Set(float64(report.ChangesRequired))
	if report.Topology.LoopsDetected {
		telemetry.LoopsDetected.Set(1)
	} else {
		telemetry.LoopsDetected.Set(0)
	}

	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			// Persistence is best effort; the report is still valid.
			slog.Warn("Failed to persist optimization report", "id", report.ID, "err", err)
		}
	}
	if s.publisher != nil {
		s.publisher.PublishReport(report)
	}

	slog.Info("STP optimization run complete",
		"id", report.ID,
		"switches", report.SwitchesAnalyzed,
		"changes", report.ChangesRequired,
		"loops", report.Topology.LoopsDetected,
		"duration", time.Since(start).Round(time.Millisecond))

	return report, nil
}
