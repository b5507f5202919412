package ports

import (
	"context"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// DeviceSource supplies the raw topology snapshot for one analysis run.
// Implementations (controller client, SNMP collector, snapshot file) own all
// I/O, retries and timeouts; the engine only sees the finished snapshot.
type DeviceSource interface {
	Snapshot(ctx context.Context) (domain.TopologySnapshot, error)
}

// ReportStore persists optimization reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *domain.STPOptimizationReport) error
	GetReport(ctx context.Context, id string) (*domain.STPOptimizationReport, error)
	ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error)

	// Close closes the storage connection.
	Close() error
}

// DiagramRenderer turns a structured node/edge view into an opaque
// diagram-notation string. The engine does not validate the notation, only
// that a string came back.
type DiagramRenderer interface {
	Render(view domain.DiagramView) (string, error)
}

// ReportPublisher pushes freshly generated reports to connected consumers
// (the websocket fan-out in practice).
type ReportPublisher interface {
	PublishReport(report *domain.STPOptimizationReport)
}
