package reporting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/stpmap/internal/core/domain"
	"github.com/lcalzada-xor/stpmap/internal/core/ports"
	"github.com/lcalzada-xor/stpmap/internal/core/services/optimizer"
)

// ReportGenerator assembles the optimization report from the builder and
// optimizer outputs and requests the two diagram renderings.
type ReportGenerator struct {
	renderer ports.DiagramRenderer
}

// NewReportGenerator creates a report generator. The renderer may be nil, in
// which case diagrams are left empty.
func NewReportGenerator(renderer ports.DiagramRenderer) *ReportGenerator {
	return &ReportGenerator{renderer: renderer}
}

// Generate builds a fresh report. Renderer failures degrade to an empty
// diagram plus an issue; they never fail the report.
func (g *ReportGenerator) Generate(opt optimizer.Result, buildIssues []string) *domain.STPOptimizationReport {
	topo := opt.Topology

	report := &domain.STPOptimizationReport{
		ID:                  uuid.New().String(),
		Timestamp:           time.Now(),
		SwitchesAnalyzed:    len(topo.Switches),
		CurrentRoot:         topo.RootBridgeName,
		CurrentRootPriority: topo.RootBridgePriority,
		OptimalRoot:         opt.OptimalRootName,
		OptimalRootReason:   opt.OptimalRootReason,
		ChangesRequired:     len(opt.Changes),
		Changes:             opt.Changes,
		Topology:            topo,
		Issues:              append(append([]string(nil), buildIssues...), opt.Issues...),
		Recommendations:     append([]string(nil), opt.Recommendations...),
	}

	if topo.BlockedPortsCount > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"Found %d blocked port(s) - redundant paths are present", topo.BlockedPortsCount))
	}
	if topo.RootBridgeID != "" && topo.RootBridgePriority == domain.PriorityDefault {
		report.Issues = append(report.Issues,
			"Root bridge uses the default priority (32768) - the root was never explicitly configured")
	}

	report.CurrentDiagram = g.render(report, currentView(topo))
	report.OptimalDiagram = g.render(report, optimalView(topo, opt.OptimalRootID))

	return report
}

// render delegates to the diagram collaborator, degrading gracefully.
func (g *ReportGenerator) render(report *domain.STPOptimizationReport, view domain.DiagramView) string {
	if g.renderer == nil {
		return ""
	}
	diagram, err := g.renderer.Render(view)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"Diagram rendering failed for %q: %v", view.Title, err))
		return ""
	}
	return diagram
}

// currentView shows the topology as discovered: current priorities, the
// elected root, blocked links marked.
func currentView(topo domain.STPTopology) domain.DiagramView {
	view := domain.DiagramView{
		Title:       "Current Topology",
		GatewayName: topo.GatewayName,
	}
	for i := range topo.Switches {
		sw := &topo.Switches[i]
		view.Nodes = append(view.Nodes, domain.DiagramNode{
			DeviceID:        sw.DeviceID,
			Name:            sw.Name,
			Tier:            sw.HierarchyTier,
			Priority:        sw.CurrentPriority,
			IsRoot:          sw.IsRootBridge,
			GatewayAdjacent: sw.ConnectedToGateway,
		})
	}
	view.Edges = edges(topo)
	return view
}

// optimalView shows the recommended state: optimal priorities and the
// recommended root.
func optimalView(topo domain.STPTopology, optimalRootID string) domain.DiagramView {
	view := domain.DiagramView{
		Title:       "Optimal Topology",
		GatewayName: topo.GatewayName,
	}
	for i := range topo.Switches {
		sw := &topo.Switches[i]
		priority := sw.CurrentPriority
		if sw.OptimalPriority != nil {
			priority = *sw.OptimalPriority
		}
		view.Nodes = append(view.Nodes, domain.DiagramNode{
			DeviceID:        sw.DeviceID,
			Name:            sw.Name,
			Tier:            sw.HierarchyTier,
			Priority:        priority,
			IsRoot:          sw.DeviceID == optimalRootID,
			GatewayAdjacent: sw.ConnectedToGateway,
		})
	}
	view.Edges = edges(topo)
	return view
}

func edges(topo domain.STPTopology) []domain.DiagramEdge {
	out := make([]domain.DiagramEdge, 0, len(topo.Connections))
	for _, c := range topo.Connections {
		out = append(out, domain.DiagramEdge{
			From:    c.FromDeviceID,
			To:      c.ToDeviceID,
			Blocked: c.IsBlocked,
		})
	}
	return out
}
