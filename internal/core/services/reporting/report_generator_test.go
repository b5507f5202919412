package reporting

import (
	"errors"
	"strings"
	"testing"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
	"github.com/lcalzada-xor/stpmap/internal/core/services/optimizer"
)

type stubRenderer struct {
	diagram string
	err     error
	views   []domain.DiagramView
}

func (s *stubRenderer) Render(view domain.DiagramView) (string, error) {
	s.views = append(s.views, view)
	if s.err != nil {
		return "", s.err
	}
	return s.diagram, nil
}

func optimizedResult() optimizer.Result {
	opt := 8192
	return optimizer.Result{
		Topology: domain.STPTopology{
			RootBridgeID:       "sw-a",
			RootBridgeName:     "Core A",
			RootBridgePriority: 4096,
			GatewayName:        "Gateway",
			BlockedPortsCount:  1,
			Switches: []domain.SwitchSTPConfig{
				{DeviceID: "sw-a", Name: "Core A", CurrentPriority: 4096, IsRootBridge: true, ConnectedToGateway: true},
				{DeviceID: "sw-b", Name: "Access B", CurrentPriority: 32768, HierarchyTier: 1, OptimalPriority: &opt},
			},
			Connections: []domain.STPConnection{
				{FromDeviceID: "sw-a", ToDeviceID: "sw-b", State: domain.PortStateForwarding},
				{FromDeviceID: "sw-b", ToDeviceID: "sw-a", State: domain.PortStateBlocking, IsBlocked: true},
			},
		},
		Changes: []domain.STPChange{{
			DeviceID: "sw-b", DeviceName: "Access B",
			CurrentPriority: 32768, NewPriority: 8192, HierarchyTier: 1,
			Reason: "Distribution-tier switch should have priority 8192",
		}},
		OptimalRootID:     "sw-a",
		OptimalRootName:   "Core A",
		OptimalRootReason: "Core switch directly connected to gateway",
		Recommendations:   []string{"Apply 1 priority change(s) to align the spanning tree with the network hierarchy"},
	}
}

func TestGenerateAssemblesReport(t *testing.T) {
	renderer := &stubRenderer{diagram: "graph TD"}
	gen := NewReportGenerator(renderer)

	report := gen.Generate(optimizedResult(), []string{"build issue"})

	if report.ID == "" {
		t.Error("report should carry a generated id")
	}
	if report.SwitchesAnalyzed != 2 {
		t.Errorf("switches analyzed = %d; want 2", report.SwitchesAnalyzed)
	}
	if report.CurrentRoot != "Core A" || report.OptimalRoot != "Core A" {
		t.Errorf("roots = %q / %q; want Core A both", report.CurrentRoot, report.OptimalRoot)
	}
	if report.ChangesRequired != 1 || len(report.Changes) != 1 {
		t.Errorf("changes = %d/%d; want 1", report.ChangesRequired, len(report.Changes))
	}
	if report.CurrentDiagram != "graph TD" || report.OptimalDiagram != "graph TD" {
		t.Error("diagrams should come from the renderer")
	}
	if report.Issues[0] != "build issue" {
		t.Errorf("builder issues should lead the list, got %v", report.Issues)
	}
	if !hasIssueContaining(report.Issues, "blocked port(s)") {
		t.Errorf("expected a blocked-ports issue, got %v", report.Issues)
	}
	if len(renderer.views) != 2 {
		t.Fatalf("renderer called %d times; want 2", len(renderer.views))
	}
	if renderer.views[0].Title != "Current Topology" || renderer.views[1].Title != "Optimal Topology" {
		t.Errorf("view titles = %q / %q", renderer.views[0].Title, renderer.views[1].Title)
	}
}

func TestGenerateViewsReflectOptimalState(t *testing.T) {
	renderer := &stubRenderer{diagram: "graph TD"}
	gen := NewReportGenerator(renderer)

	gen.Generate(optimizedResult(), nil)

	current, optimal := renderer.views[0], renderer.views[1]
	if current.Nodes[1].Priority != 32768 {
		t.Errorf("current view priority = %d; want 32768", current.Nodes[1].Priority)
	}
	if optimal.Nodes[1].Priority != 8192 {
		t.Errorf("optimal view priority = %d; want 8192", optimal.Nodes[1].Priority)
	}
	if !optimal.Nodes[0].IsRoot {
		t.Error("optimal view should mark the recommended root")
	}
	if len(current.Edges) != 2 || !current.Edges[1].Blocked {
		t.Errorf("edges not carried into the view: %+v", current.Edges)
	}
}

func TestGenerateNilRendererLeavesDiagramsEmpty(t *testing.T) {
	gen := NewReportGenerator(nil)
	report := gen.Generate(optimizedResult(), nil)

	if report.CurrentDiagram != "" || report.OptimalDiagram != "" {
		t.Error("nil renderer should produce empty diagrams")
	}
	for _, issue := range report.Issues {
		if strings.Contains(issue, "rendering failed") {
			t.Error("nil renderer must not report a rendering failure")
		}
	}
}

func TestGenerateRendererFailureDegrades(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("boom")}
	gen := NewReportGenerator(renderer)

	report := gen.Generate(optimizedResult(), nil)

	if report.CurrentDiagram != "" || report.OptimalDiagram != "" {
		t.Error("failed render should leave the diagram empty")
	}
	if !hasIssueContaining(report.Issues, `Diagram rendering failed for "Current Topology"`) {
		t.Errorf("expected a rendering issue, got %v", report.Issues)
	}
}

func TestGenerateFlagsDefaultRootPriority(t *testing.T) {
	opt := optimizedResult()
	opt.Topology.RootBridgePriority = domain.PriorityDefault

	report := NewReportGenerator(nil).Generate(opt, nil)
	if !hasIssueContaining(report.Issues, "default priority") {
		t.Errorf("expected a default-priority issue, got %v", report.Issues)
	}
}

func hasIssueContaining(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
