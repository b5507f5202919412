package diagram

import (
	"strings"
	"testing"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

func sampleView() domain.DiagramView {
	return domain.DiagramView{
		Title:       "Current Topology",
		GatewayName: "Gateway",
		Nodes: []domain.DiagramNode{
			{DeviceID: "sw-a", Name: "Core A", Tier: 0, Priority: 4096, IsRoot: true, GatewayAdjacent: true},
			{DeviceID: "sw-b", Name: "Access B", Tier: 2, Priority: 32768},
			{DeviceID: "sw-c", Name: "Access C", Tier: 2, Priority: 32768},
		},
		Edges: []domain.DiagramEdge{
			{From: "sw-a", To: "sw-b"},
			{From: "sw-b", To: "sw-a"},
			{From: "sw-b", To: "sw-c", Blocked: true},
		},
	}
}

func TestRenderBasicStructure(t *testing.T) {
	out, err := NewMermaidRenderer().Render(sampleView())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		"```mermaid",
		"graph TB",
		"GW((Gateway))",
		"subgraph CORE",
		"subgraph ACCESS",
		`sw_a["Core A<br/>4096 (root)"]`,
		`sw_b["Access B<br/>32768"]`,
		"GW --> sw_a",
		"class sw_a root",
		"class sw_b access",
		"class GW gateway",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diagram missing %q\n%s", want, out)
		}
	}
}

func TestRenderCollapsesBidirectionalEdges(t *testing.T) {
	out, err := NewMermaidRenderer().Render(sampleView())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if strings.Count(out, "sw_a --> sw_b")+strings.Count(out, "sw_b --> sw_a") != 1 {
		t.Errorf("a-b link should render exactly once\n%s", out)
	}
	if !strings.Contains(out, "sw_b -.-x|blocked| sw_c") {
		t.Errorf("blocked link should render dashed\n%s", out)
	}
}

func TestRenderSkipsEdgesToUndeclaredNodes(t *testing.T) {
	view := sampleView()
	view.Edges = append(view.Edges, domain.DiagramEdge{From: "sw-a", To: "gw"})

	out, err := NewMermaidRenderer().Render(view)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "sw_a --> gw") {
		t.Error("edges to non-node devices should be skipped")
	}
}

func TestRenderRejectsNodeWithoutDeviceID(t *testing.T) {
	view := sampleView()
	view.Nodes = append(view.Nodes, domain.DiagramNode{Name: "nameless"})

	if _, err := NewMermaidRenderer().Render(view); err == nil {
		t.Error("expected an error for a node without a device id")
	}
}

func TestRenderSanitizesLabels(t *testing.T) {
	view := domain.DiagramView{
		Nodes: []domain.DiagramNode{
			{DeviceID: "sw-1", Name: `Switch "quoted"` + "\nline", Tier: 2, Priority: 32768},
		},
	}
	out, err := NewMermaidRenderer().Render(view)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "Switch 'quoted' line") {
		t.Errorf("labels should be sanitized\n%s", out)
	}
	if strings.Contains(out, "GW((") {
		t.Error("no gateway node expected without a gateway name")
	}
}
