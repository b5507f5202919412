package optimizer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// chainTopology is A (gateway-adjacent, priority 4096, root) - B - C as a
// forwarding chain, the classic three-tier layout.
func chainTopology() domain.STPTopology {
	return domain.STPTopology{
		RootBridgeID:       "sw-a",
		RootBridgeName:     "Core A",
		RootBridgePriority: 4096,
		GatewayID:          "gw",
		GatewayName:        "Gateway",
		Switches: []domain.SwitchSTPConfig{
			{
				DeviceID: "sw-a", Name: "Core A", MAC: "aa:00:00:00:00:01",
				CurrentPriority: 4096, IsRootBridge: true, ConnectedToGateway: true,
				PortStates: []domain.STPPortConfig{
					{PortIdx: 1, State: domain.PortStateForwarding, Role: domain.RoleDesignated, IsUplink: true},
				},
				UplinkPorts: []int{1},
			},
			{
				DeviceID: "sw-b", Name: "Dist B", MAC: "aa:00:00:00:00:02",
				CurrentPriority: 32768,
				PortStates: []domain.STPPortConfig{
					{PortIdx: 1, State: domain.PortStateForwarding, Role: domain.RoleRoot, IsUplink: true},
				},
				UplinkPorts: []int{1},
			},
			{
				DeviceID: "sw-c", Name: "Access C", MAC: "aa:00:00:00:00:03",
				CurrentPriority: 32768,
				PortStates: []domain.STPPortConfig{
					{PortIdx: 1, State: domain.PortStateForwarding, Role: domain.RoleRoot, IsUplink: true},
				},
				UplinkPorts: []int{1},
			},
		},
		Connections: []domain.STPConnection{
			{FromDeviceID: "sw-a", ToDeviceID: "gw", State: domain.PortStateForwarding},
			{FromDeviceID: "sw-a", ToDeviceID: "sw-b", State: domain.PortStateForwarding},
			{FromDeviceID: "sw-b", ToDeviceID: "sw-c", State: domain.PortStateForwarding},
		},
	}
}

func rootPort(t *testing.T, topo *domain.STPTopology) {
	t.Helper()
	for i := range topo.Switches {
		sw := &topo.Switches[i]
		if sw.IsRootBridge {
			continue
		}
		idx := sw.PortStates[0].PortIdx
		sw.RootPortIdx = &idx
	}
}

func TestOptimizeThreeTierScenario(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)
	res := NewOptimizer().Optimize(topo)

	if res.OptimalRootName != "Core A" {
		t.Errorf("optimal root = %q; want Core A", res.OptimalRootName)
	}

	wantTiers := map[string]int{"sw-a": 0, "sw-b": 1, "sw-c": 2}
	for id, want := range wantTiers {
		sw := res.Topology.Switch(id)
		if sw == nil || sw.HierarchyTier != want {
			t.Errorf("%s tier = %v; want %d", id, sw, want)
		}
	}

	if len(res.Changes) != 2 {
		t.Fatalf("changes = %d; want 2 (%+v)", len(res.Changes), res.Changes)
	}
	if res.Changes[0].DeviceID != "sw-b" || res.Changes[0].NewPriority != domain.PriorityDistribution {
		t.Errorf("first change = %+v; want sw-b -> 8192", res.Changes[0])
	}
	if res.Changes[1].DeviceID != "sw-c" || res.Changes[1].NewPriority != domain.PriorityAccessBase {
		t.Errorf("second change = %+v; want sw-c -> 16384", res.Changes[1])
	}

	// A is already at core priority; no change for it.
	for _, c := range res.Changes {
		if c.DeviceID == "sw-a" {
			t.Error("sw-a should not receive a change")
		}
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)

	first := NewOptimizer().Optimize(topo)
	second := NewOptimizer().Optimize(topo)

	if !reflect.DeepEqual(first.Changes, second.Changes) {
		t.Errorf("changes differ across runs:\n%+v\n%+v", first.Changes, second.Changes)
	}
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)

	NewOptimizer().Optimize(topo)

	for i := range topo.Switches {
		if topo.Switches[i].OptimalPriority != nil {
			t.Error("caller topology was mutated with optimal priorities")
		}
	}
	if topo.Switches[1].HierarchyTier != 0 {
		t.Error("caller topology tier was mutated")
	}
}

func TestOptimizeNoOpWhenPrioritiesMatch(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)
	topo.Switches[1].CurrentPriority = domain.PriorityDistribution
	topo.Switches[2].CurrentPriority = domain.PriorityAccessBase

	res := NewOptimizer().Optimize(topo)
	if len(res.Changes) != 0 {
		t.Errorf("expected no changes, got %+v", res.Changes)
	}
	if res.OptimalRootID != topo.RootBridgeID {
		t.Error("optimal root should match the current root")
	}
	for _, rec := range res.Recommendations {
		if strings.Contains(rec, "Move the root bridge") {
			t.Error("no root move should be recommended when the root already matches")
		}
	}
}

func TestOptimizeWithinTierIncrements(t *testing.T) {
	topo := domain.STPTopology{
		GatewayID: "gw",
		Switches: []domain.SwitchSTPConfig{
			{DeviceID: "sw-1", Name: "One", CurrentPriority: 32768, ConnectedToGateway: true},
			{DeviceID: "sw-2", Name: "Two", CurrentPriority: 32768, ConnectedToGateway: true},
		},
	}

	res := NewOptimizer().Optimize(topo)

	one := res.Topology.Switch("sw-1")
	two := res.Topology.Switch("sw-2")
	if one.OptimalPriority == nil || *one.OptimalPriority != 4096 {
		t.Errorf("sw-1 optimal = %v; want 4096", one.OptimalPriority)
	}
	// Second core switch would get 8192, the distribution base; it is
	// clamped to the tier ceiling (which for core is 4096) and reported.
	if two.OptimalPriority == nil || *two.OptimalPriority != 4096 {
		t.Errorf("sw-2 optimal = %v; want clamped 4096", two.OptimalPriority)
	}
	if !hasIssueContaining(res.Issues, "clamped") {
		t.Errorf("expected a clamping issue, got %v", res.Issues)
	}
}

func TestOptimizeAccessTierIncrementsWithoutClamp(t *testing.T) {
	// None of the switches reach the gateway, so all land in the access tier.
	topo := domain.STPTopology{
		GatewayID: "gw",
		Switches: []domain.SwitchSTPConfig{
			{DeviceID: "sw-1", Name: "One", CurrentPriority: 32768},
			{DeviceID: "sw-2", Name: "Two", CurrentPriority: 32768},
			{DeviceID: "sw-3", Name: "Three", CurrentPriority: 32768},
		},
	}

	res := NewOptimizer().Optimize(topo)

	want := map[string]int{
		"sw-1": 16384,
		"sw-2": 16384 + 4096,
		"sw-3": 16384 + 2*4096,
	}
	for id, p := range want {
		sw := res.Topology.Switch(id)
		if sw.OptimalPriority == nil || *sw.OptimalPriority != p {
			t.Errorf("%s optimal = %v; want %d", id, sw.OptimalPriority, p)
		}
	}
}

func TestOptimizeTierOrderingStrict(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)
	res := NewOptimizer().Optimize(topo)

	byTier := make(map[int][]int)
	for i := range res.Topology.Switches {
		sw := &res.Topology.Switches[i]
		if sw.OptimalPriority != nil {
			byTier[sw.HierarchyTier] = append(byTier[sw.HierarchyTier], *sw.OptimalPriority)
		}
	}
	for tier := 0; tier < 2; tier++ {
		for _, lower := range byTier[tier] {
			for _, higher := range byTier[tier+1] {
				if lower >= higher {
					t.Errorf("tier %d priority %d not below tier %d priority %d", tier, lower, tier+1, higher)
				}
			}
		}
	}
}

func TestOptimizeEmptyTopology(t *testing.T) {
	res := NewOptimizer().Optimize(domain.STPTopology{})
	if len(res.Changes) != 0 || res.OptimalRootID != "" {
		t.Error("empty topology should produce no changes and no root")
	}
	if !hasIssueContaining(res.Issues, "No switches") {
		t.Errorf("expected a no-switches issue, got %v", res.Issues)
	}
}

func TestOptimizeNoGatewayEmitsNoChanges(t *testing.T) {
	topo := domain.STPTopology{
		Switches: []domain.SwitchSTPConfig{
			{DeviceID: "sw-1", Name: "One", CurrentPriority: 32768},
		},
	}
	res := NewOptimizer().Optimize(topo)

	// A missing gateway is a caller contract violation: explain it and stop.
	if !hasIssueContaining(res.Issues, "No gateway") {
		t.Errorf("expected a no-gateway issue, got %v", res.Issues)
	}
	if len(res.Changes) != 0 {
		t.Errorf("no changes may be emitted without a gateway, got %+v", res.Changes)
	}
	if res.OptimalRootID != "" || res.OptimalRootName != "" {
		t.Errorf("no root recommendation may be made without a gateway, got %q", res.OptimalRootID)
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", res.Recommendations)
	}
	if sw := res.Topology.Switch("sw-1"); sw.OptimalPriority != nil {
		t.Errorf("no optimal priority may be assigned without a gateway, got %d", *sw.OptimalPriority)
	}
}

func TestOptimizeFlagsRootNotOnGateway(t *testing.T) {
	topo := chainTopology()
	rootPort(t, &topo)
	// Make B the current root even though A touches the gateway.
	topo.Switches[0].IsRootBridge = false
	topo.Switches[1].IsRootBridge = true
	topo.Switches[1].RootPortIdx = nil
	topo.RootBridgeID = "sw-b"
	topo.RootBridgeName = "Dist B"
	topo.RootBridgePriority = 32768
	idx := 1
	topo.Switches[0].RootPortIdx = &idx

	res := NewOptimizer().Optimize(topo)

	if !hasIssueContaining(res.Issues, "not directly connected to the gateway") {
		t.Errorf("expected a root-placement issue, got %v", res.Issues)
	}
	found := false
	for _, rec := range res.Recommendations {
		if strings.Contains(rec, "Move the root bridge") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a move-root recommendation, got %v", res.Recommendations)
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
