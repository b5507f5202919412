package topology

import (
	"fmt"
	"sort"
	"time"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// Builder reconstructs the logical spanning-tree topology of the network
// from raw per-switch records. It is pure computation over the snapshot:
// no I/O, safe for concurrent use on independent inputs.
type Builder struct{}

// NewBuilder creates a new topology builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Result pairs the built topology with the data-quality issues found while
// building it. Issues are advisory; the topology is always usable.
type Result struct {
	Topology domain.STPTopology
	Issues   []string
}

// Build derives the STP topology from a snapshot. Structural violations
// (duplicate port indices, edges to unknown devices, invalid records) skip
// the offending element and record an issue instead of aborting.
func (b *Builder) Build(snapshot domain.TopologySnapshot) Result {
	var issues []string

	// Root fields stay zero until a root is actually elected.
	topo := domain.STPTopology{
		Timestamp:   time.Now(),
		GatewayID:   snapshot.GatewayID,
		GatewayName: snapshot.GatewayName,
	}

	for _, rec := range snapshot.Switches {
		if err := rec.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("Skipping switch record: %v", err))
			continue
		}
		sw, swIssues := b.ingestSwitch(rec)
		issues = append(issues, swIssues...)
		topo.Switches = append(topo.Switches, sw)
	}

	// Stable output regardless of input order.
	sort.Slice(topo.Switches, func(i, j int) bool {
		return topo.Switches[i].DeviceID < topo.Switches[j].DeviceID
	})

	b.electRoot(&topo)
	issues = append(issues, b.resolveRootPorts(&topo)...)
	issues = append(issues, b.buildConnections(&topo, snapshot)...)

	for i := range topo.Switches {
		for _, p := range topo.Switches[i].PortStates {
			if p.State.Blocked() {
				topo.BlockedPortsCount++
			}
		}
	}

	b.markGatewayAdjacency(&topo)

	loops, loopIssues := b.detectLoops(&topo)
	topo.LoopsDetected = loops
	issues = append(issues, loopIssues...)

	return Result{Topology: topo, Issues: issues}
}

// ingestSwitch converts one raw record, dropping duplicate port indices.
func (b *Builder) ingestSwitch(rec domain.RawSwitchRecord) (domain.SwitchSTPConfig, []string) {
	var issues []string

	sw := domain.SwitchSTPConfig{
		DeviceID:        rec.DeviceID,
		Name:            rec.Name,
		MAC:             rec.MAC,
		Model:           rec.Model,
		CurrentPriority: rec.Priority,
		HierarchyTier:   2, // refined by the optimizer
	}

	seen := make(map[int]bool, len(rec.Ports))
	for _, p := range rec.Ports {
		if seen[p.PortIdx] {
			issues = append(issues, fmt.Sprintf(
				"Switch %q reports duplicate port index %d; keeping the first occurrence", rec.Name, p.PortIdx))
			continue
		}
		seen[p.PortIdx] = true

		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Port %d", p.PortIdx)
		}

		cfg := domain.STPPortConfig{
			PortIdx:  p.PortIdx,
			PortName: name,
			State:    p.State,
			Role:     p.Role,
			PathCost: p.PathCost,
			IsUplink: p.IsUplink,
		}
		if p.Neighbor != nil {
			cfg.ConnectedDevice = p.Neighbor.DeviceName
			cfg.ConnectedDeviceID = p.Neighbor.DeviceID
		}
		sw.PortStates = append(sw.PortStates, cfg)
		if p.IsUplink {
			sw.UplinkPorts = append(sw.UplinkPorts, p.PortIdx)
		}
	}

	return sw, issues
}

// electRoot marks the root bridge: lowest priority wins, ties broken by the
// lexicographically smallest MAC, per the 802.1D bridge-ID comparison.
func (b *Builder) electRoot(topo *domain.STPTopology) {
	rootIdx := -1
	for i := range topo.Switches {
		if rootIdx == -1 {
			rootIdx = i
			continue
		}
		cur := &topo.Switches[rootIdx]
		cand := &topo.Switches[i]
		if cand.CurrentPriority < cur.CurrentPriority ||
			(cand.CurrentPriority == cur.CurrentPriority &&
				domain.NormalizeMAC(cand.MAC) < domain.NormalizeMAC(cur.MAC)) {
			rootIdx = i
		}
	}
	if rootIdx == -1 {
		return
	}

	root := &topo.Switches[rootIdx]
	root.IsRootBridge = true
	topo.RootBridgeID = root.DeviceID
	topo.RootBridgeName = root.Name
	topo.RootBridgePriority = root.CurrentPriority
}

// resolveRootPorts fills in root_port_idx from the root-role port. A non-root
// switch without one is a data-quality finding, not an error.
func (b *Builder) resolveRootPorts(topo *domain.STPTopology) []string {
	var issues []string
	for i := range topo.Switches {
		sw := &topo.Switches[i]
		if sw.IsRootBridge {
			continue
		}
		found := false
		for _, p := range sw.PortStates {
			if p.Role == domain.RoleRoot {
				idx := p.PortIdx
				sw.RootPortIdx = &idx
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, fmt.Sprintf(
				"Switch %q reports no root port despite not being the root bridge", sw.Name))
		}
	}
	return issues
}

// buildConnections emits one directed edge per LLDP neighbor hint. No
// reverse edge is synthesized: one-sided discovery stays one-sided. Edges
// pointing at devices that are neither managed switches nor the gateway are
// dropped with an issue.
func (b *Builder) buildConnections(topo *domain.STPTopology, snapshot domain.TopologySnapshot) []string {
	var issues []string

	known := make(map[string]bool, len(topo.Switches))
	for i := range topo.Switches {
		known[topo.Switches[i].DeviceID] = true
	}

	recByID := make(map[string]domain.RawSwitchRecord, len(snapshot.Switches))
	for _, rec := range snapshot.Switches {
		recByID[rec.DeviceID] = rec
	}

	for i := range topo.Switches {
		sw := &topo.Switches[i]
		rec, ok := recByID[sw.DeviceID]
		if !ok {
			continue
		}
		seen := make(map[int]bool)
		for _, p := range rec.Ports {
			if p.Neighbor == nil || seen[p.PortIdx] {
				seen[p.PortIdx] = true
				continue
			}
			seen[p.PortIdx] = true

			target := p.Neighbor.DeviceID
			if !known[target] && target != topo.GatewayID {
				issues = append(issues, fmt.Sprintf(
					"Switch %q port %d reports unknown neighbor %q; edge dropped", sw.Name, p.PortIdx, target))
				continue
			}

			conn := domain.STPConnection{
				FromDeviceID:   sw.DeviceID,
				FromDeviceName: sw.Name,
				FromPortIdx:    p.PortIdx,
				ToDeviceID:     target,
				ToDeviceName:   p.Neighbor.DeviceName,
				State:          p.State,
				PathCost:       p.PathCost,
				IsBlocked:      p.State.Blocked(),
			}
			if p.Neighbor.PortIdx != nil {
				idx := *p.Neighbor.PortIdx
				conn.ToPortIdx = &idx
			}
			topo.Connections = append(topo.Connections, conn)
		}
	}

	return issues
}

// markGatewayAdjacency sets connected_to_gateway for switches with a direct
// edge to the gateway device.
func (b *Builder) markGatewayAdjacency(topo *domain.STPTopology) {
	if topo.GatewayID == "" {
		return
	}
	adjacent := make(map[string]bool)
	for _, c := range topo.Connections {
		if c.ToDeviceID == topo.GatewayID {
			adjacent[c.FromDeviceID] = true
		}
	}
	for i := range topo.Switches {
		topo.Switches[i].ConnectedToGateway = adjacent[topo.Switches[i].DeviceID]
	}
}

// detectLoops flags loop risk two ways: a switch with more than one
// forwarding/learning port toward the same neighbor, or a directed cycle in
// the forwarding-only subgraph reachable from the root. Switches without a
// forwarding path to the root are a separate finding (disconnected segment),
// not a loop.
func (b *Builder) detectLoops(topo *domain.STPTopology) (bool, []string) {
	var issues []string
	loops := false

	// Duplicate active paths toward one neighbor.
	activeTargets := make(map[string]map[string]int) // from -> to -> count
	for _, c := range topo.Connections {
		if !c.State.Active() {
			continue
		}
		if activeTargets[c.FromDeviceID] == nil {
			activeTargets[c.FromDeviceID] = make(map[string]int)
		}
		activeTargets[c.FromDeviceID][c.ToDeviceID]++
	}
	for from, targets := range activeTargets {
		for to, n := range targets {
			if n > 1 {
				loops = true
				fromName, toName := from, to
				if sw := topo.Switch(from); sw != nil {
					fromName = sw.Name
				}
				if sw := topo.Switch(to); sw != nil {
					toName = sw.Name
				}
				issues = append(issues, fmt.Sprintf(
					"Switch %q has %d forwarding ports toward %q - parallel active paths indicate a loop", fromName, n, toName))
			}
		}
	}

	// Directed cycle over forwarding edges, from the root.
	forwarding := make(map[string][]string)
	for _, c := range topo.Connections {
		if c.State == domain.PortStateForwarding {
			forwarding[c.FromDeviceID] = append(forwarding[c.FromDeviceID], c.ToDeviceID)
		}
	}
	if topo.RootBridgeID != "" {
		if b.cycleFrom(topo.RootBridgeID, forwarding) {
			loops = true
			issues = append(issues,
				"Forwarding-only subgraph contains a cycle reachable from the root bridge")
		}
		issues = append(issues, b.findDisconnected(topo)...)
	}

	return loops, issues
}

// cycleFrom runs an iterative DFS with a recursion stack; a back edge into
// the stack is a cycle.
func (b *Builder) cycleFrom(start string, adj map[string][]string) bool {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = inStack
		for _, next := range adj[node] {
			switch state[next] {
			case inStack:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[node] = done
		return false
	}

	return visit(start)
}

// findDisconnected reports switches with no forwarding path to the root.
// Undirected reachability is used so one-sided LLDP discovery does not
// produce false positives.
func (b *Builder) findDisconnected(topo *domain.STPTopology) []string {
	adj := make(map[string][]string)
	for _, c := range topo.Connections {
		if c.State != domain.PortStateForwarding {
			continue
		}
		adj[c.FromDeviceID] = append(adj[c.FromDeviceID], c.ToDeviceID)
		adj[c.ToDeviceID] = append(adj[c.ToDeviceID], c.FromDeviceID)
	}

	reached := map[string]bool{topo.RootBridgeID: true}
	queue := []string{topo.RootBridgeID}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	var issues []string
	for i := range topo.Switches {
		sw := &topo.Switches[i]
		if !reached[sw.DeviceID] {
			issues = append(issues, fmt.Sprintf(
				"Switch %q has no forwarding path to the root bridge (disconnected segment)", sw.Name))
		}
	}
	return issues
}
