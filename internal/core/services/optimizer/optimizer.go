package optimizer

import (
	"fmt"
	"sort"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// Optimizer assigns hierarchy tiers and optimal bridge priorities to a built
// topology and diffs them against the current configuration. Same input
// always yields the same assignment and change ordering.
type Optimizer struct{}

// NewOptimizer creates a new priority optimizer.
func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Result is the outcome of one optimization pass. Topology is a fresh copy
// with hierarchy_tier and optimal_priority populated; the caller's snapshot
// is never mutated.
type Result struct {
	Topology          domain.STPTopology
	Changes           []domain.STPChange
	OptimalRootID     string
	OptimalRootName   string
	OptimalRootReason string
	Issues            []string
	Recommendations   []string
}

// Optimize computes tiers from gateway hop distance, assigns per-tier
// priorities deterministically and emits a change per switch whose current
// priority differs from the optimal one.
func (o *Optimizer) Optimize(topo domain.STPTopology) Result {
	res := Result{Topology: topo.Clone()}
	t := &res.Topology

	if len(t.Switches) == 0 {
		res.Issues = append(res.Issues,
			"No switches supplied; nothing to optimize")
		return res
	}
	// Without a gateway there is no hierarchy anchor: emit no changes and no
	// root recommendation, only the explanation.
	if t.GatewayID == "" {
		res.Issues = append(res.Issues,
			"No gateway identified; hierarchy tiers cannot be derived and no priority changes or root recommendation can be made")
		return res
	}

	o.assignTiers(t, &res)
	o.assignPriorities(t, &res)
	o.diffChanges(t, &res)
	o.recommendRoot(t, &res)
	o.collectIssues(t, &res)

	return res
}

// assignTiers computes hop distance from the gateway over non-blocked edges:
// gateway-adjacent switches are distance 0 (core), one hop out is
// distribution, everything further (or unreachable) is access.
func (o *Optimizer) assignTiers(t *domain.STPTopology, res *Result) {
	adj := make(map[string][]string)
	for _, c := range t.Connections {
		if c.IsBlocked {
			continue
		}
		adj[c.FromDeviceID] = append(adj[c.FromDeviceID], c.ToDeviceID)
		adj[c.ToDeviceID] = append(adj[c.ToDeviceID], c.FromDeviceID)
	}

	dist := make(map[string]int, len(t.Switches))
	var queue []string
	for i := range t.Switches {
		if t.Switches[i].ConnectedToGateway {
			dist[t.Switches[i].DeviceID] = 0
			queue = append(queue, t.Switches[i].DeviceID)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if _, ok := dist[next]; !ok && next != t.GatewayID {
				dist[next] = dist[node] + 1
				queue = append(queue, next)
			}
		}
	}

	for i := range t.Switches {
		sw := &t.Switches[i]
		d, ok := dist[sw.DeviceID]
		if !ok {
			sw.HierarchyTier = 2
			if t.GatewayID != "" {
				res.Issues = append(res.Issues, fmt.Sprintf(
					"Switch %q is unreachable from the gateway (isolated segment); defaulting to access tier", sw.Name))
			}
			continue
		}
		if d > 2 {
			d = 2
		}
		sw.HierarchyTier = d
	}
}

// assignPriorities fills optimal_priority per tier: base + increment * index,
// with index being the switch's sort position by device_id within its tier.
// Assignments that would spill into the next tier's base are clamped to the
// tier's last slot and reported, so cross-tier ordering stays strict.
func (o *Optimizer) assignPriorities(t *domain.STPTopology, res *Result) {
	byTier := make(map[int][]*domain.SwitchSTPConfig)
	for i := range t.Switches {
		sw := &t.Switches[i]
		byTier[sw.HierarchyTier] = append(byTier[sw.HierarchyTier], sw)
	}

	for tier, switches := range byTier {
		sort.Slice(switches, func(i, j int) bool {
			return switches[i].DeviceID < switches[j].DeviceID
		})

		base, ceiling := tierBounds(tier)
		for idx, sw := range switches {
			p := base + idx*domain.PriorityIncrement
			if p > ceiling {
				p = ceiling
				res.Issues = append(res.Issues, fmt.Sprintf(
					"%s tier has too many switches for distinct priorities; %q clamped to %d", domain.TierName(tier), sw.Name, ceiling))
			}
			v := p
			sw.OptimalPriority = &v
		}
	}
}

// tierBounds returns the base priority for a tier and the largest value a
// switch in that tier may be assigned without overlapping the next tier.
func tierBounds(tier int) (base, ceiling int) {
	switch tier {
	case 0:
		return domain.PriorityCore, domain.PriorityDistribution - domain.PriorityIncrement
	case 1:
		return domain.PriorityDistribution, domain.PriorityAccessBase - domain.PriorityIncrement
	default:
		return domain.PriorityAccessBase, domain.PriorityMax
	}
}

// diffChanges emits one change per switch whose current priority differs
// from the optimal one, ordered by tier then device id.
func (o *Optimizer) diffChanges(t *domain.STPTopology, res *Result) {
	for i := range t.Switches {
		sw := &t.Switches[i]
		if sw.OptimalPriority == nil || sw.CurrentPriority == *sw.OptimalPriority {
			continue
		}

		reason := fmt.Sprintf("%s-tier switch should have priority %d",
			domain.TierName(sw.HierarchyTier), *sw.OptimalPriority)
		if sw.HierarchyTier == 0 && sw.ConnectedToGateway {
			reason = fmt.Sprintf("Core switch (gateway-connected) should have priority %d", *sw.OptimalPriority)
		}

		res.Changes = append(res.Changes, domain.STPChange{
			DeviceID:        sw.DeviceID,
			DeviceName:      sw.Name,
			CurrentPriority: sw.CurrentPriority,
			NewPriority:     *sw.OptimalPriority,
			HierarchyTier:   sw.HierarchyTier,
			Reason:          reason,
		})
	}

	sort.Slice(res.Changes, func(i, j int) bool {
		if res.Changes[i].HierarchyTier != res.Changes[j].HierarchyTier {
			return res.Changes[i].HierarchyTier < res.Changes[j].HierarchyTier
		}
		return res.Changes[i].DeviceID < res.Changes[j].DeviceID
	})
}

// recommendRoot picks the optimal root: the gateway-adjacent switch at
// minimal distance (the tier-0 switch assigned the core priority). When no
// switch touches the gateway, fall back to the lowest tier.
func (o *Optimizer) recommendRoot(t *domain.STPTopology, res *Result) {
	var candidate *domain.SwitchSTPConfig
	for i := range t.Switches {
		sw := &t.Switches[i]
		if !sw.ConnectedToGateway {
			continue
		}
		if candidate == nil || sw.DeviceID < candidate.DeviceID {
			candidate = sw
		}
	}
	reason := "Core switch directly connected to gateway"

	if candidate == nil {
		for i := range t.Switches {
			sw := &t.Switches[i]
			if candidate == nil ||
				sw.HierarchyTier < candidate.HierarchyTier ||
				(sw.HierarchyTier == candidate.HierarchyTier && sw.DeviceID < candidate.DeviceID) {
				candidate = sw
			}
		}
		if candidate == nil {
			return
		}
		reason = fmt.Sprintf("%s-tier switch (no gateway-connected switch found)", domain.TierName(candidate.HierarchyTier))
	}

	res.OptimalRootID = candidate.DeviceID
	res.OptimalRootName = candidate.Name
	res.OptimalRootReason = reason

	if t.RootBridgeID != "" && t.RootBridgeID != candidate.DeviceID {
		res.Recommendations = append(res.Recommendations, fmt.Sprintf(
			"Move the root bridge from %q to %q (%s)", t.RootBridgeName, candidate.Name, reason))
	}
}

// collectIssues adds configuration findings that do not block the run.
func (o *Optimizer) collectIssues(t *domain.STPTopology, res *Result) {
	rootClaims := 0
	for i := range t.Switches {
		if t.Switches[i].IsRootBridge {
			rootClaims++
		}
	}
	if rootClaims > 1 {
		res.Issues = append(res.Issues, fmt.Sprintf(
			"%d switches claim to be the root bridge - inconsistent snapshot data", rootClaims))
	}

	if t.LoopsDetected {
		res.Issues = append(res.Issues,
			"Potential switching loop detected in the forwarding topology")
	}

	for i := range t.Switches {
		sw := &t.Switches[i]
		if sw.OptimalPriority == nil || sw.CurrentPriority != *sw.OptimalPriority || sw.RootPortIdx == nil {
			continue
		}
		if p := sw.Port(*sw.RootPortIdx); p != nil && !p.IsUplink {
			res.Issues = append(res.Issues, fmt.Sprintf(
				"Switch %q has the correct tier priority but its root port %d is not an uplink - check cabling", sw.Name, *sw.RootPortIdx))
		}
	}

	if root := t.RootBridge(); root != nil && !root.ConnectedToGateway {
		res.Issues = append(res.Issues, fmt.Sprintf(
			"Root bridge %q is not directly connected to the gateway", root.Name))
		res.Recommendations = append(res.Recommendations,
			"Set the root bridge to a core switch connected to the gateway")
	}

	if len(res.Changes) > 0 {
		res.Recommendations = append(res.Recommendations, fmt.Sprintf(
			"Apply %d priority change(s) to align the spanning tree with the network hierarchy", len(res.Changes)))
	}
}
