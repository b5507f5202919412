package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// MermaidRenderer renders a topology view as a Mermaid graph. It implements
// ports.DiagramRenderer; the engine treats the output as opaque text.
type MermaidRenderer struct{}

// NewMermaidRenderer creates a new Mermaid renderer.
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// Render produces a Mermaid "graph TB" with one subgraph per hierarchy tier,
// the gateway on top, blocked links drawn dashed and the root marked.
func (r *MermaidRenderer) Render(view domain.DiagramView) (string, error) {
	for _, n := range view.Nodes {
		if n.DeviceID == "" {
			return "", fmt.Errorf("diagram node without device id (name %q)", n.Name)
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TB\n")

	byTier := make(map[int][]domain.DiagramNode)
	for _, n := range view.Nodes {
		byTier[n.Tier] = append(byTier[n.Tier], n)
	}
	tiers := make([]int, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)

	if view.GatewayName != "" {
		fmt.Fprintf(&sb, "    GW((%s))\n\n", sanitize(view.GatewayName))
	}

	for _, tier := range tiers {
		name := domain.TierName(tier)
		fmt.Fprintf(&sb, "    subgraph %s[\" %s \"]\n    direction LR\n", strings.ToUpper(name), name)
		for _, n := range byTier[tier] {
			label := fmt.Sprintf("%s<br/>%d", sanitize(n.Name), n.Priority)
			if n.IsRoot {
				label += " (root)"
			}
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", nodeID(n.DeviceID), label)
		}
		sb.WriteString("    end\n\n")
	}

	if view.GatewayName != "" {
		for _, n := range view.Nodes {
			if n.GatewayAdjacent {
				fmt.Fprintf(&sb, "    GW --> %s\n", nodeID(n.DeviceID))
			}
		}
	}

	// Edges are discovered per side; collapse the two directions of one link.
	// Gateway links are drawn from adjacency above, so edges touching devices
	// that are not diagram nodes (the gateway) are skipped here.
	declared := make(map[string]bool, len(view.Nodes))
	for _, n := range view.Nodes {
		declared[nodeID(n.DeviceID)] = true
	}
	rendered := make(map[string]bool)
	for _, e := range view.Edges {
		from, to := nodeID(e.From), nodeID(e.To)
		if !declared[from] || !declared[to] {
			continue
		}
		key := from + "|" + to
		if from > to {
			key = to + "|" + from
		}
		if rendered[key] {
			continue
		}
		rendered[key] = true

		if e.Blocked {
			fmt.Fprintf(&sb, "    %s -.-x|blocked| %s\n", from, to)
		} else {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef core fill:#4CAF50,stroke:#2E7D32,color:#fff\n")
	sb.WriteString("    classDef dist fill:#2196F3,stroke:#1565C0,color:#fff\n")
	sb.WriteString("    classDef access fill:#FF9800,stroke:#E65100,color:#fff\n")
	sb.WriteString("    classDef root fill:#9C27B0,stroke:#6A1B9A,color:#fff\n")
	sb.WriteString("    classDef gateway fill:#607D8B,stroke:#37474F,color:#fff\n\n")
	if view.GatewayName != "" {
		sb.WriteString("    class GW gateway\n")
	}

	for _, tier := range tiers {
		class := "access"
		switch tier {
		case 0:
			class = "core"
		case 1:
			class = "dist"
		}
		for _, n := range byTier[tier] {
			if n.IsRoot {
				fmt.Fprintf(&sb, "    class %s root\n", nodeID(n.DeviceID))
			} else {
				fmt.Fprintf(&sb, "    class %s %s\n", nodeID(n.DeviceID), class)
			}
		}
	}

	sb.WriteString("```")
	return sb.String(), nil
}

// nodeID makes a device id safe as a Mermaid node identifier.
func nodeID(id string) string {
	id = strings.ReplaceAll(id, "-", "_")
	return strings.ReplaceAll(id, ":", "_")
}

// sanitize strips characters that break Mermaid labels.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
