package reporting

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// MarkdownExporter formats an optimization report as markdown for wikis,
// tickets and chat. Presentation only; all content comes from the report.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders the full report: summary, issues, topology table, diagrams,
// change table, configuration diff and the priority reference.
func (e *MarkdownExporter) Export(report *domain.STPOptimizationReport) string {
	var sb strings.Builder

	currentRoot := report.CurrentRoot
	if currentRoot == "" {
		currentRoot = "Unknown"
	}
	optimalRoot := report.OptimalRoot
	if optimalRoot == "" {
		optimalRoot = "Unknown"
	}

	fmt.Fprintf(&sb, "# STP Optimization Report\n")
	fmt.Fprintf(&sb, "*Generated: %s*\n\n", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "## Summary\n")
	fmt.Fprintf(&sb, "- **Switches Analyzed**: %d\n", report.SwitchesAnalyzed)
	fmt.Fprintf(&sb, "- **Current Root**: %s (Priority: %d)\n", currentRoot, report.CurrentRootPriority)
	fmt.Fprintf(&sb, "- **Optimal Root**: %s\n", optimalRoot)
	fmt.Fprintf(&sb, "- **Changes Required**: %d\n\n", report.ChangesRequired)

	if len(report.Issues) > 0 {
		sb.WriteString("## Issues Detected\n")
		for _, issue := range report.Issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Current Topology\n\n")
	sb.WriteString("| Switch | Priority | Tier | Root | Gateway Connected |\n")
	sb.WriteString("|--------|----------|------|------|-------------------|\n")
	for i := range report.Topology.Switches {
		sw := &report.Topology.Switches[i]
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n",
			sw.Name, sw.CurrentPriority, domain.TierName(sw.HierarchyTier),
			checkmark(sw.IsRootBridge), checkmark(sw.ConnectedToGateway))
	}
	sb.WriteString("\n")

	if report.CurrentDiagram != "" {
		sb.WriteString("### Current Topology Diagram\n\n")
		sb.WriteString(report.CurrentDiagram)
		sb.WriteString("\n\n")
	}

	if len(report.Changes) > 0 {
		sb.WriteString("## Recommended Changes\n\n")
		sb.WriteString("| Switch | Current | Optimal | Tier | Reason |\n")
		sb.WriteString("|--------|---------|---------|------|--------|\n")
		for _, c := range report.Changes {
			fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s |\n",
				c.DeviceName, c.CurrentPriority, c.NewPriority, domain.TierName(c.HierarchyTier), c.Reason)
		}
		sb.WriteString("\n")

		if report.OptimalDiagram != "" {
			sb.WriteString("### Optimal Topology Diagram\n\n")
			sb.WriteString(report.OptimalDiagram)
			sb.WriteString("\n\n")
		}

		sb.WriteString("## Configuration Diff\n```diff\n")
		for _, c := range report.Changes {
			fmt.Fprintf(&sb, "- %s: priority %d\n", c.DeviceName, c.CurrentPriority)
			fmt.Fprintf(&sb, "+ %s: priority %d\n", c.DeviceName, c.NewPriority)
		}
		sb.WriteString("```\n\n")
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## STP Priority Standards\n\n")
	sb.WriteString("| Tier | Priority Range | Description |\n")
	sb.WriteString("|------|----------------|-------------|\n")
	sb.WriteString("| Core | 4096 | Directly connected to gateway |\n")
	sb.WriteString("| Distribution | 8192-12288 | One hop from core |\n")
	sb.WriteString("| Access | 16384-61440 | Two+ hops from core |\n")
	sb.WriteString("| Default | 32768 | Vendor default (not recommended) |\n")

	return sb.String()
}

func checkmark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
