package domain

import "time"

// Bridge priority tiering policy. Lower priority wins root election; the
// scheme keeps core strictly below distribution and distribution strictly
// below access. Priorities are multiples of 4096 by 802.1D convention.
const (
	PriorityCore         = 4096  // directly connected to gateway
	PriorityDistribution = 8192  // one hop from core
	PriorityAccessBase   = 16384 // two or more hops from core
	PriorityDefault      = 32768 // vendor default
	PriorityIncrement    = 4096
	PriorityMax          = 61440 // largest valid 4096-multiple below 65536
)

// STPChange is a single recommended priority change. Produced once per
// optimization run and never mutated afterwards.
type STPChange struct {
	DeviceID        string `json:"device_id"`
	DeviceName      string `json:"device_name"`
	CurrentPriority int    `json:"current_priority"`
	NewPriority     int    `json:"new_priority"`
	HierarchyTier   int    `json:"hierarchy_tier"`
	Reason          string `json:"reason"`
}

// STPOptimizationReport is the top-level output of one optimization run.
// Reports are immutable once generated; every run produces a fresh one.
type STPOptimizationReport struct {
	ID                  string      `json:"id"`
	Timestamp           time.Time   `json:"timestamp"`
	SwitchesAnalyzed    int         `json:"switches_analyzed"`
	CurrentRoot         string      `json:"current_root,omitempty"`
	CurrentRootPriority int         `json:"current_root_priority"`
	OptimalRoot         string      `json:"optimal_root,omitempty"`
	OptimalRootReason   string      `json:"optimal_root_reason,omitempty"`
	ChangesRequired     int         `json:"changes_required"`
	Changes             []STPChange `json:"changes"`
	Topology            STPTopology `json:"topology"`
	Issues              []string    `json:"issues"`
	Recommendations     []string    `json:"recommendations"`
	CurrentDiagram      string      `json:"current_diagram,omitempty"`
	OptimalDiagram      string      `json:"optimal_diagram,omitempty"`
}

// ReportSummary is the listing projection of a stored report.
type ReportSummary struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	SwitchesAnalyzed int       `json:"switches_analyzed"`
	CurrentRoot      string    `json:"current_root,omitempty"`
	OptimalRoot      string    `json:"optimal_root,omitempty"`
	ChangesRequired  int       `json:"changes_required"`
	LoopsDetected    bool      `json:"loops_detected"`
}

// TierName returns the conventional name for a hierarchy tier.
func TierName(tier int) string {
	switch tier {
	case 0:
		return "Core"
	case 1:
		return "Distribution"
	default:
		return "Access"
	}
}
