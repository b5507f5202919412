package domain

import (
	"fmt"
	"strings"
	"time"
)

// STPPortState is the spanning-tree state of a single port, per IEEE
// 802.1D/802.1w. RSTP collapsed the classic five states into three, but
// switch firmware across generations reports either vocabulary, so all six
// values are kept without normalization.
type STPPortState string

const (
	PortStateForwarding STPPortState = "forwarding"
	PortStateBlocking   STPPortState = "blocking"   // classic STP
	PortStateDiscarding STPPortState = "discarding" // RSTP equivalent of blocking
	PortStateLearning   STPPortState = "learning"
	PortStateListening  STPPortState = "listening"
	PortStateDisabled   STPPortState = "disabled"
)

// Blocked reports whether the state means traffic is blocked on the port.
func (s STPPortState) Blocked() bool {
	return s == PortStateBlocking || s == PortStateDiscarding
}

// Active reports whether the port participates in the active topology
// (forwarding traffic or about to).
func (s STPPortState) Active() bool {
	return s == PortStateForwarding || s == PortStateLearning
}

// STPRole is the spanning-tree role of a port per IEEE 802.1w. Root ports
// point toward the root bridge, designated ports away from it; alternate and
// backup are blocked redundant paths.
type STPRole string

const (
	RoleRoot       STPRole = "root"
	RoleDesignated STPRole = "designated"
	RoleAlternate  STPRole = "alternate"
	RoleBackup     STPRole = "backup"
	RoleDisabled   STPRole = "disabled"
)

// ParseSTPPortState maps a firmware-reported state string to an STPPortState.
// Unknown values default to forwarding, matching controller behavior for
// ports that predate RSTP reporting.
func ParseSTPPortState(s string) STPPortState {
	switch STPPortState(strings.ToLower(strings.TrimSpace(s))) {
	case PortStateForwarding, PortStateBlocking, PortStateDiscarding,
		PortStateLearning, PortStateListening, PortStateDisabled:
		return STPPortState(strings.ToLower(strings.TrimSpace(s)))
	default:
		return PortStateForwarding
	}
}

// ParseSTPRole maps a firmware-reported role string to an STPRole.
// Unknown values default to designated.
func ParseSTPRole(s string) STPRole {
	switch STPRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleRoot, RoleDesignated, RoleAlternate, RoleBackup, RoleDisabled:
		return STPRole(strings.ToLower(strings.TrimSpace(s)))
	default:
		return RoleDesignated
	}
}

// STPPortConfig is the spanning-tree configuration and state of one port.
type STPPortConfig struct {
	PortIdx           int          `json:"port_idx"`
	PortName          string       `json:"port_name,omitempty"`
	State             STPPortState `json:"stp_state"`
	Role              STPRole      `json:"stp_role"`
	PathCost          int          `json:"path_cost"`
	ConnectedDevice   string       `json:"connected_device,omitempty"`
	ConnectedDeviceID string       `json:"connected_device_id,omitempty"`
	IsUplink          bool         `json:"is_uplink"`
}

// Validate rejects impossible port values at construction time.
func (p STPPortConfig) Validate() error {
	if p.PortIdx < 0 {
		return fmt.Errorf("port_idx %d: %w", p.PortIdx, ErrNegativePortIdx)
	}
	if p.PathCost < 0 {
		return fmt.Errorf("port %d path_cost %d: %w", p.PortIdx, p.PathCost, ErrNegativePathCost)
	}
	return nil
}

// SwitchSTPConfig is the spanning-tree view of one managed switch.
type SwitchSTPConfig struct {
	DeviceID           string          `json:"device_id"`
	Name               string          `json:"name"`
	MAC                string          `json:"mac"`
	Model              string          `json:"model,omitempty"`
	CurrentPriority    int             `json:"current_priority"`
	OptimalPriority    *int            `json:"optimal_priority,omitempty"`
	HierarchyTier      int             `json:"hierarchy_tier"` // 0=core, 1=distribution, 2=access
	IsRootBridge       bool            `json:"is_root_bridge"`
	RootPortIdx        *int            `json:"root_port_idx,omitempty"`
	PortStates         []STPPortConfig `json:"port_states"`
	UplinkPorts        []int           `json:"uplink_ports,omitempty"`
	ConnectedToGateway bool            `json:"connected_to_gateway"`
}

// Validate checks the root-bridge/root-port invariant: the root bridge has
// no root port, every other switch's root port must exist in PortStates.
func (s SwitchSTPConfig) Validate() error {
	if s.DeviceID == "" {
		return ErrMissingDeviceID
	}
	if !IsValidPriority(s.CurrentPriority) {
		return fmt.Errorf("switch %s priority %d: %w", s.DeviceID, s.CurrentPriority, ErrInvalidPriority)
	}
	if s.IsRootBridge && s.RootPortIdx != nil {
		return fmt.Errorf("switch %s: %w", s.DeviceID, ErrRootBridgeHasRootPort)
	}
	if !s.IsRootBridge && s.RootPortIdx != nil && s.Port(*s.RootPortIdx) == nil {
		return fmt.Errorf("switch %s root_port_idx %d: %w", s.DeviceID, *s.RootPortIdx, ErrUnknownRootPort)
	}
	return nil
}

// Port returns the port with the given index, or nil if absent.
func (s *SwitchSTPConfig) Port(idx int) *STPPortConfig {
	for i := range s.PortStates {
		if s.PortStates[i].PortIdx == idx {
			return &s.PortStates[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the switch configuration.
func (s SwitchSTPConfig) Clone() SwitchSTPConfig {
	out := s
	out.PortStates = append([]STPPortConfig(nil), s.PortStates...)
	out.UplinkPorts = append([]int(nil), s.UplinkPorts...)
	if s.OptimalPriority != nil {
		v := *s.OptimalPriority
		out.OptimalPriority = &v
	}
	if s.RootPortIdx != nil {
		v := *s.RootPortIdx
		out.RootPortIdx = &v
	}
	return out
}

// STPConnection is a directed inter-switch edge discovered from a neighbor
// hint on the source port. Edges are not assumed bidirectional: when only
// one side reports a neighbor, only that side's edge exists.
type STPConnection struct {
	FromDeviceID   string       `json:"from_device_id"`
	FromDeviceName string       `json:"from_device_name"`
	FromPortIdx    int          `json:"from_port_idx"`
	ToDeviceID     string       `json:"to_device_id"`
	ToDeviceName   string       `json:"to_device_name"`
	ToPortIdx      *int         `json:"to_port_idx,omitempty"`
	State          STPPortState `json:"stp_state"`
	PathCost       int          `json:"path_cost"`
	IsBlocked      bool         `json:"is_blocked"`
}

// STPTopology is the reconstructed spanning-tree state of the whole network
// at a single point in time.
type STPTopology struct {
	Timestamp          time.Time         `json:"timestamp"`
	RootBridgeID       string            `json:"root_bridge_id,omitempty"`
	RootBridgeName     string            `json:"root_bridge_name,omitempty"`
	RootBridgePriority int               `json:"root_bridge_priority"`
	GatewayID          string            `json:"gateway_id,omitempty"`
	GatewayName        string            `json:"gateway_name,omitempty"`
	Switches           []SwitchSTPConfig `json:"switches"`
	Connections        []STPConnection   `json:"connections"`
	LoopsDetected      bool              `json:"loops_detected"`
	BlockedPortsCount  int               `json:"blocked_ports_count"`
}

// Switch returns the switch with the given device id, or nil if absent.
func (t *STPTopology) Switch(deviceID string) *SwitchSTPConfig {
	for i := range t.Switches {
		if t.Switches[i].DeviceID == deviceID {
			return &t.Switches[i]
		}
	}
	return nil
}

// RootBridge returns the currently elected root switch, or nil when no root
// is known.
func (t *STPTopology) RootBridge() *SwitchSTPConfig {
	if t.RootBridgeID == "" {
		return nil
	}
	return t.Switch(t.RootBridgeID)
}

// Clone returns a deep copy of the topology. The optimizer works on a copy
// so a caller-held snapshot is never mutated.
func (t STPTopology) Clone() STPTopology {
	out := t
	out.Switches = make([]SwitchSTPConfig, len(t.Switches))
	for i := range t.Switches {
		out.Switches[i] = t.Switches[i].Clone()
	}
	out.Connections = append([]STPConnection(nil), t.Connections...)
	return out
}
