package domain

import "fmt"

// TopologySnapshot is the contract with the input collaborator (controller
// client, SNMP collector, snapshot file). It carries everything the builder
// needs for one analysis run; the gateway is supplied, never inferred.
type TopologySnapshot struct {
	Switches    []RawSwitchRecord `json:"switches" yaml:"switches"`
	GatewayID   string            `json:"gateway_id,omitempty" yaml:"gateway_id"`
	GatewayName string            `json:"gateway_name,omitempty" yaml:"gateway_name"`
}

// RawSwitchRecord is the per-switch input as collected from a device source.
// DeviceID, Name, MAC and Priority are mandatory; missing port data degrades
// the analysis but is not an error.
type RawSwitchRecord struct {
	DeviceID string    `json:"device_id" yaml:"device_id"`
	Name     string    `json:"name" yaml:"name"`
	MAC      string    `json:"mac" yaml:"mac"`
	Model    string    `json:"model,omitempty" yaml:"model"`
	Priority int       `json:"priority" yaml:"priority"`
	Ports    []RawPort `json:"ports,omitempty" yaml:"ports"`
}

// Validate enforces the input-collaborator contract on a raw record.
func (r RawSwitchRecord) Validate() error {
	if r.DeviceID == "" {
		return ErrMissingDeviceID
	}
	if r.Name == "" {
		return fmt.Errorf("switch %s: %w", r.DeviceID, ErrMissingName)
	}
	if !IsValidMAC(r.MAC) {
		return fmt.Errorf("switch %s mac %q: %w", r.DeviceID, r.MAC, ErrInvalidMAC)
	}
	if !IsValidPriority(r.Priority) {
		return fmt.Errorf("switch %s priority %d: %w", r.DeviceID, r.Priority, ErrInvalidPriority)
	}
	for _, p := range r.Ports {
		if p.PortIdx < 0 {
			return fmt.Errorf("switch %s port_idx %d: %w", r.DeviceID, p.PortIdx, ErrNegativePortIdx)
		}
		if p.PathCost < 0 {
			return fmt.Errorf("switch %s port %d path_cost %d: %w", r.DeviceID, p.PortIdx, p.PathCost, ErrNegativePathCost)
		}
	}
	return nil
}

// RawPort is one port's state/role/cost/uplink tuple plus an optional
// neighbor-discovery hint.
type RawPort struct {
	PortIdx  int           `json:"port_idx" yaml:"port_idx"`
	Name     string        `json:"name,omitempty" yaml:"name"`
	State    STPPortState  `json:"state" yaml:"state"`
	Role     STPRole       `json:"role" yaml:"role"`
	PathCost int           `json:"path_cost" yaml:"path_cost"`
	IsUplink bool          `json:"is_uplink,omitempty" yaml:"is_uplink"`
	Neighbor *LLDPNeighbor `json:"neighbor,omitempty" yaml:"neighbor"`
}

// LLDPNeighbor is a best-effort neighbor hint from LLDP (or CDP). Only the
// reporting side's view; the remote port index is frequently unknown.
type LLDPNeighbor struct {
	DeviceID   string `json:"device_id" yaml:"device_id"`
	DeviceName string `json:"device_name,omitempty" yaml:"device_name"`
	PortIdx    *int   `json:"port_idx,omitempty" yaml:"port_idx"`
}
