// Package snmp collects topology snapshots from switches directly over SNMP
// using BRIDGE-MIB for spanning tree state and LLDP-MIB for adjacency. It is
// the source of choice when no controller holds the full device inventory.
package snmp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// BRIDGE-MIB and LLDP-MIB objects read per target.
const (
	oidSysName             = ".1.3.6.1.2.1.1.5.0"
	oidBaseBridgeAddress   = ".1.3.6.1.2.1.17.1.1.0"
	oidStpPriority         = ".1.3.6.1.2.1.17.2.2.0"
	oidStpRootPort         = ".1.3.6.1.2.1.17.2.7.0"
	oidStpPortState        = ".1.3.6.1.2.1.17.2.15.1.3"
	oidStpPortPathCost     = ".1.3.6.1.2.1.17.2.15.1.5"
	oidIfName              = ".1.3.6.1.2.1.31.1.1.1.1"
	oidLldpRemChassisID    = ".1.0.8802.1.1.2.1.4.1.1.5"
	oidLldpRemSysName      = ".1.0.8802.1.1.2.1.4.1.1.9"
	oidLldpRemLocalPortNum = ".1.0.8802.1.1.2.1.4.1.1.2"
)

// Target is one switch to poll.
type Target struct {
	Address   string // host or host:port, port 161 if omitted
	Community string // SNMPv2c community, "public" if empty
}

// Source implements ports.DeviceSource by polling a fixed set of targets.
type Source struct {
	targets []Target

	// GatewayMAC identifies the upstream gateway; SNMP alone cannot tell
	// which LLDP neighbor routes north, so the operator supplies it.
	gatewayMAC  string
	gatewayName string

	timeout time.Duration
	retries int
}

// New creates an SNMP source for the given targets.
func New(targets []Target, gatewayMAC, gatewayName string) *Source {
	if gatewayName == "" {
		gatewayName = "Gateway"
	}
	return &Source{
		targets:     targets,
		gatewayMAC:  domain.NormalizeMAC(gatewayMAC),
		gatewayName: gatewayName,
		timeout:     3 * time.Second,
		retries:     1,
	}
}

// polled holds everything read from one target before cross-device
// neighbor resolution.
type polled struct {
	record    domain.RawSwitchRecord
	neighbors map[int]lldpNeighbor // port -> remote
}

type lldpNeighbor struct {
	chassisID string
	sysName   string
}

// Snapshot polls every target and assembles the raw records. Unreachable
// targets are skipped with a warning so one dead switch does not block the
// whole run.
func (s *Source) Snapshot(ctx context.Context) (domain.TopologySnapshot, error) {
	var results []polled
	for _, t := range s.targets {
		if err := ctx.Err(); err != nil {
			return domain.TopologySnapshot{}, err
		}
		p, err := s.poll(t)
		if err != nil {
			slog.Warn("SNMP target unreachable, skipping", "target", t.Address, "err", err)
			continue
		}
		results = append(results, p)
	}
	if len(results) == 0 {
		return domain.TopologySnapshot{}, fmt.Errorf("no SNMP target responded (%d configured)", len(s.targets))
	}
	return s.assemble(results), nil
}

func (s *Source) poll(t Target) (polled, error) {
	sn, err := s.openSession(t)
	if err != nil {
		return polled{}, err
	}
	defer sn.Conn.Close()

	sysName := getString(sn, oidSysName)
	bridgeMAC := getMAC(sn, oidBaseBridgeAddress)
	priority := getInt(sn, oidStpPriority, domain.PriorityDefault)
	rootPort := getInt(sn, oidStpRootPort, 0)

	ifNames := walkStringIndex(sn, oidIfName)
	portStates := walkIntIndex(sn, oidStpPortState)
	pathCosts := walkIntIndex(sn, oidStpPortPathCost)

	// The three rem columns share the table index, so positional pairing
	// holds as long as each walk sees the same rows.
	neighbors := make(map[int]lldpNeighbor)
	remChassis := walkMAC(sn, oidLldpRemChassisID)
	remNames := walkString(sn, oidLldpRemSysName)
	remPorts := walkInt(sn, oidLldpRemLocalPortNum)
	for i, localPort := range remPorts {
		n := lldpNeighbor{}
		if i < len(remChassis) {
			n.chassisID = domain.NormalizeMAC(remChassis[i])
		}
		if i < len(remNames) {
			n.sysName = remNames[i]
		}
		neighbors[localPort] = n
	}

	record := domain.RawSwitchRecord{
		DeviceID: domain.NormalizeMAC(bridgeMAC),
		Name:     sysName,
		MAC:      bridgeMAC,
		Priority: priority,
	}
	if record.DeviceID == "" {
		record.DeviceID = t.Address
	}
	if record.Name == "" {
		record.Name = record.DeviceID
	}

	record.Ports = buildPorts(portStates, pathCosts, ifNames, rootPort)

	return polled{record: record, neighbors: neighbors}, nil
}

// buildPorts assembles the port list in ascending port order so repeated
// polls of the same switch yield identical records.
func buildPorts(portStates, pathCosts map[int]int, ifNames map[int]string, rootPort int) []domain.RawPort {
	indices := make([]int, 0, len(portStates))
	for idx := range portStates {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	ports := make([]domain.RawPort, 0, len(indices))
	for _, idx := range indices {
		state := portStates[idx]
		ports = append(ports, domain.RawPort{
			PortIdx:  idx,
			Name:     ifNames[idx],
			State:    bridgePortState(state),
			Role:     bridgePortRole(idx, rootPort, state),
			PathCost: pathCosts[idx],
		})
	}
	return ports
}

// assemble resolves LLDP neighbors to device IDs across all polled targets
// and produces the final snapshot.
func (s *Source) assemble(results []polled) domain.TopologySnapshot {
	snapshot := domain.TopologySnapshot{
		GatewayID:   s.gatewayMAC,
		GatewayName: s.gatewayName,
	}

	byMAC := make(map[string]string, len(results))
	byName := make(map[string]string, len(results))
	for _, p := range results {
		byMAC[domain.NormalizeMAC(p.record.MAC)] = p.record.DeviceID
		byName[strings.ToLower(p.record.Name)] = p.record.DeviceID
	}

	for _, p := range results {
		record := p.record
		for i := range record.Ports {
			n, ok := p.neighbors[record.Ports[i].PortIdx]
			if !ok {
				continue
			}

			peerID := byMAC[n.chassisID]
			if peerID == "" {
				peerID = byName[strings.ToLower(n.sysName)]
			}
			if peerID == "" && n.chassisID == s.gatewayMAC {
				peerID = s.gatewayMAC
			}
			if peerID == "" {
				// Unknown neighbor (client, AP, unmanaged switch). The
				// topology builder reports it as an issue.
				peerID = n.chassisID
			}

			record.Ports[i].Neighbor = &domain.LLDPNeighbor{
				DeviceID:   peerID,
				DeviceName: n.sysName,
			}
			record.Ports[i].IsUplink = peerID == s.gatewayMAC
		}
		snapshot.Switches = append(snapshot.Switches, record)
	}

	return snapshot
}

func (s *Source) openSession(t Target) (*gosnmp.GoSNMP, error) {
	host, port := t.Address, uint16(161)
	if h, p, err := net.SplitHostPort(t.Address); err == nil {
		host = h
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err == nil {
			port = uint16(n)
		}
	}

	community := t.Community
	if community == "" {
		community = "public"
	}

	cfg := &gosnmp.GoSNMP{
		Target:         host,
		Port:           port,
		Version:        gosnmp.Version2c,
		Community:      community,
		Timeout:        s.timeout,
		Retries:        s.retries,
		MaxRepetitions: 20,
	}
	if err := cfg.Connect(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bridgePortState maps dot1dStpPortState integers to domain states.
func bridgePortState(v int) domain.STPPortState {
	switch v {
	case 1:
		return domain.PortStateDisabled
	case 2:
		return domain.PortStateBlocking
	case 3:
		return domain.PortStateListening
	case 4:
		return domain.PortStateLearning
	case 5:
		return domain.PortStateForwarding
	default:
		return domain.PortStateDisabled
	}
}

// bridgePortRole derives a role from dot1dStpRootPort and the port state.
// BRIDGE-MIB has no role column; blocked non-root ports are alternates.
func bridgePortRole(port, rootPort, state int) domain.STPRole {
	if port == rootPort {
		return domain.RoleRoot
	}
	if state == 2 {
		return domain.RoleAlternate
	}
	if state == 1 {
		return domain.RoleDisabled
	}
	return domain.RoleDesignated
}

func getString(sn *gosnmp.GoSNMP, oid string) string {
	p, err := sn.Get([]string{oid})
	if err != nil || len(p.Variables) == 0 {
		return ""
	}
	return valueToString(p.Variables[0].Value)
}

func getMAC(sn *gosnmp.GoSNMP, oid string) string {
	p, err := sn.Get([]string{oid})
	if err != nil || len(p.Variables) == 0 {
		return ""
	}
	if b, ok := p.Variables[0].Value.([]byte); ok {
		parts := make([]string, len(b))
		for i, octet := range b {
			parts[i] = fmt.Sprintf("%02x", octet)
		}
		return strings.Join(parts, ":")
	}
	return valueToString(p.Variables[0].Value)
}

func getInt(sn *gosnmp.GoSNMP, oid string, def int) int {
	p, err := sn.Get([]string{oid})
	if err != nil || len(p.Variables) == 0 {
		return def
	}
	if n := toInt(p.Variables[0].Value); n != 0 {
		return n
	}
	return def
}

func walkString(sn *gosnmp.GoSNMP, oid string) []string {
	var out []string
	_ = sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		out = append(out, valueToString(pdu.Value))
		return nil
	})
	return out
}

// walkMAC is walkString with OctetString MAC addresses rendered as hex.
// Chassis IDs of subtype macAddress arrive as raw 6-byte strings.
func walkMAC(sn *gosnmp.GoSNMP, oid string) []string {
	var out []string
	_ = sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		if b, ok := pdu.Value.([]byte); ok && len(b) == 6 {
			parts := make([]string, len(b))
			for i, octet := range b {
				parts[i] = fmt.Sprintf("%02x", octet)
			}
			out = append(out, strings.Join(parts, ":"))
			return nil
		}
		out = append(out, valueToString(pdu.Value))
		return nil
	})
	return out
}

func walkInt(sn *gosnmp.GoSNMP, oid string) []int {
	var out []int
	_ = sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		out = append(out, toInt(pdu.Value))
		return nil
	})
	return out
}

func walkStringIndex(sn *gosnmp.GoSNMP, oid string) map[int]string {
	out := map[int]string{}
	_ = sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		out[indexFromOid(pdu.Name)] = valueToString(pdu.Value)
		return nil
	})
	return out
}

func walkIntIndex(sn *gosnmp.GoSNMP, oid string) map[int]int {
	out := map[int]int{}
	_ = sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		out[indexFromOid(pdu.Name)] = toInt(pdu.Value)
		return nil
	})
	return out
}

// indexFromOid returns the last sub-identifier of an OID.
func indexFromOid(name string) int {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return 0
	}
	var n int
	fmt.Sscanf(name[i+1:], "%d", &n)
	return n
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	}
	return 0
}

func valueToString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
