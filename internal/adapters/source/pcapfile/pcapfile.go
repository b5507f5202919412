// Package pcapfile builds topology snapshots from packet captures. It reads
// LLDP advertisements for the device inventory and STP BPDUs for bridge
// priorities, which makes captured traffic from a mirror port usable for
// offline analysis when neither controller nor SNMP access exists.
//
// A capture only shows what each bridge announces about itself, so the
// resulting snapshot has no adjacency edges; the topology builder reports
// the switches as disconnected from the root, which is the honest reading
// of the available evidence.
package pcapfile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// Source implements ports.DeviceSource backed by a pcap file.
type Source struct {
	path        string
	gatewayMAC  string
	gatewayName string
}

// New creates a pcap file source. gatewayMAC may be empty when the capture
// does not include the gateway.
func New(path, gatewayMAC, gatewayName string) *Source {
	if gatewayName == "" && gatewayMAC != "" {
		gatewayName = "Gateway"
	}
	return &Source{
		path:        path,
		gatewayMAC:  domain.NormalizeMAC(gatewayMAC),
		gatewayName: gatewayName,
	}
}

// observed accumulates per-bridge evidence across the capture.
type observed struct {
	mac      string // display form, colon separated
	sysName  string
	priority int
	ports    map[string]bool // LLDP port IDs announced by this bridge
}

// Snapshot replays the capture and assembles one record per observed bridge.
func (s *Source) Snapshot(ctx context.Context) (domain.TopologySnapshot, error) {
	handle, err := pcap.OpenOffline(s.path)
	if err != nil {
		return domain.TopologySnapshot{}, fmt.Errorf("opening capture %s: %w", s.path, err)
	}
	defer handle.Close()

	bridges := make(map[string]*observed)
	get := func(mac string) *observed {
		key := domain.NormalizeMAC(mac)
		if b, ok := bridges[key]; ok {
			return b
		}
		b := &observed{
			mac:      mac,
			priority: domain.PriorityDefault,
			ports:    make(map[string]bool),
		}
		bridges[key] = b
		return b
	}

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		if err := ctx.Err(); err != nil {
			return domain.TopologySnapshot{}, err
		}

		if lldpLayer := packet.Layer(layers.LayerTypeLinkLayerDiscovery); lldpLayer != nil {
			lldp := lldpLayer.(*layers.LinkLayerDiscovery)
			if lldp.ChassisID.Subtype != layers.LLDPChassisIDSubTypeMACAddr {
				continue
			}
			b := get(formatMAC(lldp.ChassisID.ID))
			if len(lldp.PortID.ID) > 0 {
				b.ports[string(lldp.PortID.ID)] = true
			}
			if infoLayer := packet.Layer(layers.LayerTypeLinkLayerDiscoveryInfo); infoLayer != nil {
				info := infoLayer.(*layers.LinkLayerDiscoveryInfo)
				if info.SysName != "" {
					b.sysName = info.SysName
				}
			}
			continue
		}

		if stpLayer := packet.Layer(layers.LayerTypeSTP); stpLayer != nil {
			stp := stpLayer.(*layers.STP)
			if len(stp.BridgeID.HwAddr) == 0 {
				continue
			}
			b := get(stp.BridgeID.HwAddr.String())
			b.priority = int(stp.BridgeID.Priority)
		}
	}

	return s.assemble(bridges), nil
}

func (s *Source) assemble(bridges map[string]*observed) domain.TopologySnapshot {
	snapshot := domain.TopologySnapshot{
		GatewayID:   s.gatewayMAC,
		GatewayName: s.gatewayName,
	}

	keys := make([]string, 0, len(bridges))
	for k := range bridges {
		if k == s.gatewayMAC {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b := bridges[key]

		name := b.sysName
		if name == "" {
			name = b.mac
		}
		record := domain.RawSwitchRecord{
			DeviceID: key,
			Name:     name,
			MAC:      b.mac,
			Priority: b.priority,
		}

		portIDs := make([]string, 0, len(b.ports))
		for p := range b.ports {
			portIDs = append(portIDs, p)
		}
		sort.Strings(portIDs)
		for i, p := range portIDs {
			record.Ports = append(record.Ports, domain.RawPort{
				PortIdx: i + 1,
				Name:    p,
				State:   domain.PortStateForwarding,
				Role:    domain.RoleDesignated,
			})
		}

		snapshot.Switches = append(snapshot.Switches, record)
	}

	return snapshot
}

func formatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = fmt.Sprintf("%02x", octet)
	}
	return strings.Join(parts, ":")
}
