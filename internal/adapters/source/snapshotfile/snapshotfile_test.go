package snapshotfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

const jsonSnapshot = `{
  "gateway_id": "gw",
  "gateway_name": "Gateway",
  "switches": [
    {
      "device_id": "sw-a", "name": "Core A", "mac": "aa:00:00:00:00:01", "priority": 4096,
      "ports": [
        {"port_idx": 1, "state": "forwarding", "role": "designated", "is_uplink": true,
         "neighbor": {"device_id": "gw", "device_name": "Gateway"}}
      ]
    }
  ]
}`

const yamlSnapshot = `gateway_id: gw
gateway_name: Gateway
switches:
  - device_id: sw-a
    name: Core A
    mac: "aa:00:00:00:00:01"
    priority: 4096
    ports:
      - port_idx: 1
        state: forwarding
        role: designated
        is_uplink: true
        neighbor:
          device_id: gw
          device_name: Gateway
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func assertSnapshot(t *testing.T, snapshot domain.TopologySnapshot) {
	t.Helper()
	if snapshot.GatewayID != "gw" || snapshot.GatewayName != "Gateway" {
		t.Errorf("gateway = %q/%q", snapshot.GatewayID, snapshot.GatewayName)
	}
	if len(snapshot.Switches) != 1 {
		t.Fatalf("switches = %d; want 1", len(snapshot.Switches))
	}
	sw := snapshot.Switches[0]
	if sw.DeviceID != "sw-a" || sw.Priority != 4096 {
		t.Errorf("switch = %+v", sw)
	}
	if len(sw.Ports) != 1 {
		t.Fatalf("ports = %d; want 1", len(sw.Ports))
	}
	p := sw.Ports[0]
	if p.State != domain.PortStateForwarding || !p.IsUplink {
		t.Errorf("port = %+v", p)
	}
	if p.Neighbor == nil || p.Neighbor.DeviceID != "gw" {
		t.Errorf("neighbor = %+v", p.Neighbor)
	}
}

func TestSnapshotJSON(t *testing.T) {
	src := New(writeTemp(t, "topo.json", jsonSnapshot))
	snapshot, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	assertSnapshot(t, snapshot)
}

func TestSnapshotYAML(t *testing.T) {
	src := New(writeTemp(t, "topo.yaml", yamlSnapshot))
	snapshot, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	assertSnapshot(t, snapshot)
}

func TestSnapshotMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := src.Snapshot(context.Background()); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSnapshotMalformedJSON(t *testing.T) {
	src := New(writeTemp(t, "bad.json", "{not json"))
	if _, err := src.Snapshot(context.Background()); err == nil {
		t.Error("expected a decode error")
	}
}

func TestSnapshotCancelledContext(t *testing.T) {
	src := New(writeTemp(t, "topo.json", jsonSnapshot))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Snapshot(ctx); err == nil {
		t.Error("expected the cancelled context to surface")
	}
}
