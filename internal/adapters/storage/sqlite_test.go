package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

func newTestStore(t *testing.T) *SQLiteAdapter {
	t.Helper()
	store, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testReport(id string, ts time.Time) *domain.STPOptimizationReport {
	return &domain.STPOptimizationReport{
		ID:                  id,
		Timestamp:           ts,
		SwitchesAnalyzed:    2,
		CurrentRoot:         "Core A",
		CurrentRootPriority: 4096,
		OptimalRoot:         "Core A",
		OptimalRootReason:   "Core switch directly connected to gateway",
		ChangesRequired:     1,
		Changes: []domain.STPChange{{
			DeviceID: "sw-b", DeviceName: "Access B",
			CurrentPriority: 32768, NewPriority: 16384, HierarchyTier: 2,
			Reason: "Access-tier switch should have priority 16384",
		}},
		Topology: domain.STPTopology{
			RootBridgeID:       "sw-a",
			RootBridgeName:     "Core A",
			RootBridgePriority: 4096,
			BlockedPortsCount:  1,
			Switches: []domain.SwitchSTPConfig{
				{DeviceID: "sw-a", Name: "Core A", MAC: "aa:00:00:00:00:01", CurrentPriority: 4096, IsRootBridge: true, ConnectedToGateway: true},
				{DeviceID: "sw-b", Name: "Access B", MAC: "aa:00:00:00:00:02", CurrentPriority: 32768, HierarchyTier: 2},
			},
			Connections: []domain.STPConnection{
				{FromDeviceID: "sw-a", ToDeviceID: "sw-b", State: domain.PortStateForwarding},
			},
		},
		Issues:          []string{"Found 1 blocked port(s) - redundant paths are present"},
		Recommendations: []string{"Apply 1 priority change(s) to align the spanning tree with the network hierarchy"},
		CurrentDiagram:  "```mermaid\ngraph TB\n```",
		OptimalDiagram:  "```mermaid\ngraph TB\n```",
	}
}

func TestSaveAndGetReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testReport("report-1", time.Now().UTC().Truncate(time.Second))
	if err := store.SaveReport(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ID != want.ID || got.CurrentRoot != want.CurrentRoot || got.OptimalRootReason != want.OptimalRootReason {
		t.Errorf("report fields lost in round trip: %+v", got)
	}
	if len(got.Changes) != 1 || got.Changes[0].DeviceID != "sw-b" || got.Changes[0].NewPriority != 16384 {
		t.Errorf("changes lost in round trip: %+v", got.Changes)
	}
	if len(got.Topology.Switches) != 2 || got.Topology.RootBridgeID != "sw-a" {
		t.Errorf("topology lost in round trip: %+v", got.Topology)
	}
	if len(got.Topology.Connections) != 1 {
		t.Errorf("connections lost in round trip: %+v", got.Topology.Connections)
	}
	if len(got.Issues) != 1 || len(got.Recommendations) != 1 {
		t.Errorf("findings lost in round trip: %v / %v", got.Issues, got.Recommendations)
	}
	if got.CurrentDiagram == "" || got.OptimalDiagram == "" {
		t.Error("diagrams lost in round trip")
	}
}

func TestGetReportNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReport(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v; want gorm.ErrRecordNotFound", err)
	}
}

func TestListReportsNewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		r := testReport(fmt.Sprintf("report-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveReport(ctx, r); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	summaries, err := store.ListReports(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries = %d; want 3", len(summaries))
	}
	if summaries[0].ID != "report-4" || summaries[2].ID != "report-2" {
		t.Errorf("ordering wrong: %v", summaries)
	}
	if summaries[0].ChangesRequired != 1 || summaries[0].CurrentRoot != "Core A" {
		t.Errorf("summary fields lost: %+v", summaries[0])
	}

	all, err := store.ListReports(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("limit 0 should return everything, got %d", len(all))
	}
}

func TestSaveReportDuplicateIDFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := testReport("dup", time.Now())
	if err := store.SaveReport(ctx, r); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.SaveReport(ctx, r); err == nil {
		t.Error("second save with the same id should fail")
	}
}
