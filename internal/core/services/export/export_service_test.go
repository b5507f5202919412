package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

func sampleChanges() []domain.STPChange {
	return []domain.STPChange{
		{
			DeviceID: "sw-b", DeviceName: "Access B",
			CurrentPriority: 32768, NewPriority: 16384, HierarchyTier: 2,
			Reason: "Access-tier switch should have priority 16384",
		},
		{
			DeviceID: "sw-c", DeviceName: `Closet "C"`,
			CurrentPriority: 32768, NewPriority: 20480, HierarchyTier: 2,
			Reason: "Access-tier switch should have priority 20480",
		},
	}
}

func TestExportChangesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportChangesCSV(&buf, sampleChanges()); err != nil {
		t.Fatalf("csv export failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv output unparseable: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d; want header + 2", len(rows))
	}

	wantHeader := []string{"DeviceID", "DeviceName", "CurrentPriority", "NewPriority", "Tier", "Reason"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v; want %v", rows[0], wantHeader)
	}
	if rows[1][0] != "sw-b" || rows[1][3] != "16384" || rows[1][4] != "Access" {
		t.Errorf("first row = %v", rows[1])
	}
	// Quoted device name must survive CSV escaping.
	if rows[2][1] != `Closet "C"` {
		t.Errorf("second row name = %q", rows[2][1])
	}
}

func TestExportChangesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportChangesCSV(&buf, nil); err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil || len(rows) != 1 {
		t.Errorf("empty plan should still emit the header row, got %v (%v)", rows, err)
	}
}

func TestExportChangesJSONRoundTrip(t *testing.T) {
	changes := sampleChanges()

	var buf bytes.Buffer
	if err := ExportChangesJSON(&buf, changes); err != nil {
		t.Fatalf("json export failed: %v", err)
	}

	var decoded []domain.STPChange
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output unparseable: %v", err)
	}
	if !reflect.DeepEqual(decoded, changes) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", decoded, changes)
	}
}

func TestExportReportJSON(t *testing.T) {
	report := &domain.STPOptimizationReport{
		ID:               "r1",
		SwitchesAnalyzed: 1,
		Topology: domain.STPTopology{
			Switches: []domain.SwitchSTPConfig{{DeviceID: "sw-a", Name: "A", CurrentPriority: 4096}},
		},
	}

	var buf bytes.Buffer
	if err := ExportReportJSON(&buf, report); err != nil {
		t.Fatalf("report export failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"id": "r1"`) {
		t.Errorf("report JSON should be indented with the id field, got:\n%s", out)
	}

	var decoded domain.STPOptimizationReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report JSON unparseable: %v", err)
	}
	if decoded.ID != "r1" || decoded.SwitchesAnalyzed != 1 {
		t.Errorf("decoded report = %+v", decoded)
	}
}
