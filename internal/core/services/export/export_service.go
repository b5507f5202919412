package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// ExportReportJSON writes the full optimization report as indented JSON
func ExportReportJSON(w io.Writer, report *domain.STPOptimizationReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// ExportChangesJSON writes the change plan as a JSON array
func ExportChangesJSON(w io.Writer, changes []domain.STPChange) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(changes)
}

// ExportChangesCSV writes the change plan as CSV with headers, ready for the
// external apply tooling
func ExportChangesCSV(w io.Writer, changes []domain.STPChange) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{
		"DeviceID", "DeviceName", "CurrentPriority", "NewPriority", "Tier", "Reason",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, c := range changes {
		row := []string{
			c.DeviceID,
			c.DeviceName,
			fmt.Sprintf("%d", c.CurrentPriority),
			fmt.Sprintf("%d", c.NewPriority),
			domain.TierName(c.HierarchyTier),
			c.Reason,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
