package storage

import (
	"encoding/json"
	"fmt"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// toModel converts a domain report to database models.
func toModel(report *domain.STPOptimizationReport) (ReportModel, error) {
	topoJSON, err := json.Marshal(report.Topology)
	if err != nil {
		return ReportModel{}, fmt.Errorf("encoding topology: %w", err)
	}
	issuesJSON, err := json.Marshal(report.Issues)
	if err != nil {
		return ReportModel{}, fmt.Errorf("encoding issues: %w", err)
	}
	recsJSON, err := json.Marshal(report.Recommendations)
	if err != nil {
		return ReportModel{}, fmt.Errorf("encoding recommendations: %w", err)
	}

	changes := make([]ChangeModel, len(report.Changes))
	for i, c := range report.Changes {
		changes[i] = ChangeModel{
			ReportID:        report.ID,
			DeviceID:        c.DeviceID,
			DeviceName:      c.DeviceName,
			CurrentPriority: c.CurrentPriority,
			NewPriority:     c.NewPriority,
			HierarchyTier:   c.HierarchyTier,
			Reason:          c.Reason,
		}
	}

	return ReportModel{
		ID:                  report.ID,
		Timestamp:           report.Timestamp,
		SwitchesAnalyzed:    report.SwitchesAnalyzed,
		CurrentRoot:         report.CurrentRoot,
		CurrentRootPriority: report.CurrentRootPriority,
		OptimalRoot:         report.OptimalRoot,
		OptimalRootReason:   report.OptimalRootReason,
		ChangesRequired:     report.ChangesRequired,
		LoopsDetected:       report.Topology.LoopsDetected,
		BlockedPortsCount:   report.Topology.BlockedPortsCount,
		TopologyJSON:        string(topoJSON),
		IssuesJSON:          string(issuesJSON),
		RecommendationsJSON: string(recsJSON),
		CurrentDiagram:      report.CurrentDiagram,
		OptimalDiagram:      report.OptimalDiagram,
		Changes:             changes,
	}, nil
}

// toDomain converts a database model back to a domain report.
func toDomain(m ReportModel) (*domain.STPOptimizationReport, error) {
	report := &domain.STPOptimizationReport{
		ID:                  m.ID,
		Timestamp:           m.Timestamp,
		SwitchesAnalyzed:    m.SwitchesAnalyzed,
		CurrentRoot:         m.CurrentRoot,
		CurrentRootPriority: m.CurrentRootPriority,
		OptimalRoot:         m.OptimalRoot,
		OptimalRootReason:   m.OptimalRootReason,
		ChangesRequired:     m.ChangesRequired,
		CurrentDiagram:      m.CurrentDiagram,
		OptimalDiagram:      m.OptimalDiagram,
	}

	if m.TopologyJSON != "" {
		if err := json.Unmarshal([]byte(m.TopologyJSON), &report.Topology); err != nil {
			return nil, fmt.Errorf("decoding topology: %w", err)
		}
	}
	if m.IssuesJSON != "" {
		if err := json.Unmarshal([]byte(m.IssuesJSON), &report.Issues); err != nil {
			return nil, fmt.Errorf("decoding issues: %w", err)
		}
	}
	if m.RecommendationsJSON != "" {
		if err := json.Unmarshal([]byte(m.RecommendationsJSON), &report.Recommendations); err != nil {
			return nil, fmt.Errorf("decoding recommendations: %w", err)
		}
	}

	report.Changes = make([]domain.STPChange, len(m.Changes))
	for i, c := range m.Changes {
		report.Changes[i] = domain.STPChange{
			DeviceID:        c.DeviceID,
			DeviceName:      c.DeviceName,
			CurrentPriority: c.CurrentPriority,
			NewPriority:     c.NewPriority,
			HierarchyTier:   c.HierarchyTier,
			Reason:          c.Reason,
		}
	}

	return report, nil
}
