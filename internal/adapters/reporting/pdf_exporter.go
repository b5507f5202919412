package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// PDFExporter exports optimization reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportReport generates a PDF from an optimization report
func (e *PDFExporter) ExportReport(report *domain.STPOptimizationReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addSummary(pdf, report)
	e.addTopologyTable(pdf, report)
	e.addChanges(pdf, report)
	e.addFindings(pdf, "Issues", report.Issues)
	e.addFindings(pdf, "Recommendations", report.Recommendations)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report title and generation metadata
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.STPOptimizationReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "STP Optimization Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.Timestamp.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Report ID: %s", report.ID), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

// addSummary draws the summary box with the headline numbers
func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, report *domain.STPOptimizationReport) {
	r, g, b := 76, 175, 80 // green: nothing to do
	if report.ChangesRequired > 0 {
		r, g, b = 255, 152, 0 // orange: changes pending
	}
	if report.Topology.LoopsDetected {
		r, g, b = 244, 67, 54 // red: loop risk
	}

	pdf.SetFillColor(r, g, b)
	y := pdf.GetY()
	pdf.Rect(10, y, 190, 26, "F")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(14, y+4)
	pdf.CellFormat(0, 8, fmt.Sprintf("%d change(s) required across %d switch(es)",
		report.ChangesRequired, report.SwitchesAnalyzed), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(14, y+13)
	currentRoot := report.CurrentRoot
	if currentRoot == "" {
		currentRoot = "unknown"
	}
	optimalRoot := report.OptimalRoot
	if optimalRoot == "" {
		optimalRoot = "unknown"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Current root: %s (priority %d)   Optimal root: %s",
		currentRoot, report.CurrentRootPriority, optimalRoot), "", 1, "L", false, 0, "")

	pdf.SetY(y + 32)
	pdf.SetTextColor(0, 0, 0)
}

// addTopologyTable lists every switch with tier and priority
func (e *PDFExporter) addTopologyTable(pdf *gofpdf.Fpdf, report *domain.STPOptimizationReport) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Current Topology", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 7, "Switch", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Priority", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Tier", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Root", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Gateway Connected", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i := range report.Topology.Switches {
		sw := &report.Topology.Switches[i]
		pdf.CellFormat(60, 7, sw.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", sw.CurrentPriority), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, domain.TierName(sw.HierarchyTier), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, yesNo(sw.IsRootBridge), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 7, yesNo(sw.ConnectedToGateway), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}

// addChanges lists the recommended priority changes
func (e *PDFExporter) addChanges(pdf *gofpdf.Fpdf, report *domain.STPOptimizationReport) {
	if len(report.Changes) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Recommended Changes", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(55, 7, "Switch", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Current", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Optimal", "1", 0, "R", true, 0, "")
	pdf.CellFormat(85, 7, "Reason", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, c := range report.Changes {
		pdf.CellFormat(55, 7, c.DeviceName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", c.CurrentPriority), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", c.NewPriority), "1", 0, "R", false, 0, "")
		pdf.CellFormat(85, 7, c.Reason, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// addFindings writes a bulleted section of issues or recommendations
func (e *PDFExporter) addFindings(pdf *gofpdf.Fpdf, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, item := range items {
		pdf.MultiCell(0, 5, "- "+item, "", "L", false)
	}
	pdf.Ln(4)
}

// addFooter adds the bottom disclaimer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.STPOptimizationReport) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 5, "Advisory report. Applying priority changes causes STP reconvergence; schedule a maintenance window.", "", 1, "C", false, 0, "")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
