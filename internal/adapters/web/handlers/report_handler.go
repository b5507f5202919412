package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/lcalzada-xor/stpmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/stpmap/internal/core/domain"
	"github.com/lcalzada-xor/stpmap/internal/core/ports"
	"github.com/lcalzada-xor/stpmap/internal/core/services/export"
)

// ReportHandler serves stored optimization reports and their exports.
type ReportHandler struct {
	Store    ports.ReportStore
	Markdown *reporting.MarkdownExporter
	PDF      *reporting.PDFExporter
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ports.ReportStore) *ReportHandler {
	return &ReportHandler{
		Store:    store,
		Markdown: reporting.NewMarkdownExporter(),
		PDF:      reporting.NewPDFExporter(),
	}
}

// HandleList returns report summaries, newest first. ?limit=N caps the
// result, default 50.
func (h *ReportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries, err := h.Store.ListReports(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list reports", "err", err)
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGet returns one full report by ID.
func (h *ReportHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleExport streams a report in the requested format:
// markdown, pdf, csv (change plan only) or json (default).
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(report.ID, "md"))
		fmt.Fprint(w, h.Markdown.Export(report))

	case "pdf":
		data, err := h.PDF.ExportReport(report)
		if err != nil {
			slog.Error("PDF export failed", "id", report.ID, "err", err)
			http.Error(w, "PDF export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", attachment(report.ID, "pdf"))
		w.Write(data)

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", attachment(report.ID, "csv"))
		if err := export.ExportChangesCSV(w, report.Changes); err != nil {
			slog.Error("CSV export failed", "id", report.ID, "err", err)
		}

	case "json", "":
		w.Header().Set("Content-Type", "application/json")
		if err := export.ExportReportJSON(w, report); err != nil {
			slog.Error("JSON export failed", "id", report.ID, "err", err)
		}

	default:
		http.Error(w, "Unknown format: "+format, http.StatusBadRequest)
	}
}

func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (*domain.STPOptimizationReport, bool) {
	id := mux.Vars(r)["id"]
	rep, err := h.Store.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("Failed to load report", "id", id, "err", err)
		http.Error(w, "Failed to load report", http.StatusInternalServerError)
		return nil, false
	}
	return rep, true
}

func attachment(id, ext string) string {
	return fmt.Sprintf("attachment; filename=stp_report_%s.%s", id, ext)
}
