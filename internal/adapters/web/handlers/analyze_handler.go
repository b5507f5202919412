package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/stpmap/internal/core/services/analysis"
)

// AnalyzeHandler triggers optimization runs and serves the discovered
// topology.
type AnalyzeHandler struct {
	Service *analysis.Service
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(service *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{Service: service}
}

// HandleAnalyze runs a full optimization pass and returns the fresh report.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.Service.RunAnalysis(r.Context())
	if err != nil {
		slog.Error("Analysis run failed", "err", err)
		http.Error(w, "Analysis failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HandleTopology discovers and returns the current topology without running
// the optimizer.
func (h *AnalyzeHandler) HandleTopology(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	topo, issues, err := h.Service.DiscoverTopology(r.Context())
	if err != nil {
		slog.Error("Topology discovery failed", "err", err)
		http.Error(w, "Discovery failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topology": topo,
		"issues":   issues,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
