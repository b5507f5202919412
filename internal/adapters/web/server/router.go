package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/stpmap/internal/adapters/web/middleware"
)

// SetupRoutes builds the API router. Every /api route sits behind the API
// key check; the analyze endpoint additionally gets a rate limit because a
// run polls every device source.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	auth := middleware.APIKeyMiddleware(s.APIKeyHash)
	analyzeLimiter := middleware.NewRateLimiter(6, 1*time.Minute)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.Handle("/stp/analyze",
		middleware.RateLimitMiddleware(analyzeLimiter)(http.HandlerFunc(s.AnalyzeHandler.HandleAnalyze))).
		Methods(http.MethodPost)
	api.HandleFunc("/stp/topology", s.AnalyzeHandler.HandleTopology).Methods(http.MethodGet)

	api.HandleFunc("/reports", s.ReportHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.ReportHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}/export", s.ReportHandler.HandleExport).Methods(http.MethodGet)

	r.Handle("/ws", auth(http.HandlerFunc(s.WSManager.HandleWebSocket)))
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r
}
