package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/stpmap/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/stpmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/stpmap/internal/core/ports"
	"github.com/lcalzada-xor/stpmap/internal/core/services/analysis"
)

// Server exposes the analysis engine over HTTP and WebSocket.
type Server struct {
	Addr       string
	APIKeyHash string

	WSManager      *websocket.Manager
	AnalyzeHandler *handlers.AnalyzeHandler
	ReportHandler  *handlers.ReportHandler

	srv *http.Server
}

// NewServer wires the HTTP layer. wsManager must be the same instance the
// analysis service publishes to.
func NewServer(addr, apiKeyHash string, service *analysis.Service, store ports.ReportStore, wsManager *websocket.Manager) *Server {
	return &Server{
		Addr:           addr,
		APIKeyHash:     apiKeyHash,
		WSManager:      wsManager,
		AnalyzeHandler: handlers.NewAnalyzeHandler(service),
		ReportHandler:  handlers.NewReportHandler(store),
	}
}

// Run starts the server and the WebSocket broadcaster; it blocks until the
// listener fails or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)
	instrumented := otelhttp.NewHandler(handler, "stpmap-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumented,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown error", "err", err)
		}
	}()

	slog.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
