// Package app wires configuration, the device source, storage and the web
// server into a runnable application. It is the composition root; nothing
// below it knows about config.
package app

import (
	"fmt"
	"log/slog"

	"github.com/lcalzada-xor/stpmap/internal/adapters/diagram"
	"github.com/lcalzada-xor/stpmap/internal/adapters/source/controller"
	"github.com/lcalzada-xor/stpmap/internal/adapters/source/pcapfile"
	"github.com/lcalzada-xor/stpmap/internal/adapters/source/snapshotfile"
	"github.com/lcalzada-xor/stpmap/internal/adapters/source/snmp"
	"github.com/lcalzada-xor/stpmap/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/stpmap/internal/adapters/web/server"
	"github.com/lcalzada-xor/stpmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/stpmap/internal/config"
	"github.com/lcalzada-xor/stpmap/internal/core/ports"
	"github.com/lcalzada-xor/stpmap/internal/core/services/analysis"
	"github.com/lcalzada-xor/stpmap/internal/telemetry"
)

// Application holds the composed components.
type Application struct {
	Config    *config.Config
	Service   *analysis.Service
	Store     ports.ReportStore
	WebServer *webserver.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*Application, error) {
	telemetry.InitMetrics()

	source, err := buildSource(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteAdapter(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening report store %s: %w", cfg.DBPath, err)
	}

	wsManager := websocket.NewManager()
	renderer := diagram.NewMermaidRenderer()
	service := analysis.NewService(source, renderer, store, wsManager, cfg.Source)

	server := webserver.NewServer(cfg.Addr, cfg.APIKeyHash, service, store, wsManager)

	slog.Info("Application initialized",
		"source", cfg.Source,
		"db", cfg.DBPath,
		"addr", cfg.Addr)

	return &Application{
		Config:    cfg,
		Service:   service,
		Store:     store,
		WebServer: server,
	}, nil
}

// buildSource selects the device source from configuration.
func buildSource(cfg *config.Config) (ports.DeviceSource, error) {
	switch cfg.Source {
	case "controller":
		if cfg.ControllerURL == "" {
			return nil, fmt.Errorf("source controller requires -controller")
		}
		return controller.NewClient(controller.Config{
			BaseURL:     cfg.ControllerURL,
			Site:        cfg.ControllerSite,
			APIKey:      cfg.ControllerAPIKey,
			InsecureTLS: cfg.ControllerInsecure,
		}), nil

	case "snmp":
		if len(cfg.SNMPTargets) == 0 {
			return nil, fmt.Errorf("source snmp requires -snmp-targets")
		}
		targets := make([]snmp.Target, len(cfg.SNMPTargets))
		for i, addr := range cfg.SNMPTargets {
			targets[i] = snmp.Target{Address: addr, Community: cfg.SNMPCommunity}
		}
		return snmp.New(targets, cfg.GatewayMAC, cfg.GatewayName), nil

	case "file":
		if cfg.SnapshotPath == "" {
			return nil, fmt.Errorf("source file requires -snapshot")
		}
		return snapshotfile.New(cfg.SnapshotPath), nil

	case "pcap":
		if cfg.PcapPath == "" {
			return nil, fmt.Errorf("source pcap requires -pcap")
		}
		return pcapfile.New(cfg.PcapPath, cfg.GatewayMAC, cfg.GatewayName), nil

	default:
		return nil, fmt.Errorf("unknown source %q (want controller, snmp, file or pcap)", cfg.Source)
	}
}

// Close releases held resources.
func (a *Application) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			slog.Warn("Failed to close report store", "err", err)
		}
	}
}
