package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Source selects the topology input: controller, snmp, file or pcap.
	Source string

	// Controller source.
	ControllerURL      string
	ControllerSite     string
	ControllerAPIKey   string
	ControllerInsecure bool

	// SNMP source.
	SNMPTargets   []string
	SNMPCommunity string

	// File and pcap sources.
	SnapshotPath string
	PcapPath     string

	// Gateway identity for sources that cannot discover it themselves.
	GatewayMAC  string
	GatewayName string

	Addr       string
	APIKeyHash string
	DBPath     string
	Debug      bool
}

// Load populates Config from a .env file (if present), environment
// variables and command line flags. Flags take precedence over environment.
func Load() *Config {
	// Optional; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Source = getEnv("STPMAP_SOURCE", "controller")
	cfg.ControllerURL = getEnv("STPMAP_CONTROLLER_URL", "")
	cfg.ControllerSite = getEnv("STPMAP_CONTROLLER_SITE", "default")
	cfg.ControllerAPIKey = getEnv("STPMAP_CONTROLLER_API_KEY", "")
	cfg.ControllerInsecure = getEnvBool("STPMAP_CONTROLLER_INSECURE", false)
	snmpTargets := getEnv("STPMAP_SNMP_TARGETS", "")
	cfg.SNMPCommunity = getEnv("STPMAP_SNMP_COMMUNITY", "public")
	cfg.SnapshotPath = getEnv("STPMAP_SNAPSHOT", "")
	cfg.PcapPath = getEnv("STPMAP_PCAP", "")
	cfg.GatewayMAC = getEnv("STPMAP_GATEWAY_MAC", "")
	cfg.GatewayName = getEnv("STPMAP_GATEWAY_NAME", "")
	cfg.Addr = getEnv("STPMAP_ADDR", ":8080")
	cfg.APIKeyHash = getEnv("STPMAP_API_KEY_HASH", "")
	cfg.DBPath = getEnv("STPMAP_DB", getDefaultDBPath())

	flag.StringVar(&cfg.Source, "source", cfg.Source, "Topology source: controller, snmp, file or pcap")
	flag.StringVar(&cfg.ControllerURL, "controller", cfg.ControllerURL, "Controller base URL, e.g. https://192.168.1.1")
	flag.StringVar(&cfg.ControllerSite, "site", cfg.ControllerSite, "Controller site name")
	flag.StringVar(&cfg.ControllerAPIKey, "api-key", cfg.ControllerAPIKey, "Controller API key")
	flag.BoolVar(&cfg.ControllerInsecure, "insecure", cfg.ControllerInsecure, "Skip controller TLS certificate verification")
	flag.StringVar(&snmpTargets, "snmp-targets", snmpTargets, "SNMP switch addresses (comma separated)")
	flag.StringVar(&cfg.SNMPCommunity, "community", cfg.SNMPCommunity, "SNMPv2c community string")
	flag.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "Path to a JSON/YAML topology snapshot (source=file)")
	flag.StringVar(&cfg.PcapPath, "pcap", cfg.PcapPath, "Path to a packet capture (source=pcap)")
	flag.StringVar(&cfg.GatewayMAC, "gateway-mac", cfg.GatewayMAC, "Gateway MAC for snmp/pcap sources")
	flag.StringVar(&cfg.GatewayName, "gateway-name", cfg.GatewayName, "Gateway display name")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.APIKeyHash, "api-key-hash", cfg.APIKeyHash, "bcrypt hash guarding the API (empty disables auth)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite report database")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	cfg.SNMPTargets = splitList(snmpTargets)

	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in the user's home
// directory, creating ~/.stpmap if needed.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "stpmap.db"
	}

	dir := filepath.Join(home, ".stpmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .stpmap directory, using current dir: %v", err)
		return "stpmap.db"
	}

	return filepath.Join(dir, "stpmap.db")
}
