// Package controller collects topology snapshots from a UniFi network
// controller over its REST API. Only read endpoints are used; the adapter
// never pushes configuration back.
package controller

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// Client implements ports.DeviceSource against a controller instance.
type Client struct {
	baseURL string
	site    string
	apiKey  string
	http    *http.Client
}

// Config holds the controller connection settings.
type Config struct {
	// BaseURL is the controller address, e.g. https://192.168.1.1
	BaseURL string
	// Site is the controller site name; "default" if empty.
	Site string
	// APIKey is sent as the X-API-KEY header.
	APIKey string
	// InsecureTLS skips certificate verification. Self-hosted controllers
	// almost always run with a self-signed certificate.
	InsecureTLS bool
	// Timeout bounds each HTTP request. 15s if zero.
	Timeout time.Duration
}

// NewClient creates a controller API client.
func NewClient(cfg Config) *Client {
	site := cfg.Site
	if site == "" {
		site = "default"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	transport := &http.Transport{}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL: cfg.BaseURL,
		site:    site,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

// deviceRecord mirrors the subset of the controller's device document the
// snapshot needs. Unknown fields are ignored.
type deviceRecord struct {
	ID          string          `json:"_id"`
	MAC         string          `json:"mac"`
	Name        string          `json:"name"`
	Model       string          `json:"model"`
	Type        string          `json:"type"`
	StpPriority json.RawMessage `json:"stp_priority"`
	PortTable   []portEntry     `json:"port_table"`
	LldpTable   []lldpEntry     `json:"lldp_table"`
}

type portEntry struct {
	PortIdx     int    `json:"port_idx"`
	Name        string `json:"name"`
	StpState    string `json:"stp_state"`
	StpRole     string `json:"stp_role"`
	StpPathcost int    `json:"stp_pathcost"`
}

type lldpEntry struct {
	LocalPortIdx *int   `json:"local_port_idx"`
	ChassisID    string `json:"chassis_id"`
	PortID       string `json:"port_id"`
	RemoteName   string `json:"lldp_sys_name"`
}

type deviceListResponse struct {
	Data []deviceRecord `json:"data"`
}

// Snapshot fetches the device list and converts it to a topology snapshot.
func (c *Client) Snapshot(ctx context.Context) (domain.TopologySnapshot, error) {
	devices, err := c.listDevices(ctx)
	if err != nil {
		return domain.TopologySnapshot{}, err
	}
	return buildSnapshot(devices), nil
}

func (c *Client) listDevices(ctx context.Context) ([]deviceRecord, error) {
	url := fmt.Sprintf("%s/proxy/network/api/s/%s/stat/device", c.baseURL, c.site)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying controller: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("controller returned %s: %s", resp.Status, body)
	}

	var list deviceListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding device list: %w", err)
	}
	return list.Data, nil
}

// buildSnapshot maps controller device documents to raw switch records.
// The gateway is identified by device type; LLDP chassis IDs are resolved
// to device IDs through the MAC table.
func buildSnapshot(devices []deviceRecord) domain.TopologySnapshot {
	var snapshot domain.TopologySnapshot

	byMAC := make(map[string]deviceRecord, len(devices))
	for _, d := range devices {
		if d.MAC != "" {
			byMAC[domain.NormalizeMAC(d.MAC)] = d
		}
	}

	for _, d := range devices {
		if isGatewayType(d.Type) {
			snapshot.GatewayID = d.ID
			snapshot.GatewayName = d.Name
			if snapshot.GatewayName == "" {
				snapshot.GatewayName = "Gateway"
			}
			break
		}
	}

	for _, d := range devices {
		if d.Type != "usw" {
			continue
		}

		lldpByPort := make(map[int]lldpEntry)
		for _, entry := range d.LldpTable {
			if entry.LocalPortIdx != nil {
				lldpByPort[*entry.LocalPortIdx] = entry
			}
		}

		record := domain.RawSwitchRecord{
			DeviceID: d.ID,
			Name:     d.Name,
			MAC:      d.MAC,
			Model:    d.Model,
			Priority: parsePriority(d.StpPriority),
		}

		for _, p := range d.PortTable {
			port := domain.RawPort{
				PortIdx:  p.PortIdx,
				Name:     p.Name,
				State:    domain.ParseSTPPortState(p.StpState),
				Role:     domain.ParseSTPRole(p.StpRole),
				PathCost: p.StpPathcost,
			}

			if entry, ok := lldpByPort[p.PortIdx]; ok && entry.ChassisID != "" {
				if peer, ok := byMAC[domain.NormalizeMAC(entry.ChassisID)]; ok {
					port.Neighbor = &domain.LLDPNeighbor{
						DeviceID:   peer.ID,
						DeviceName: peer.Name,
					}
					port.IsUplink = peer.ID == snapshot.GatewayID
				}
			}

			record.Ports = append(record.Ports, port)
		}

		snapshot.Switches = append(snapshot.Switches, record)
	}

	return snapshot
}

// parsePriority tolerates the controller sending stp_priority as either a
// JSON number or a quoted string. Anything unparseable falls back to the
// vendor default.
func parsePriority(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return domain.PriorityDefault
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
			return n
		}
	}
	return domain.PriorityDefault
}

func isGatewayType(t string) bool {
	switch t {
	case "ugw", "usg", "udm", "udmpro", "uxg", "gateway":
		return true
	}
	return false
}
