// Package websocket pushes freshly generated optimization reports to
// connected dashboard clients.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin requests carry no Origin header.
		return r.Header.Get("Origin") == "" || r.Host == hostOf(r.Header.Get("Origin"))
	},
}

func hostOf(origin string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(origin) > len(prefix) && origin[:len(prefix)] == prefix {
			return origin[len(prefix):]
		}
	}
	return origin
}

// Message is the envelope for everything pushed over the socket.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Manager implements ports.ReportPublisher over WebSocket connections.
type Manager struct {
	clients   map[*websocket.Conn]bool
	mu        sync.Mutex
	broadcast chan Message
}

// NewManager creates a WebSocket manager.
func NewManager() *Manager {
	return &Manager{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 16),
	}
}

// Start launches the broadcast loop; it stops when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case msg := <-m.broadcast:
				m.send(msg)
			}
		}
	}()
}

// HandleWebSocket upgrades the connection and registers the client.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "err", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()
	slog.Info("WebSocket client connected", "remote", conn.RemoteAddr())

	// Drain reads to notice the disconnect.
	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			conn.Close()
			slog.Info("WebSocket client disconnected", "remote", conn.RemoteAddr())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishReport queues a report for broadcasting. Never blocks the analysis
// path: if the queue is full the report is dropped for push purposes, it is
// still persisted and queryable.
func (m *Manager) PublishReport(report *domain.STPOptimizationReport) {
	select {
	case m.broadcast <- Message{Type: "report", Payload: report}:
	default:
		slog.Warn("WebSocket broadcast queue full, dropping report push", "id", report.ID)
	}
}

func (m *Manager) send(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.Close()
		delete(m.clients, conn)
	}
}
