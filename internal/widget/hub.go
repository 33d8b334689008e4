// Package widget broadcasts analyzer events to overlay widgets over
// websockets. Every event the emitter produces is mirrored verbatim to
// each connected client.
package widget

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/metrics"
)

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Hub accepts widget connections and fans analyzer events out to them
type Hub struct {
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	logger *logrus.Logger
}

// NewHub creates a new widget hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			// overlay widgets load from arbitrary local origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

// Handler returns the mux serving the /ws endpoint
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

// Start serves the hub on addr in the background
func (h *Hub) Start(addr string) error {
	h.server = &http.Server{
		Addr:         addr,
		Handler:      h.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		h.logger.WithField("addr", addr).Info("Widget hub listening")
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.WithError(err).Error("Widget hub server error")
		}
	}()

	return nil
}

// Shutdown closes every client and stops the server
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	metrics.UpdateWidgetClients(0)

	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

// handleWS upgrades a widget connection and registers it
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Widget upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateWidgetClients(count)

	h.logger.WithFields(logrus.Fields{
		"remote":  conn.RemoteAddr().String(),
		"clients": count,
	}).Info("Widget client connected")

	// drain control frames; widgets never send data
	go h.readLoop(conn)
}

// readLoop consumes incoming frames until the client goes away
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop closes a connection and removes it from the client set
func (h *Hub) drop(conn *websocket.Conn) {
	_ = conn.Close()

	h.mu.Lock()
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateWidgetClients(count)
}

// Publish sends one event to every connected client. A client whose
// write fails is dropped. Implements the emitter sink contract.
func (h *Hub) Publish(event []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, event); err != nil {
			h.logger.WithError(err).Debug("Dropping widget client after failed write")
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.UpdateWidgetClients(len(h.clients))
}

// PingClients sends a keepalive ping and sweeps dead connections
func (h *Hub) PingClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.UpdateWidgetClients(len(h.clients))
}

// ClientCount returns the number of connected widgets
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
