// Package handlers provides HTTP request handlers for the ScanPro API.
// This file implements the WebSocket endpoint that streams scan job
// lifecycle events (submission, progress, completion) to clients.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/metrics"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer
	pongWait       = 60 * time.Second    // Time to read next pong message from peer
	pingPeriod     = (pongWait * 9) / 10 // Ping interval (must be < pongWait)
	maxMessageSize = 512                 // Maximum message size allowed from peer
	bufferSize     = 256                 // Size of the hub broadcast buffer
	clientBuffer   = 32                  // Size of each per-client send buffer
)

// WebSocketMessage represents a WebSocket message structure.
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// wsClient is one connected event stream subscriber. The send channel
// decouples the hub from slow peers; only writePump touches the
// connection for writes.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHandler handles WebSocket connections for real-time scan
// updates. A single hub goroutine owns the client set; handlers talk
// to it through the register, unregister, and broadcast channels.
type WebSocketHandler struct {
	logger   *slog.Logger
	metrics  metrics.MetricsRegistry
	upgrader websocket.Upgrader

	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	shutdown   chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
}

// NewWebSocketHandler creates a new WebSocket handler and starts its
// hub goroutine.
func NewWebSocketHandler(logger *slog.Logger, metricsRegistry metrics.MetricsRegistry) *WebSocketHandler {
	handler := &WebSocketHandler{
		logger:  logger.With("handler", "websocket"),
		metrics: metricsRegistry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin enforcement happens in the CORS layer.
				return true
			},
		},
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, bufferSize),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		shutdown:   make(chan struct{}),
	}

	go handler.run()

	return handler
}

// HandleScans handles GET /ws/scans - upgrade the connection and stream
// scan job events until the client disconnects.
func (h *WebSocketHandler) HandleScans(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	h.logger.Info("New WebSocket connection",
		"request_id", requestID,
		"remote_addr", r.RemoteAddr)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		h.logger.Error("Failed to upgrade WebSocket connection",
			"request_id", requestID,
			"error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- client:
	case <-h.shutdown:
		_ = conn.Close()
		return
	}

	go h.writePump(client, requestID)
	h.readPump(client, requestID)
}

// HandleJobEvent forwards a job lifecycle event to all connected
// clients. It matches the jobs manager event hook signature and never
// blocks; when the hub queue is full the event is dropped.
func (h *WebSocketHandler) HandleJobEvent(event jobs.JobEvent) {
	message := WebSocketMessage{
		Type:      string(event.Type),
		Timestamp: time.Now().UTC(),
		Data:      jobToResponse(event.Job),
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal job event", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Broadcast queue full, dropping event",
			"event_type", string(event.Type),
			"job_id", event.Job.ID)
		recordMetric(h.metrics, "websocket_events_dropped_total", nil)
	}
}

// BroadcastSystemMessage sends a system message to all connected
// clients.
func (h *WebSocketHandler) BroadcastSystemMessage(messageType, content string) error {
	message := WebSocketMessage{
		Type:      messageType,
		Timestamp: time.Now().UTC(),
		Data: map[string]string{
			"message": content,
		},
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal system message: %w", err)
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		h.logger.Warn("Broadcast queue full, dropping system message")
		return fmt.Errorf("broadcast queue full")
	}
}

// GetConnectedClients returns the number of connected clients.
func (h *WebSocketHandler) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close stops the hub and disconnects all clients.
func (h *WebSocketHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.shutdown)
	})
	return nil
}

// run manages client connections and broadcasts until Close.
func (h *WebSocketHandler) run() {
	for {
		select {
		case <-h.shutdown:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			h.logger.Debug("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.Debug("Client registered", "total_clients", total)
			if h.metrics != nil {
				h.metrics.Gauge("websocket_clients", float64(total), nil)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
			}
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.Debug("Client unregistered", "total_clients", total)
			if h.metrics != nil {
				h.metrics.Gauge("websocket_clients", float64(total), nil)
			}

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// broadcastToClients queues a message for every client. Clients whose
// send buffer is full are dropped rather than allowed to stall the
// hub.
func (h *WebSocketHandler) broadcastToClients(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			h.logger.Warn("Client send buffer full, disconnecting")
			close(client.send)
			delete(h.clients, client)
		}
	}

	if h.metrics != nil {
		h.metrics.Counter("websocket_messages_sent_total", nil)
	}
}

// readPump consumes messages from the connection until it closes. The
// stream is one-way; client messages only serve to keep the read side
// and pong handler running.
func (h *WebSocketHandler) readPump(client *wsClient, requestID string) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.shutdown:
		}
		_ = client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("Failed to set read deadline", "request_id", requestID, "error", err)
		return
	}
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read ended",
					"request_id", requestID,
					"error", err)
			}
			return
		}
	}
}

// writePump delivers queued messages and periodic pings to one client.
// It exits when the send channel closes or a write fails; the read
// pump notices the closed connection and unregisters the client.
func (h *WebSocketHandler) writePump(client *wsClient, requestID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("Write failed, closing connection",
					"request_id", requestID,
					"error", err)
				return
			}

		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("Ping failed, closing connection",
					"request_id", requestID,
					"error", err)
				return
			}
		}
	}
}
