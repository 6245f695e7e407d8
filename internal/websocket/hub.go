package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"sidebyside/internal/infrastructure"
)

// Event types pushed to browser clients
const (
	EventConnection         = "connection"
	EventComparisonComplete = "comparison:complete"
	EventComparisonFailed   = "comparison:failed"
)

// Message is the envelope every event is sent in.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	totalConnections int64
	messagesSent     int64
	droppedClients   int64

	quit     chan struct{}
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start starts the hub loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It owns the client set; every send channel is
// closed from here.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := infrastructure.WithTraceID(context.Background(), client.traceID)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendTo(client, h.encode(EventConnection, map[string]interface{}{
				"status":    "connected",
				"client_id": client.id,
			}, client.traceID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			failed := 0
			for _, client := range clients {
				if !h.sendTo(client, message) {
					failed++
				}
			}

			h.logger.Debug("Broadcast delivered",
				slog.Int("client_count", len(clients)),
				slog.Int("fail_count", failed),
				slog.Int("message_size", len(message)))
		}
	}
}

// sendTo queues message for client, dropping the client when its buffer is full.
func (h *Hub) sendTo(client *Client, message []byte) bool {
	if message == nil {
		return false
	}
	select {
	case client.send <- message:
		h.mu.Lock()
		h.messagesSent++
		h.mu.Unlock()
		return true
	default:
		h.mu.Lock()
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
			h.droppedClients++
		}
		h.mu.Unlock()
		h.logger.Warn("Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
		return false
	}
}

func (h *Hub) encode(eventType string, data interface{}, traceID string) []byte {
	jsonData, err := json.Marshal(Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   traceID,
	})
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", eventType))
		return nil
	}
	return jsonData
}

// Publish broadcasts an event to every connected client. The trace ID is
// taken from ctx. Publishing on a stopped hub is a no-op.
func (h *Hub) Publish(ctx context.Context, eventType string, data interface{}) {
	traceID := infrastructure.GetTraceID(ctx)
	if traceID == "" {
		traceID = infrastructure.TraceIDFromContext(ctx)
	}
	message := h.encode(eventType, data, traceID)
	if message == nil {
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.quit:
	case <-ctx.Done():
		h.logger.WarnContext(ctx, "Broadcast abandoned",
			slog.String("message_type", eventType),
			slog.String("error", ctx.Err().Error()))
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub and waits for the loop to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	running := h.running
	h.running = false
	h.mu.Unlock()

	h.stopOnce.Do(func() { close(h.quit) })
	if running {
		<-h.done
	}
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"dropped_clients":   h.droppedClients,
	}
}
