// Package realtime fans roster and account changes out to live viewers.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/arise-roster/internal/model"
)

// Hub is the single process-wide broadcaster. Publishing never blocks:
// events are dropped when the hub or a client buffer is full.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan model.Event
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub; call Run to start it
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "realtime")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.Event, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("realtime hub started")
	for {
		select {
		case client := <-h.register:
			// events queued before the client registered belong to its snapshot
			h.drain()
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("viewer connected",
				slog.String("client_id", client.id),
				slog.String("role", string(client.viewer.Role)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("viewer disconnected",
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("realtime hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) drain() {
	for {
		select {
		case event := <-h.broadcast:
			h.deliver(event)
		default:
			return
		}
	}
}

func (h *Hub) deliver(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	encoded := make(map[model.EventKind]Message)
	sent, dropped := 0, 0
	for client := range h.clients {
		filtered, ok := FilterEvent(client.viewer, event)
		if !ok {
			continue
		}
		msg, ok := encoded[filtered.Kind]
		if !ok {
			data, err := json.Marshal(filtered.Payload)
			if err != nil {
				h.logger.Error("failed to encode event",
					slog.String("event", string(filtered.Kind)),
					slog.String("error", err.Error()))
				continue
			}
			msg = Message{Event: string(filtered.Kind), Data: data}
			encoded[filtered.Kind] = msg
		}
		select {
		case client.send <- msg:
			sent++
		default:
			dropped++
			h.logger.Warn("event dropped - client buffer full",
				slog.String("client_id", client.id))
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.String("event", string(event.Kind)),
			slog.Int("sent", sent),
			slog.Int("dropped", dropped))
	}
}

// Register adds a client to the hub. If the hub has stopped the client's
// channel is closed immediately.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every connected viewer
func (h *Hub) Publish(event model.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event dropped - hub buffer full", slog.String("event", string(event.Kind)))
	}
}

// Close shuts down the hub and disconnects every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
