package relay

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"farebid/internal/service"
)

// envelope is the wire format for relayed events.
type envelope struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	At    string `json:"at"`
}

// Hub fans service events out to websocket subscribers. Each client
// subscribes to a set of topics at connect time; an event addressed to a
// topic reaches every client subscribed to it. Hub implements
// service.StatusPublisher so the services never see websockets directly.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
}

var _ service.StatusPublisher = (*Hub)(nil)

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registrations until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			log.Printf("relay client connected, %d topics", len(client.topics))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Println("relay client disconnected")
		}
	}
}

// Publish delivers an event to every client subscribed to the topic. A
// client whose send buffer is full is dropped rather than blocking the
// caller.
func (h *Hub) Publish(topic string, event service.Event) error {
	payload, err := json.Marshal(envelope{
		Topic: topic,
		Type:  event.Type,
		Data:  event.Data,
		At:    event.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.subscribed(topic) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			log.Println("relay client dropped, send buffer full")
		}
	}

	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}
