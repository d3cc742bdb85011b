// Package ws implements the websocket rendition of the transport boundary:
// a hub owning every live connection, broadcast groups keyed by room id,
// and per-connection read/write pumps.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/netznav/navigator/internal/protocol"
	"github.com/netznav/navigator/internal/transport"
)

// Hub tracks live connections and their group membership. Emissions are
// fire-and-forget: a client whose send buffer is full has the message
// dropped rather than stalling the whole broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[transport.ConnID]*Client
	groups  map[string]map[transport.ConnID]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[transport.ConnID]*Client),
		groups:  make(map[string]map[transport.ConnID]struct{}),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Ensure Hub implements the transport boundary
var _ transport.Transport = (*Hub)(nil)

// Register adds a freshly-upgraded connection to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		slog.String("conn", string(client.id)),
		slog.Int("total_connections", total))
}

// Unregister drops a connection and removes it from every group
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	for group, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("connection unregistered",
		slog.String("conn", string(client.id)),
		slog.Int("total_connections", total))
}

// Join adds a connection to a broadcast group
func (h *Hub) Join(group string, conn transport.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[transport.ConnID]struct{})
		h.groups[group] = members
	}
	members[conn] = struct{}{}
}

// Leave removes a connection from a broadcast group
func (h *Hub) Leave(group string, conn transport.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// EmitTo unicasts an event to a single connection
func (h *Hub) EmitTo(conn transport.ConnID, event protocol.EventName, payload any) {
	frame, err := h.encode(event, payload)
	if err != nil {
		return
	}

	// deliver while holding the read lock: send channels are only closed
	// under the write lock, so a send can never race a close
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client := h.clients[conn]; client != nil {
		h.deliver(client, frame)
	}
}

// EmitToGroup broadcasts an event to every connection in a group,
// optionally excluding one (the originator)
func (h *Hub) EmitToGroup(group string, event protocol.EventName, payload any, exclude transport.ConnID) {
	frame, err := h.encode(event, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[group] {
		if id == exclude {
			continue
		}
		if client := h.clients[id]; client != nil {
			h.deliver(client, frame)
		}
	}
}

// GroupSize returns the number of connections in a group
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// ConnectionCount returns the number of live connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(event protocol.EventName, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Error("payload marshal failed",
				slog.String("event", string(event)),
				slog.Any("error", err))
			return nil, err
		}
		raw = data
	}
	return json.Marshal(protocol.Envelope{Event: event, Payload: raw})
}

func (h *Hub) deliver(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		h.logger.Warn("message dropped, client buffer full",
			slog.String("conn", string(client.id)))
	}
}
