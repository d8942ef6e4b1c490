/*
Package chat contains the real-time relay.

This file defines the Hub, the WebSocket side of the Transport. It tracks every live
Client by connection ID together with the room each one is subscribed to, and fans
encoded envelopes out to their send queues without ever blocking on a slow reader.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"roomrelay/internal/app/presence"
	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/logx"
)

// Hub coordinates all live connections and their room subscriptions.
type Hub struct {
	// clients stores every registered Client, keyed by connection ID.
	clients map[presence.ConnectionID]*Client

	// rooms maps a room name to the clients subscribed to it.
	rooms map[string]map[presence.ConnectionID]*Client

	// closed is set by Shutdown; later registrations are refused.
	closed bool

	// mu protects clients, rooms and closed. Send queues are only written and
	// closed while it is held, so a send never races a close.
	mu sync.RWMutex

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[presence.ConnectionID]*Client),
		rooms:   make(map[string]map[presence.ConnectionID]*Client),
		logger:  logx.Component("hub"),
	}
}

// Register adds a client. It fails with ErrServiceUnavailable after Shutdown.
func (h *Hub) Register(c *Client) *errs.CustomError {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errs.NewError(errs.ErrServiceUnavailable)
	}

	h.clients[c.id] = c
	h.logger.Debug().
		Str("connection_id", string(c.id)).
		Int("total_clients", len(h.clients)).
		Msg("Client registered.")
	return nil
}

// Unregister removes a client and closes its send queue. Unknown or stale clients are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[c.id]
	if !ok || current != c {
		return
	}

	delete(h.clients, c.id)
	if c.room != "" {
		h.removeFromRoom(c.id, c.room)
	}
	close(c.send)

	h.logger.Debug().
		Str("connection_id", string(c.id)).
		Int("total_clients", len(h.clients)).
		Msg("Client unregistered.")
}

// JoinRoom subscribes a registered connection to room broadcasts.
func (h *Hub) JoinRoom(id presence.ConnectionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[id]
	if !ok {
		h.logger.Warn().Str("connection_id", string(id)).Str("room", room).Msg("JoinRoom for unknown connection.")
		return
	}

	if c.room != "" && c.room != room {
		h.removeFromRoom(id, c.room)
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[presence.ConnectionID]*Client)
		h.rooms[room] = members
	}
	members[id] = c
	c.room = room
}

// LeaveRoom drops a connection's subscription to room.
func (h *Hub) LeaveRoom(id presence.ConnectionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(id, room)
	if c, ok := h.clients[id]; ok && c.room == room {
		c.room = ""
	}
}

// removeFromRoom deletes id from room and drops the room once empty. Callers hold mu.
func (h *Hub) removeFromRoom(id presence.ConnectionID, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Unicast queues an event for a single connection.
func (h *Hub) Unicast(id presence.ConnectionID, event EventName, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	c, found := h.clients[id]
	delivered := found && c.enqueue(data)
	h.mu.RUnlock()

	if found && !delivered {
		h.evict(c)
	}
}

// MulticastRoom queues an event for every subscriber of room except exclude.
func (h *Hub) MulticastRoom(room string, event EventName, payload any, exclude presence.ConnectionID) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	var slow []*Client

	h.mu.RLock()
	for id, c := range h.rooms[room] {
		if id == exclude {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.evict(c)
	}
}

// encode marshals an envelope once for all recipients.
func (h *Hub) encode(event EventName, payload any) ([]byte, bool) {
	data, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(event)).Msg("Error marshaling envelope.")
		return nil, false
	}
	return data, true
}

// evict drops a client whose queue overflowed. Closing its queue makes the write pump
// send a close frame and drop the socket, which ends the read pump and runs the normal
// disconnect path.
func (h *Hub) evict(c *Client) {
	h.logger.Warn().
		Str("connection_id", string(c.id)).
		Msg("Client send queue full, evicting.")

	h.Unregister(c)
}

// IsClosed reports whether Shutdown has run.
func (h *Hub) IsClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.closed
}

// Stats returns the number of registered clients and subscribed rooms.
func (h *Hub) Stats() (clients, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients), len(h.rooms)
}

// Shutdown closes every client's send queue, which makes each write pump send a close
// frame and exit, and refuses further registrations.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	clear(h.rooms)

	h.logger.Info().Msg("Hub shutdown complete.")
}
