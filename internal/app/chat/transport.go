package chat

import "roomrelay/internal/app/presence"

// Transport delivers outbound events to connections.
// Implementations must not block on slow connections.
type Transport interface {
	// Unicast sends an event to a single connection.
	Unicast(id presence.ConnectionID, event EventName, payload any)

	// MulticastRoom sends an event to every connection subscribed to room except exclude.
	// An empty exclude excludes no one.
	MulticastRoom(room string, event EventName, payload any, exclude presence.ConnectionID)

	// JoinRoom subscribes a connection to room broadcasts.
	JoinRoom(id presence.ConnectionID, room string)

	// LeaveRoom removes a connection's subscription to room.
	LeaveRoom(id presence.ConnectionID, room string)
}
