/*
Package chat contains the real-time relay.

This file defines the Router, which handles one inbound event at a time: it validates the
sender against the presence registry, applies membership changes and fans the resulting
events out through the Transport. Each handler returns its outcome synchronously; the
caller turns it into the client's acknowledgment.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roomrelay/internal/app/presence"
	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/logx"
	"roomrelay/internal/pkg/req"
)

// Router translates inbound client events into registry operations and broadcasts.
// It keeps no state of its own beyond what it reads from the registry per call.
type Router struct {
	registry  *presence.Registry
	transport Transport
	filter    ContentFilter

	// membership serializes join and disconnect handling from mutation through
	// broadcast, so roster updates reach every queue in mutation order.
	membership sync.Mutex

	// now stamps outbound messages.
	now func() time.Time

	logger zerolog.Logger
}

// NewRouter constructs a Router.
func NewRouter(registry *presence.Registry, transport Transport, filter ContentFilter) *Router {
	return &Router{
		registry:  registry,
		transport: transport,
		filter:    filter,
		now:       time.Now,
		logger:    logx.Component("router"),
	}
}

// Dispatch decodes payload according to event and runs the matching handler.
func (r *Router) Dispatch(id presence.ConnectionID, event EventName, payload json.RawMessage) error {
	switch event {
	case EventJoin:
		var in JoinPayload
		if customErr := req.BindPayload(payload, &in); customErr != nil {
			return customErr
		}
		return r.Join(id, in.Username, in.Room)

	case EventSendMessage:
		var text string
		if customErr := req.BindPayload(payload, &text); customErr != nil {
			return customErr
		}
		return r.SendMessage(id, text)

	case EventSendLocation:
		var in LocationPayload
		if customErr := req.BindPayload(payload, &in); customErr != nil {
			return customErr
		}
		if in.Latitude == nil || in.Longitude == nil {
			return errs.NewError(errs.ErrInvalidParams)
		}
		return r.SendLocation(id, *in.Latitude, *in.Longitude)

	default:
		r.logger.Warn().
			Str("connection_id", string(id)).
			Str("event", string(event)).
			Msg("Client sent unsupported event")
		return errs.NewError(errs.ErrUnsupportedEvent, string(event))
	}
}

// Join registers the connection in a room, welcomes it, announces it to the other
// members and sends the updated roster to the whole room.
func (r *Router) Join(id presence.ConnectionID, username, room string) error {
	r.membership.Lock()
	defer r.membership.Unlock()

	user, customErr := r.registry.AddUser(id, username, room)
	if customErr != nil {
		r.logger.Info().
			Str("connection_id", string(id)).
			Int("code", customErr.Code).
			Msg("Join rejected")
		return customErr
	}

	r.transport.JoinRoom(id, user.Room)

	now := r.now()
	r.transport.Unicast(id, EventMessage, GenerateMessage(AdminName, WelcomeText, now))
	r.transport.MulticastRoom(user.Room, EventMessage, GenerateMessage(AdminName, joinedText(user.Username), now), id)
	r.transport.MulticastRoom(user.Room, EventRoomData, r.registry.Snapshot(user.Room), "")

	r.logger.Info().
		Str("connection_id", string(id)).
		Str("room", user.Room).
		Str("username", user.Username).
		Msg("User joined room")

	return nil
}

// SendMessage relays a text message to the sender's room, sender included.
func (r *Router) SendMessage(id presence.ConnectionID, text string) error {
	user, ok := r.registry.GetUser(id)
	if !ok {
		return r.notRegistered(id, EventSendMessage)
	}

	if len(text) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	if r.filter != nil && r.filter.IsProfane(text) {
		r.logger.Info().
			Str("connection_id", string(id)).
			Str("room", user.Room).
			Msg("Message rejected by content filter")
		return errs.NewError(errs.ErrProfanityRejected)
	}

	r.transport.MulticastRoom(user.Room, EventMessage, GenerateMessage(user.Username, text, r.now()), "")
	return nil
}

// SendLocation relays a map link for the given coordinates to the sender's room, sender included.
func (r *Router) SendLocation(id presence.ConnectionID, latitude, longitude float64) error {
	user, ok := r.registry.GetUser(id)
	if !ok {
		return r.notRegistered(id, EventSendLocation)
	}

	msg := GenerateLocationMessage(user.Username, MapURL(latitude, longitude), r.now())
	r.transport.MulticastRoom(user.Room, EventLocationMessage, msg, "")
	return nil
}

// Disconnect removes the connection's presence, if any, and tells the rest of the room.
// A connection that never joined produces no broadcast.
func (r *Router) Disconnect(id presence.ConnectionID) {
	r.membership.Lock()
	defer r.membership.Unlock()

	user, ok := r.registry.RemoveUser(id)
	if !ok {
		return
	}

	r.transport.LeaveRoom(id, user.Room)
	r.transport.MulticastRoom(user.Room, EventMessage, GenerateMessage(AdminName, leftText(user.Username), r.now()), "")
	r.transport.MulticastRoom(user.Room, EventRoomData, r.registry.Snapshot(user.Room), "")

	r.logger.Info().
		Str("connection_id", string(id)).
		Str("room", user.Room).
		Str("username", user.Username).
		Msg("User left room")
}

func (r *Router) notRegistered(id presence.ConnectionID, event EventName) error {
	r.logger.Debug().
		Str("connection_id", string(id)).
		Str("event", string(event)).
		Msg("Event from connection without presence")
	return errs.NewError(errs.ErrNotRegistered)
}
