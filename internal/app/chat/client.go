/*
Package chat contains the real-time relay.

This file defines the Client struct, representing an active WebSocket connection. It runs
the connection's read and write loops (ReadPump and WritePump), hands every inbound frame
to a Dispatcher and turns the dispatcher's result into an acknowledgment.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomrelay/internal/app/presence"
	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192
)

// Dispatcher handles decoded inbound events for a connection.
type Dispatcher interface {
	Dispatch(id presence.ConnectionID, event EventName, payload json.RawMessage) error
	Disconnect(id presence.ConnectionID)
}

// Client represents an active WebSocket connection.
type Client struct {
	// id identifies the connection for its whole lifetime.
	id presence.ConnectionID

	// hub owns the client's send queue and room subscription.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// room the client is subscribed to; guarded by hub.mu.
	room string

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client with a send queue of queueSize frames.
func NewClient(hub *Hub, wsConn *websocket.Conn, id presence.ConnectionID, queueSize int) *Client {
	return &Client{
		id:     id,
		hub:    hub,
		conn:   wsConn,
		send:   make(chan []byte, queueSize),
		logger: logx.Logger().With().Str("connection_id", string(id)).Logger(),
	}
}

// enqueue offers a frame to the send queue without blocking. Callers hold hub.mu.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads frames until the connection fails or closes, dispatching each one in
// order. On exit it reports the disconnect and releases the connection.
func (c *Client) ReadPump(dispatcher Dispatcher) {
	defer c.cleanupOnDisconnect(dispatcher)

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected close while reading")
			}
			break
		}

		c.processInboundFrame(dispatcher, frame)
	}
}

// cleanupOnDisconnect runs once the read loop ends.
func (c *Client) cleanupOnDisconnect(dispatcher Dispatcher) {
	c.logger.Debug().Msg("Client connection cleanup starting.")

	dispatcher.Disconnect(c.id)
	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame decodes one frame, dispatches it and acknowledges the result.
func (c *Client) processInboundFrame(dispatcher Dispatcher, frame []byte) {
	var inbound InboundEnvelope
	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Int("frame_bytes", len(frame)).Msg("Client sent invalid JSON")
		c.reply("", errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	err := dispatcher.Dispatch(c.id, inbound.Type, inbound.Payload)
	c.reply(inbound.AckID, err)
}

// reply acknowledges a frame. With an ackId the client always gets an ack carrying the
// error, if any; without one only failures are reported, as an error event.
func (c *Client) reply(ackID string, err error) {
	var customErr *errs.CustomError
	if err != nil {
		customErr = errs.From(err)
	}

	if ackID != "" {
		ack := AckPayload{AckID: ackID}
		if customErr != nil {
			ack.Error = customErr.Message
			ack.Code = customErr.Code
		}
		c.hub.Unicast(c.id, EventAck, ack)
		return
	}

	if customErr != nil {
		c.hub.Unicast(c.id, EventError, ErrorPayload{Code: customErr.Code, Message: customErr.Message})
	}
}

// WritePump drains the send queue to the WebSocket connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one queued frame, or a close frame once the queue is closed.
// Returns false when the write loop should stop.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing connection")
		if err := c.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends a heartbeat Ping. Returns false when the write loop should stop.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
