/*
Package chat contains the real-time relay: the event router that turns client events into
presence changes and room broadcasts, the WebSocket transport (Hub and Client) that carries
them, and the payload formatters shared by both.

This file defines the wire envelopes, event names and message formatters.
*/
package chat

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventName is the type tag of a wire envelope.
type EventName string

// Inbound events.
const (
	EventJoin         EventName = "join"
	EventSendMessage  EventName = "sendMessage"
	EventSendLocation EventName = "sendLocation"
)

// Outbound events.
const (
	EventMessage         EventName = "message"
	EventLocationMessage EventName = "locationMessage"
	EventRoomData        EventName = "roomData"
	EventAck             EventName = "ack"
	EventError           EventName = "error"
)

const (
	// AdminName is the sender shown on relay-generated notices.
	AdminName = "Admin"

	// WelcomeText is unicast to a connection right after it joins.
	WelcomeText = "Welcome!"

	// MaxContentBytes is the maximum allowed size (in bytes) of a text message body.
	MaxContentBytes = 5000

	mapsBaseURL = "https://google.com/maps"
)

// InboundEnvelope is a frame received from a client.
type InboundEnvelope struct {
	Type    EventName       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// AckID is echoed in the acknowledgment; frames without one get no ack on success.
	AckID string `json:"ackId,omitempty"`
}

// Envelope is a frame sent to a client.
type Envelope struct {
	Type    EventName `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// JoinPayload is the payload of a join event.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// LocationPayload is the payload of a sendLocation event.
// Pointers distinguish a missing coordinate from zero.
type LocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Message is the payload of an outbound text message.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage is the payload of an outbound location share.
type LocationMessage struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// AckPayload acknowledges an inbound frame that carried an ackId.
type AckPayload struct {
	AckID string `json:"ackId"`
	Error string `json:"error,omitempty"`
	Code  int    `json:"code,omitempty"`
}

// ErrorPayload reports a failed inbound frame that carried no ackId.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GenerateMessage builds a text message stamped with at.
func GenerateMessage(username, text string, at time.Time) Message {
	return Message{
		Username:  username,
		Text:      text,
		CreatedAt: at.UnixMilli(),
	}
}

// GenerateLocationMessage builds a location message stamped with at.
func GenerateLocationMessage(username, mapURL string, at time.Time) LocationMessage {
	return LocationMessage{
		Username:  username,
		URL:       mapURL,
		CreatedAt: at.UnixMilli(),
	}
}

// MapURL returns a map link centred on the given coordinates.
func MapURL(latitude, longitude float64) string {
	return mapsBaseURL + "?q=" +
		strconv.FormatFloat(latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}

// joinedText and leftText are the room notices for membership changes.
func joinedText(username string) string { return username + " has joined!" }
func leftText(username string) string   { return username + " has left!" }
