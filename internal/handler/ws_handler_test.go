package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrelay/internal/app/chat"
	"roomrelay/internal/app/presence"
	"roomrelay/internal/configs"
	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/resp"
)

type frame struct {
	Type    chat.EventName  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T, cfg *configs.AppConfig) (*httptest.Server, *AppDeps) {
	t.Helper()
	deps := NewAppDeps(cfg)
	srv := httptest.NewServer(Router(deps))
	t.Cleanup(func() {
		deps.Hub.Shutdown()
		srv.Close()
	})
	return srv, deps
}

func devConfig() *configs.AppConfig {
	return &configs.AppConfig{Environment: "development", Port: 3000, SendQueueSize: 64}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, event chat.EventName, payload any, ackID string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(chat.InboundEnvelope{Type: event, Payload: raw, AckID: ackID}))
}

func next(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expectMessage(t *testing.T, conn *websocket.Conn, username, text string) {
	t.Helper()
	f := next(t, conn)
	require.Equal(t, chat.EventMessage, f.Type, "payload %s", f.Payload)
	var msg chat.Message
	require.NoError(t, json.Unmarshal(f.Payload, &msg))
	assert.Equal(t, username, msg.Username)
	assert.Equal(t, text, msg.Text)
	assert.NotZero(t, msg.CreatedAt)
}

func expectRoster(t *testing.T, conn *websocket.Conn, room string, names ...string) {
	t.Helper()
	f := next(t, conn)
	require.Equal(t, chat.EventRoomData, f.Type, "payload %s", f.Payload)
	var snap presence.RosterSnapshot
	require.NoError(t, json.Unmarshal(f.Payload, &snap))
	assert.Equal(t, room, snap.Room)

	got := make([]string, 0, len(snap.Users))
	for _, u := range snap.Users {
		got = append(got, u.Username)
	}
	assert.Equal(t, names, got)
}

func expectAck(t *testing.T, conn *websocket.Conn, ackID string, wantErr string) {
	t.Helper()
	f := next(t, conn)
	require.Equal(t, chat.EventAck, f.Type, "payload %s", f.Payload)
	var ack chat.AckPayload
	require.NoError(t, json.Unmarshal(f.Payload, &ack))
	assert.Equal(t, ackID, ack.AckID)
	assert.Equal(t, wantErr, ack.Error)
}

func TestWebSocket_RoomLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, devConfig())

	alice := dial(t, srv)
	emit(t, alice, chat.EventJoin, chat.JoinPayload{Username: "Alice", Room: " Lobby "}, "1")
	expectMessage(t, alice, chat.AdminName, "Welcome!")
	expectRoster(t, alice, "lobby", "alice")
	expectAck(t, alice, "1", "")

	bob := dial(t, srv)
	emit(t, bob, chat.EventJoin, chat.JoinPayload{Username: "bob", Room: "lobby"}, "1")
	expectMessage(t, bob, chat.AdminName, "Welcome!")
	expectRoster(t, bob, "lobby", "alice", "bob")
	expectAck(t, bob, "1", "")

	expectMessage(t, alice, chat.AdminName, "bob has joined!")
	expectRoster(t, alice, "lobby", "alice", "bob")

	emit(t, alice, chat.EventSendMessage, "hello bob", "2")
	expectMessage(t, alice, "alice", "hello bob")
	expectAck(t, alice, "2", "")
	expectMessage(t, bob, "alice", "hello bob")

	emit(t, bob, chat.EventSendLocation, map[string]float64{"latitude": 48.8584, "longitude": 2.2945}, "2")
	f := next(t, bob)
	require.Equal(t, chat.EventLocationMessage, f.Type)
	var loc chat.LocationMessage
	require.NoError(t, json.Unmarshal(f.Payload, &loc))
	assert.Equal(t, "bob", loc.Username)
	assert.Equal(t, "https://google.com/maps?q=48.8584,2.2945", loc.URL)
	expectAck(t, bob, "2", "")

	f = next(t, alice)
	assert.Equal(t, chat.EventLocationMessage, f.Type)

	emit(t, bob, chat.EventJoin, chat.JoinPayload{Username: "robert", Room: "attic"}, "3")
	expectAck(t, bob, "3", "You have already joined a room.")

	require.NoError(t, bob.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = bob.Close()

	expectMessage(t, alice, chat.AdminName, "bob has left!")
	expectRoster(t, alice, "lobby", "alice")
}

func TestWebSocket_Errors(t *testing.T) {
	srv, _ := newTestServer(t, devConfig())

	alice := dial(t, srv)
	emit(t, alice, chat.EventJoin, chat.JoinPayload{Username: "alice", Room: "lobby"}, "")
	expectMessage(t, alice, chat.AdminName, "Welcome!")
	expectRoster(t, alice, "lobby", "alice")

	stranger := dial(t, srv)

	emit(t, stranger, chat.EventSendMessage, "anyone there?", "")
	f := next(t, stranger)
	require.Equal(t, chat.EventError, f.Type)
	var errPayload chat.ErrorPayload
	require.NoError(t, json.Unmarshal(f.Payload, &errPayload))
	assert.Equal(t, errs.ErrNotRegistered, errPayload.Code)

	emit(t, stranger, chat.EventJoin, chat.JoinPayload{Username: " ALICE", Room: "LOBBY"}, "j")
	expectAck(t, stranger, "j", "Username is in use!")

	emit(t, stranger, chat.EventJoin, chat.JoinPayload{Username: "", Room: "lobby"}, "k")
	expectAck(t, stranger, "k", "Username and room are required")

	require.NoError(t, stranger.WriteMessage(websocket.TextMessage, []byte("{not json")))
	f = next(t, stranger)
	require.Equal(t, chat.EventError, f.Type)
	require.NoError(t, json.Unmarshal(f.Payload, &errPayload))
	assert.Equal(t, errs.ErrInvalidJSONFormat, errPayload.Code)

	emit(t, alice, chat.EventSendMessage, "what the fuck", "p")
	expectAck(t, alice, "p", "Profanity is not allowed")

	// the rejected join and the rejected message reached no one in the room
	emit(t, alice, chat.EventSendMessage, "still here", "")
	expectMessage(t, alice, "alice", "still here")
}

func TestWebSocket_OriginCheck(t *testing.T) {
	cfg := &configs.AppConfig{
		Environment:    "production",
		Port:           3000,
		SendQueueSize:  8,
		AllowedOrigins: []string{"https://chat.example.com"},
	}
	srv, _ := newTestServer(t, cfg)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, httpResp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, httpResp)
	assert.Equal(t, http.StatusForbidden, httpResp.StatusCode)

	header = http.Header{"Origin": []string{"https://chat.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestWebSocket_RefusedAfterShutdown(t *testing.T) {
	srv, deps := newTestServer(t, devConfig())
	deps.Hub.Shutdown()

	_, httpResp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, httpResp)
	assert.Equal(t, http.StatusServiceUnavailable, httpResp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, deps := newTestServer(t, devConfig())

	_, customErr := deps.Registry.AddUser("c1", "alice", "lobby")
	require.Nil(t, customErr)

	httpResp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer httpResp.Body.Close()

	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	var body resp.JSONResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&body))
	assert.Equal(t, 0, body.Code)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, float64(1), data["rooms"])
	assert.Equal(t, float64(1), data["users"])
}
