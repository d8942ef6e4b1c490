/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, which upgrades the connection, assigns it a connection
ID, registers it with the Hub and runs its read and write loops. Joining a room happens
later, through the join event.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"roomrelay/internal/app/chat"
	"roomrelay/internal/app/presence"
	"roomrelay/internal/pkg/errs"
	"roomrelay/internal/pkg/logx"
	"roomrelay/internal/pkg/randx"
	"roomrelay/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc that serves one WebSocket connection per request.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Hub.IsClosed() {
			resp.RespondError(w, errs.NewError(errs.ErrServiceUnavailable))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error response.
			logx.Warn("Failed to upgrade connection to WebSocket", "error", err.Error())
			return
		}

		id := presence.ConnectionID(randx.ConnectionID())
		client := chat.NewClient(deps.Hub, conn, id, deps.Config.SendQueueSize)

		if customErr := deps.Hub.Register(client); customErr != nil {
			logx.Info("WebSocket connection refused", "connection_id", string(id), "code", customErr.Code)
			closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, customErr.Message)
			_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
			_ = conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "connection_id", string(id))

		go client.WritePump()
		client.ReadPump(deps.Router)

		logx.Debug("WebSocket connection closed", "connection_id", string(id))
	}
}
