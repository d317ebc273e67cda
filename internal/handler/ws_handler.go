/*
Package handler provides the HTTP surface of the relay: connection
upgrades, the room status API, and attachment presigning.

This file upgrades connect requests to WebSocket and hands them to the
relay session loop.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fadechat/internal/app/wire"
	"fadechat/internal/pkg/errs"
	"fadechat/internal/pkg/limiter"
	"fadechat/internal/pkg/logx"
	"fadechat/internal/pkg/resp"
)

// closeWriteWait bounds the close-frame write for rejected connects.
const closeWriteWait = 10 * time.Second

// HandleWebSocket returns the handler for relay connect requests. The
// identity travels in the roomId and nickname query parameters; requests
// missing either are upgraded and then closed with a policy-violation
// code, skipping the session entirely.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.GetLimiter(limiter.ClientIP(r)).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", limiter.ClientIP(r))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		query := r.URL.Query()
		roomID := query.Get("roomId")
		nickname := query.Get("nickname")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		if roomID == "" || nickname == "" {
			logx.Warn("WebSocket connection rejected: Missing roomId or nickname")

			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, wire.CloseReasonMissingParams)
			conn.SetWriteDeadline(time.Now().Add(closeWriteWait))
			conn.WriteMessage(websocket.CloseMessage, msg)
			conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "room_id", roomID, "nickname", nickname)

		deps.Relay.HandleConnection(conn, roomID, nickname)
	}
}
