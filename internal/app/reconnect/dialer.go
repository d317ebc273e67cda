/*
Package reconnect implements the client-side reconnection controller.

This file provides the production Dialer, which connects to a relay over
WebSocket with the roomId and nickname query parameters the relay expects.
*/
package reconnect

import (
	"context"
	"net/url"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials a relay endpoint.
type WebSocketDialer struct {
	url string
}

// NewWebSocketDialer builds a dialer for baseURL (e.g. "ws://host:8080/ws")
// carrying roomID and nickname as query parameters.
func NewWebSocketDialer(baseURL, roomID, nickname string) WebSocketDialer {
	q := url.Values{}
	q.Set("roomId", roomID)
	q.Set("nickname", nickname)

	return WebSocketDialer{url: baseURL + "?" + q.Encode()}
}

// Dial implements Dialer using gorilla's default dialer.
func (d WebSocketDialer) Dial(ctx context.Context) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
