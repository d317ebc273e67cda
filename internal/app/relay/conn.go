/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file wraps a gorilla WebSocket connection with the buffered write
queue, heartbeat, and closed-state bookkeeping the session runs on.
*/
package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait bounds a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod is how often the server pings. Must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames in bytes.
	maxMessageSize = 8192

	// sendQueueSize is the outbound frame buffer per connection.
	sendQueueSize = 256
)

// wsConn owns one WebSocket transport. Outbound frames go through a
// buffered channel drained by writePump; inbound frames are read by
// readLoop on the session's goroutine.
type wsConn struct {
	conn *websocket.Conn

	mu     sync.RWMutex
	closed bool
	send   chan []byte

	logger zerolog.Logger
}

func newWSConn(conn *websocket.Conn, logger zerolog.Logger) *wsConn {
	return &wsConn{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logger,
	}
}

// enqueue queues frame for writing. Best effort: a closed connection or a
// full queue drops the frame with an error.
func (c *wsConn) enqueue(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errConnClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame.")
		return errSendQueueFull
	}
}

// close sends a close frame with the given code and reason, then shuts the
// send queue so writePump tears the transport down. Safe to call more than
// once and concurrently with the pump; only the first call wins.
func (c *wsConn) close(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	// WriteControl may run concurrently with a writePump write; plain
	// WriteMessage may not. The close frame goes out before the queue is
	// shut so the peer sees the reason rather than a bare teardown.
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to write close frame.")
	}

	c.mu.Lock()
	close(c.send)
	c.mu.Unlock()
}

// writePump drains the send queue onto the wire and keeps the heartbeat
// going. It closes the underlying connection when it exits.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in writePump.")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}

			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame.")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop reads inbound frames and hands them to onFrame until the
// transport errors or closes.
func (c *wsConn) readLoop(onFrame func(frame []byte)) {
	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Read loop ended with unexpected close.")
			}
			return
		}

		onFrame(frame)
	}
}
