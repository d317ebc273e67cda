/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file defines the Relay aggregate, the explicitly constructed object
that owns the registry and broadcaster and binds them to a room store.
*/
package relay

import (
	"errors"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fadechat/internal/app/room"
	"fadechat/internal/app/wire"
	"fadechat/internal/pkg/logx"
)

var (
	errConnClosed    = errors.New("connection closed")
	errSendQueueFull = errors.New("send queue full")
)

// Relay wires a room store, a connection registry, and a broadcaster into
// one relay instance. Constructed on start, torn down with the process; no
// state survives a restart.
type Relay struct {
	store     *room.Store
	registry  *Registry
	broadcast *Broadcaster

	logger zerolog.Logger
}

// New builds a relay over store with a fresh registry and broadcaster.
func New(store *room.Store) *Relay {
	registry := NewRegistry()

	return &Relay{
		store:     store,
		registry:  registry,
		broadcast: NewBroadcaster(registry),
		logger:    logx.Logger().With().Str("component", "Relay").Logger(),
	}
}

// Store exposes the room store backing this relay.
func (r *Relay) Store() *room.Store {
	return r.store
}

// HandleConnection runs the full session lifecycle for an upgraded
// WebSocket connection. It blocks until the session closes.
func (r *Relay) HandleConnection(conn *websocket.Conn, roomID, nickname string) {
	s := newSession(r, conn, roomID, nickname)
	s.run()
}

// ExpireRoom pushes room_expired to every connection still attached to
// roomID. Call after the store entry is gone, whether through lazy eviction
// or the sweeper.
func (r *Relay) ExpireRoom(roomID string) {
	n := r.broadcast.Fanout(roomID, nil, wire.NewRoomExpiredEvent(roomID))

	r.logger.Info().
		Str("room_id", roomID).
		Int("notified", n).
		Msg("Room expired, connections notified.")
}
