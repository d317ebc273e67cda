/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file defines the Session, the per-connection control loop. A session
moves Connecting → Open → Closing → Closed; Closed cleanup runs exactly
once even when a transport error and a displacement race each other.
*/
package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fadechat/internal/app/room"
	"fadechat/internal/app/user"
	"fadechat/internal/app/wire"
	"fadechat/internal/pkg/logx"
	"fadechat/internal/pkg/randx"
)

// Session lifecycle states.
const (
	stateConnecting int32 = iota
	stateOpen
	stateClosing
	stateClosed
)

// Session binds one transport connection to a (room, nickname) identity.
type Session struct {
	relay *Relay
	conn  *wsConn

	roomID   string
	nickname string

	state    atomic.Int32
	replaced atomic.Bool

	cleanupOnce sync.Once

	logger zerolog.Logger
}

func newSession(r *Relay, conn *websocket.Conn, roomID, nickname string) *Session {
	logger := logx.Logger().With().
		Str("component", "Session").
		Str("room_id", roomID).
		Str("nickname", nickname).
		Logger()

	return &Session{
		relay:    r,
		conn:     newWSConn(conn, logger),
		roomID:   roomID,
		nickname: nickname,
		logger:   logger,
	}
}

// Deliver implements Handle.
func (s *Session) Deliver(frame []byte) error {
	return s.conn.enqueue(frame)
}

// Displace implements Handle. The replaced flag makes the Closed cleanup
// skip the leave announcement and the user removal: the identity lives on
// through the replacing connection.
func (s *Session) Displace() {
	s.replaced.Store(true)
	s.conn.close(websocket.CloseNormalClosure, ReasonReplaced)
}

// run drives the session state machine to completion.
func (s *Session) run() {
	go s.conn.writePump()

	switch decision := s.relay.registry.Admit(s.roomID, s.nickname, s); decision {
	case Rejected:
		// Never joined, so there is nothing to clean up beyond the transport.
		s.state.Store(stateClosed)
		s.conn.close(websocket.CloseNormalClosure, ReasonTooFrequent)
		return

	case Accepted, Replaced:
		s.logger.Info().Str("decision", decision.String()).Msg("Connection admitted.")
	}

	s.join()
	s.state.Store(stateOpen)

	s.conn.readLoop(s.handleFrame)

	s.shutdown()
}

// join upserts the user, creating the room on first contact, and announces
// the arrival: the room hears user_joined while the joining connection
// receives a direct one-time join acknowledgment.
func (s *Session) join() {
	u := user.User{Nickname: s.nickname, JoinedAt: time.Now()}

	if !s.relay.store.UpsertUser(s.roomID, u) {
		s.relay.store.Create(s.roomID)
		s.relay.store.UpsertUser(s.roomID, u)
	}

	evt := wire.NewUserJoinedEvent(s.roomID, u)
	s.relay.broadcast.Fanout(s.roomID, s, evt)

	if frame, err := evt.Encode(); err == nil {
		if err := s.Deliver(frame); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to deliver join acknowledgment.")
		}
	}
}

// handleFrame processes one inbound frame. Malformed payloads are logged
// and dropped; the session stays open.
func (s *Session) handleFrame(frame []byte) {
	env, err := wire.Decode(frame)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid JSON, dropping frame.")
		return
	}

	switch env.Type {
	case wire.EventMessage:
		s.handleMessage(env)
	default:
		s.logger.Warn().
			Str("event_type", string(env.Type)).
			Msg("Client sent unsupported event kind, dropping frame.")
	}
}

// handleMessage validates, persists, and fans out one chat message.
func (s *Session) handleMessage(env wire.Envelope) {
	if env.Message == nil {
		s.logger.Warn().Msg("Message event without message body, dropping frame.")
		return
	}

	m := *env.Message

	if cerr := room.ValidateInbound(&m); cerr != nil {
		s.relay.broadcast.Fanout(s.roomID, s, wire.NewErrorEvent(cerr.Message))
		return
	}

	// The relay is authoritative for identity, ID and ordering timestamp.
	m.Nickname = s.nickname
	m.Timestamp = time.Now()
	if m.ID == "" {
		m.ID = randx.MessageID()
	}

	if !s.relay.store.AppendMessage(s.roomID, m) {
		// The store evicted the room on access: TTL elapsed mid-session.
		s.relay.ExpireRoom(s.roomID)
		return
	}

	s.relay.broadcast.Fanout(s.roomID, s, wire.NewMessageEvent(s.roomID, m))
}

// shutdown runs the Closed-state cleanup exactly once: release the
// registry slot, drop the user, and announce the departure. A session
// closed by displacement leaves membership to its successor and stays
// silent.
func (s *Session) shutdown() {
	s.cleanupOnce.Do(func() {
		s.state.Store(stateClosing)

		s.conn.close(websocket.CloseNormalClosure, "")

		s.relay.registry.Release(s.roomID, s.nickname, s)

		if !s.replaced.Load() {
			if s.relay.store.RemoveUser(s.roomID, s.nickname) {
				s.relay.broadcast.Fanout(s.roomID, s, wire.NewUserLeftEvent(s.roomID, s.nickname))
			}
		}

		s.state.Store(stateClosed)
		s.logger.Info().Bool("replaced", s.replaced.Load()).Msg("Session closed.")
	})
}
