/*
Package room holds the in-memory room registry and the room data model.

This file defines the Store, which owns every live room keyed by its ID,
enforces the fixed TTL with lazy on-read eviction, and mediates all
mutations of a room's users and messages.
*/
package room

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fadechat/internal/app/user"
	"fadechat/internal/pkg/logx"
)

// state is the owned representation of one live room.
type state struct {
	createdAt time.Time
	expiresAt time.Time
	users     []user.User
	messages  []Message
}

// Status is a read-only snapshot of one room, served by the status API.
type Status struct {
	RoomID       string
	TimeLeft     time.Duration
	UserCount    int
	MessageCount int
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Store is the in-memory registry of rooms. Every operation is atomic with
// respect to concurrent sessions and completes without blocking on I/O.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*state

	// ttl is the fixed room lifetime. It is set at creation and never
	// extended by activity.
	ttl time.Duration

	// now is the clock source, replaceable in tests.
	now func() time.Time

	logger zerolog.Logger
}

// NewStore builds a Store whose rooms live for ttl after creation.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		rooms:  make(map[string]*state),
		ttl:    ttl,
		now:    time.Now,
		logger: logx.Logger().With().Str("component", "RoomStore").Logger(),
	}
}

// Create unconditionally constructs a fresh room for roomID. An existing
// entry is overwritten, discarding its users and messages.
func (s *Store) Create(roomID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := &state{
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	s.rooms[roomID] = st

	s.logger.Info().
		Str("room_id", roomID).
		Time("expires_at", st.expiresAt).
		Msg("Room created.")

	return s.statusLocked(roomID, st)
}

// get returns the live state for roomID, evicting it first if its TTL has
// elapsed. Callers must hold s.mu.
func (s *Store) get(roomID string) *state {
	st, ok := s.rooms[roomID]
	if !ok {
		return nil
	}

	if !s.now().Before(st.expiresAt) {
		delete(s.rooms, roomID)
		s.logger.Info().Str("room_id", roomID).Msg("Room expired, evicted on access.")
		return nil
	}

	return st
}

// Exists reports whether roomID is currently live, applying lazy eviction.
func (s *Store) Exists(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(roomID) != nil
}

// Stat returns a snapshot of roomID, or false if it is absent or expired.
func (s *Store) Stat(roomID string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return Status{}, false
	}

	return s.statusLocked(roomID, st), true
}

func (s *Store) statusLocked(roomID string, st *state) Status {
	return Status{
		RoomID:       roomID,
		TimeLeft:     maxDuration(0, st.expiresAt.Sub(s.now())),
		UserCount:    len(st.users),
		MessageCount: len(st.messages),
		CreatedAt:    st.createdAt,
		ExpiresAt:    st.expiresAt,
	}
}

// UpsertUser adds u to roomID, replacing any existing user with the same
// nickname. Returns false if the room is absent or expired.
func (s *Store) UpsertUser(roomID string, u user.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return false
	}

	st.users = removeByNickname(st.users, u.Nickname)
	st.users = append(st.users, u)
	return true
}

// RemoveUser deletes the user with nickname from roomID. Returns false if
// the room is absent or expired.
func (s *Store) RemoveUser(roomID, nickname string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return false
	}

	st.users = removeByNickname(st.users, nickname)
	return true
}

// AppendMessage appends m to roomID's message sequence. Returns false if
// the room is absent or expired.
func (s *Store) AppendMessage(roomID string, m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return false
	}

	st.messages = append(st.messages, m)
	return true
}

// TimeLeft reports the remaining lifetime of roomID, or 0 if it is absent
// or expired.
func (s *Store) TimeLeft(roomID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return 0
	}

	return maxDuration(0, st.expiresAt.Sub(s.now()))
}

// Users returns the current participants of roomID in join order.
func (s *Store) Users(roomID string) []user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(roomID)
	if st == nil {
		return nil
	}

	out := make([]user.User, len(st.users))
	copy(out, st.users)
	return out
}

// SweepExpired removes every room whose TTL has elapsed and returns their
// IDs. This complements the lazy read-path eviction: rooms nobody revisits
// would otherwise linger until the next access.
func (s *Store) SweepExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var evicted []string
	for roomID, st := range s.rooms {
		if !now.Before(st.expiresAt) {
			delete(s.rooms, roomID)
			evicted = append(evicted, roomID)
		}
	}

	if len(evicted) > 0 {
		s.logger.Info().
			Int("evicted", len(evicted)).
			Int("remaining", len(s.rooms)).
			Msg("Sweep removed expired rooms.")
	}

	return evicted
}

// Len reports the number of entries currently held, including rooms that
// are expired but not yet evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rooms)
}

func removeByNickname(users []user.User, nickname string) []user.User {
	out := users[:0]
	for _, u := range users {
		if u.Nickname != nickname {
			out = append(out, u)
		}
	}
	return out
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
