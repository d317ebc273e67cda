/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file defines the Registry, which tracks at most one live connection
per (room, nickname) pair and arbitrates replacement and reconnect
throttling.
*/
package relay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fadechat/internal/pkg/logx"
)

const (
	// MinConnectInterval is the minimum spacing between admits for the same
	// (room, nickname). Anything faster is rejected.
	MinConnectInterval = 1000 * time.Millisecond

	// ReplaceGraceWindow delays registration of a replacing connection so
	// the displaced connection's close cleanup cannot evict the new
	// mapping. Its release is identity-checked against the old handle,
	// which is still the registered one until the window elapses.
	ReplaceGraceWindow = 200 * time.Millisecond
)

// Decision is the outcome of an admit request.
type Decision int

const (
	// Accepted means the handle was registered immediately.
	Accepted Decision = iota

	// Replaced means an older connection held the identity and has been
	// displaced; the new handle registers after the grace window.
	Replaced

	// Rejected means the admit arrived inside the throttle window. The
	// caller must close the transport with ReasonTooFrequent.
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Replaced:
		return "replaced"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// connKey identifies one connection slot.
type connKey struct {
	roomID   string
	nickname string
}

// Registry tracks live connections by (room, nickname).
type Registry struct {
	mu       sync.Mutex
	sessions map[connKey]Handle

	// lastAdmit stamps the last successful admit check per key.
	lastAdmit map[connKey]time.Time

	// now and schedule are replaceable in tests so the throttle and the
	// grace window run without wall-clock waits.
	now      func() time.Time
	schedule func(d time.Duration, fn func())

	logger zerolog.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[connKey]Handle),
		lastAdmit: make(map[connKey]time.Time),
		now:       time.Now,
		schedule:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		logger:    logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Admit decides the fate of a new connection h for (roomID, nickname).
//
// Admits inside MinConnectInterval of the previous one for the same key are
// Rejected; the throttle stamp is only refreshed when the check passes, so
// a rejected burst does not extend its own penalty. When an older handle
// holds the key it is displaced and h registers after ReplaceGraceWindow.
func (r *Registry) Admit(roomID, nickname string, h Handle) Decision {
	k := connKey{roomID: roomID, nickname: nickname}

	r.mu.Lock()

	now := r.now()
	if last, ok := r.lastAdmit[k]; ok && now.Sub(last) < MinConnectInterval {
		r.mu.Unlock()

		r.logger.Warn().
			Str("room_id", roomID).
			Str("nickname", nickname).
			Msg("Admit rejected: reconnecting too frequently.")
		return Rejected
	}
	r.lastAdmit[k] = now

	old, exists := r.sessions[k]
	if exists {
		r.schedule(ReplaceGraceWindow, func() {
			r.mu.Lock()
			r.sessions[k] = h
			r.mu.Unlock()
		})
		r.mu.Unlock()

		// Displace outside the lock: closing the old handle triggers its
		// cleanup, which re-enters the registry via Release.
		old.Displace()

		r.logger.Info().
			Str("room_id", roomID).
			Str("nickname", nickname).
			Msg("Existing connection displaced by new one.")
		return Replaced
	}

	r.sessions[k] = h
	r.mu.Unlock()
	return Accepted
}

// Release removes the mapping for (roomID, nickname) only when h is the
// currently registered handle, so a stale close callback cannot evict a
// handle that has since replaced it. A matched release also clears the
// throttle stamp: a clean disconnect should not penalize the next join.
func (r *Registry) Release(roomID, nickname string, h Handle) {
	k := connKey{roomID: roomID, nickname: nickname}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[k]; ok && cur == h {
		delete(r.sessions, k)
		delete(r.lastAdmit, k)
	}
}

// Lookup returns the registered handle for (roomID, nickname), or nil.
func (r *Registry) Lookup(roomID, nickname string) Handle {
	k := connKey{roomID: roomID, nickname: nickname}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[k]
}

// Connections returns a snapshot of every handle registered in roomID.
// Fanout works off this snapshot; a connection admitted afterwards may miss
// the event, which is acceptable.
func (r *Registry) Connections(roomID string) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var handles []Handle
	for k, h := range r.sessions {
		if k.roomID == roomID {
			handles = append(handles, h)
		}
	}
	return handles
}
