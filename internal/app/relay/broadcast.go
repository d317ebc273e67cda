/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file defines the Broadcaster. Delivery audiences are driven by an
explicit per-event-kind policy table, so adding an event kind means adding
one table row rather than new control flow.
*/
package relay

import (
	"github.com/rs/zerolog"

	"fadechat/internal/app/wire"
	"fadechat/internal/pkg/logx"
)

// Audience selects which connections in a room receive an event.
type Audience int

const (
	// AudienceRoom delivers to every open connection in the room,
	// including the one that triggered the event.
	AudienceRoom Audience = iota

	// AudienceOthers delivers to every connection except the actor.
	AudienceOthers

	// AudienceActor delivers only to the actor.
	AudienceActor
)

// deliveryPolicy maps each event kind to its audience. Messages echo back
// to the sender, whose UI treats the echo as its send confirmation; the
// joining connection instead receives a direct one-time join ack outside
// this table.
var deliveryPolicy = map[wire.EventType]Audience{
	wire.EventMessage:     AudienceRoom,
	wire.EventUserJoined:  AudienceOthers,
	wire.EventUserLeft:    AudienceRoom,
	wire.EventRoomExpired: AudienceRoom,
	wire.EventError:       AudienceActor,
}

// Broadcaster fans events out over the registry's connection snapshots.
type Broadcaster struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewBroadcaster builds a broadcaster over registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logx.Logger().With().Str("component", "Broadcaster").Logger(),
	}
}

// Fanout delivers env to the connections of roomID per the policy table.
// actor is the connection that triggered the event; it may be nil for
// events with no originator, such as expiry sweeps. Delivery is best
// effort: a dead handle is skipped without aborting the rest. Returns the
// number of successful deliveries.
func (b *Broadcaster) Fanout(roomID string, actor Handle, env wire.Envelope) int {
	audience, ok := deliveryPolicy[env.Type]
	if !ok {
		b.logger.Warn().
			Str("event_type", string(env.Type)).
			Msg("Fanout requested for event kind with no delivery policy.")
		return 0
	}

	frame, err := env.Encode()
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("event_type", string(env.Type)).
			Msg("Error marshaling event for fanout.")
		return 0
	}

	if audience == AudienceActor {
		if actor == nil || actor.Deliver(frame) != nil {
			return 0
		}
		return 1
	}

	delivered := 0
	for _, h := range b.registry.Connections(roomID) {
		if audience == AudienceOthers && h == actor {
			continue
		}

		if err := h.Deliver(frame); err != nil {
			b.logger.Warn().
				Str("room_id", roomID).
				Str("event_type", string(env.Type)).
				Msg("Skipping undeliverable connection during fanout.")
			continue
		}
		delivered++
	}

	return delivered
}
