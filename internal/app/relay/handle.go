/*
Package relay implements the real-time core: connection identity and
replacement, message fan-out, and the per-connection session loop.

This file defines the Handle abstraction through which the registry and the
broadcaster see a live connection. The close reasons the relay puts on the
wire live in the wire package; they are aliased here for the package's own
use.
*/
package relay

import "fadechat/internal/app/wire"

const (
	// ReasonReplaced accompanies a normal closure when a newer connection
	// for the same (room, nickname) supersedes this one.
	ReasonReplaced = wire.CloseReasonReplaced

	// ReasonTooFrequent accompanies a normal closure when admits for the
	// same identity arrive inside the throttle window.
	ReasonTooFrequent = wire.CloseReasonTooFrequent

	// ReasonMissingParams accompanies a policy-violation closure when the
	// connect request lacks roomId or nickname.
	ReasonMissingParams = wire.CloseReasonMissingParams
)

// Handle is the registry's and broadcaster's view of one live connection.
type Handle interface {
	// Deliver queues an outbound frame. Delivery is best effort: a full
	// queue or a closed transport returns an error and the frame is lost.
	Deliver(frame []byte) error

	// Displace closes the connection because a newer one took its identity.
	// A displaced session suppresses its own leave announcement and leaves
	// the room membership to its successor.
	Displace()
}
