/*
Package wire defines the JSON envelope exchanged over the relay's
persistent connections.

This file holds the close reasons that are part of the wire contract.
Clients key their reconnect behavior off these exact strings together with
the WebSocket close code.
*/
package wire

const (
	// CloseReasonReplaced accompanies a normal closure when a newer
	// connection for the same (room, nickname) supersedes this one.
	CloseReasonReplaced = "Replaced by new connection"

	// CloseReasonTooFrequent accompanies a normal closure when admits for
	// the same identity arrive inside the throttle window.
	CloseReasonTooFrequent = "Too frequent reconnections"

	// CloseReasonMissingParams accompanies a policy-violation closure when
	// the connect request lacks roomId or nickname.
	CloseReasonMissingParams = "Missing roomId or nickname"
)
