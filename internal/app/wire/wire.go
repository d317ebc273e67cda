/*
Package wire defines the JSON envelope exchanged over the relay's
persistent connections.

The envelope is a tagged union on the "type" field. Both the server relay
and the client-side reconnection controller speak this format.
*/
package wire

import (
	"encoding/json"

	"fadechat/internal/app/room"
	"fadechat/internal/app/user"
)

// EventType tags an envelope.
type EventType string

const (
	// EventMessage carries a chat message (text, image or video).
	EventMessage EventType = "message"

	// EventUserJoined announces a participant entering a room.
	EventUserJoined EventType = "user_joined"

	// EventUserLeft announces a participant leaving a room.
	EventUserLeft EventType = "user_left"

	// EventRoomExpired tells every participant the room's TTL has elapsed.
	EventRoomExpired EventType = "room_expired"

	// EventError reports a per-connection error condition.
	EventError EventType = "error"
)

// Envelope is the wire record. Exactly the fields relevant to its Type are
// populated; the rest stay empty and are omitted from the JSON.
type Envelope struct {
	Type     EventType     `json:"type"`
	RoomID   string        `json:"roomId,omitempty"`
	Message  *room.Message `json:"message,omitempty"`
	User     *user.User    `json:"user,omitempty"`
	Nickname string        `json:"nickname,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// NewMessageEvent wraps a chat message for fanout.
func NewMessageEvent(roomID string, msg room.Message) Envelope {
	return Envelope{Type: EventMessage, RoomID: roomID, Message: &msg}
}

// NewUserJoinedEvent announces u entering roomID.
func NewUserJoinedEvent(roomID string, u user.User) Envelope {
	return Envelope{Type: EventUserJoined, RoomID: roomID, User: &u}
}

// NewUserLeftEvent announces nickname leaving roomID.
func NewUserLeftEvent(roomID, nickname string) Envelope {
	return Envelope{Type: EventUserLeft, RoomID: roomID, Nickname: nickname}
}

// NewRoomExpiredEvent signals that roomID reached its TTL.
func NewRoomExpiredEvent(roomID string) Envelope {
	return Envelope{Type: EventRoomExpired, RoomID: roomID}
}

// NewErrorEvent reports an error condition to a single connection.
func NewErrorEvent(msg string) Envelope {
	return Envelope{Type: EventError, Error: msg}
}

// Encode marshals the envelope to its JSON wire form.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a wire frame into an envelope.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}
