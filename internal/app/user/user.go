/*
Package user defines the identity of a room participant.

A user exists only inside a room: the nickname is the unique key within
that room and carries no identity anywhere else.
*/
package user

import "time"

// User is one participant in a room.
type User struct {
	// Nickname is the display name and the unique key within the room.
	Nickname string `json:"nickname"`

	// JoinedAt is when this user (re-)entered the room.
	JoinedAt time.Time `json:"joinedAt"`
}
