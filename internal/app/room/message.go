/*
Package room holds the in-memory room registry and the room data model.

This file defines the Message record and the validation applied to inbound
messages before they are appended and fanned out.
*/
package room

import (
	"time"

	"fadechat/internal/pkg/errs"
)

// MaxContentBytes bounds the byte length of message content.
const MaxContentBytes = 5000

// Kind classifies a message.
type Kind string

const (
	// KindText is a plain text message.
	KindText Kind = "text"

	// KindImage is a message referencing an uploaded image.
	KindImage Kind = "image"

	// KindVideo is a message referencing an uploaded video.
	KindVideo Kind = "video"

	// KindSystem is a relay-generated notice. It carries no sender identity
	// tied to a live user and is never accepted from clients.
	KindSystem Kind = "system"
)

// Message is one entry in a room's ordered message sequence. The wire form
// carries the kind under the "type" key.
type Message struct {
	// ID is unique for the lifetime of the relay process.
	ID string `json:"id"`

	// Nickname is the sender. Empty or synthetic for system messages.
	Nickname string `json:"nickname"`

	// Content is the text body, bounded by MaxContentBytes.
	Content string `json:"content"`

	// Timestamp is the server-observed arrival time, which is authoritative
	// for persisted order.
	Timestamp time.Time `json:"timestamp"`

	Kind Kind `json:"type"`

	// FileURL references an externally stored attachment. The control
	// channel never carries attachment bytes.
	FileURL string `json:"fileUrl,omitempty"`

	// FileName is the attachment's original name, for display.
	FileName string `json:"fileName,omitempty"`
}

// ValidateInbound checks a client-supplied message: the kind must be one a
// client may send, and the message needs either content within bounds or a
// file reference.
func ValidateInbound(m *Message) *errs.CustomError {
	switch m.Kind {
	case KindText, KindImage, KindVideo:
	default:
		return errs.NewError(errs.ErrMessageKindInvalid)
	}

	if m.Content == "" && m.FileURL == "" {
		return errs.NewError(errs.ErrMessageEmpty)
	}

	if len(m.Content) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	return nil
}
