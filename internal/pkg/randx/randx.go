/*
Package randx generates the relay's random identifiers.

Room IDs are fixed-length Base62 strings from crypto/rand; message IDs and
attachment file IDs are UUID v4.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the alphabet used for room IDs (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 alphabet.
	Base62Len = int64(len(Base62Chars))

	// RoomIDLength is the length of generated room IDs.
	RoomIDLength = 8

	// MaxRoomIDLength bounds client-supplied room IDs.
	MaxRoomIDLength = 64
)

// RoomID generates a Base62 room identifier of RoomIDLength characters.
func RoomID() (string, error) {
	result := make([]byte, RoomIDLength)

	for i := range RoomIDLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// MessageID generates a UUID v4 string for a message.
func MessageID() string {
	return uuid.New().String()
}

// FileID generates a UUID v4 string for an attachment object key.
func FileID() string {
	return uuid.New().String()
}

// IsValidRoomID reports whether a client-supplied room ID is acceptable:
// non-empty, bounded in length, and free of path separators so it can be
// embedded in attachment keys and URLs.
func IsValidRoomID(id string) bool {
	if id == "" || len(id) > MaxRoomIDLength {
		return false
	}

	return !strings.ContainsAny(id, "/\\ ")
}
