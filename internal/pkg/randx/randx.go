/*
Package randx generates the identifiers used by the chat system.

Rooms, messages and connections are all identified by random UUID v4 strings.
*/
package randx

import (
	"github.com/google/uuid"
)

// RoomID generates the identity of a newly created room.
func RoomID() string {
	return uuid.NewString()
}

// MessageID generates the identity of a newly appended message.
func MessageID() string {
	return uuid.NewString()
}

// ConnectionID generates the opaque identifier of a live connection.
func ConnectionID() string {
	return uuid.NewString()
}

// IsValidID reports whether id is a canonical UUID string as produced by this package.
func IsValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.String() == id
}
