package state

import (
	"strings"

	"github.com/google/uuid"
)

// NewStrokeID returns a fresh stroke identifier. Version 7 UUIDs carry a
// millisecond timestamp followed by random bits.
func NewStrokeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewUserID returns an identity for a relay connection.
func NewUserID() string {
	return uuid.NewString()
}

// NewRoomCode returns a short upper-case room code for share links.
func NewRoomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
