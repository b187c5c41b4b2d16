//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_store.go -package=mocks roomchat/internal/app/store Store

/*
Package store defines the persistence gateway used by the chat core.

The core only needs simple create/find/delete operations on rooms, presence
records and messages. Concrete drivers live in the memstore, pgstore and
sqlstore sub-packages; they all report missing records with ErrNotFound and
uniqueness violations with ErrDuplicate.
*/
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("store: duplicate record")
)

// Room is a named chat room.
type Room struct {
	ID          string    `json:"roomId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Presence binds one live connection to a username and the room it joined.
type Presence struct {
	ConnectionID string    `json:"connectionId"`
	Username     string    `json:"username"`
	RoomID       string    `json:"roomId"`
	RoomName     string    `json:"roomName"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Message is an immutable chat message posted to a room.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomStore persists rooms. Room names are unique.
type RoomStore interface {
	// InsertRoom stores a new room, returning ErrDuplicate when the name is taken.
	InsertRoom(ctx context.Context, room Room) error
	FindRoomByName(ctx context.Context, name string) (Room, error)
	FindRoomByID(ctx context.Context, id string) (Room, error)
	// ListRooms returns every room ordered by creation time.
	ListRooms(ctx context.Context) ([]Room, error)
}

// PresenceStore persists presence records. A connection has at most one record.
type PresenceStore interface {
	// InsertPresence returns ErrDuplicate when the connection already has a record.
	InsertPresence(ctx context.Context, presence Presence) error
	FindPresenceByConnection(ctx context.Context, connectionID string) (Presence, error)
	// FindPresenceByUsername returns the earliest active record for username.
	FindPresenceByUsername(ctx context.Context, username string) (Presence, error)
	// ListPresenceByRoom returns the occupants of a room ordered by join time.
	ListPresenceByRoom(ctx context.Context, roomID string) ([]Presence, error)
	// DeletePresence removes and returns the record of a connection, or ErrNotFound.
	DeletePresence(ctx context.Context, connectionID string) (Presence, error)
	// ClearPresence removes every record; used at startup to drop stale sessions.
	ClearPresence(ctx context.Context) error
}

// MessageStore persists messages.
type MessageStore interface {
	// InsertMessage returns ErrNotFound when the referenced room does not exist.
	InsertMessage(ctx context.Context, msg Message) error
	// ListRecentMessages returns at most limit messages of a room, newest first.
	ListRecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}

// Store is the full persistence gateway.
type Store interface {
	RoomStore
	PresenceStore
	MessageStore

	Close() error
}
