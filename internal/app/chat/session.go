/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Session, the per-connection state machine
Unbound -> Joined -> Closed. A session is owned by the read loop of its
connection; only that loop and the disconnect path touch it.
*/
package chat

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/logx"
)

// SessionState is the lifecycle state of a connection.
type SessionState int

const (
	// StateUnbound is a fresh connection not yet bound to a room.
	StateUnbound SessionState = iota

	// StateJoined is a connection bound to a room (by joining or creating it).
	StateJoined

	// StateClosed is terminal: the session left its room or disconnected.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session holds the chat state of one live connection.
type Session struct {
	conn  Conn
	state SessionState

	// roomID and roomName identify the bound room while Joined.
	roomID   string
	roomName string

	// username is set by joinRoom; a session bound through createRoom has none.
	username string

	// limiter throttles inbound events of this connection.
	limiter *rate.Limiter

	logger zerolog.Logger
}

func newSession(conn Conn, limiter *rate.Limiter) *Session {
	return &Session{
		conn:    conn,
		state:   StateUnbound,
		limiter: limiter,
		logger:  logx.Logger().With().Str("connection_id", conn.ID()).Logger(),
	}
}

// ID returns the connection identifier of the session.
func (s *Session) ID() string { return s.conn.ID() }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// RoomID returns the bound room, or "" when the session is not Joined.
func (s *Session) RoomID() string { return s.roomID }

// Username returns the name the session joined with, if any.
func (s *Session) Username() string { return s.username }

func (s *Session) bind(roomID, roomName, username string) {
	s.state = StateJoined
	s.roomID = roomID
	s.roomName = roomName
	s.username = username
}

func (s *Session) unbind(next SessionState) {
	s.state = next
	s.roomID = ""
	s.roomName = ""
	s.username = ""
}
