/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the wire vocabulary exchanged with clients: every frame is a
JSON envelope {"event": "<name>", "data": {...}} in both directions. Inbound
payloads carry validator tags; outbound payloads are plain structs.
*/
package chat

import (
	"encoding/json"
	"time"

	"roomchat/internal/app/store"
)

// EventName identifies the kind of an inbound or outbound event.
type EventName string

// Inbound events (client -> server).
const (
	EventCreateRoom         EventName = "createRoom"
	EventJoinRoom           EventName = "joinRoom"
	EventSendMessage        EventName = "sendMessage"
	EventSendPrivateMessage EventName = "sendPrivateMessage"
	EventTyping             EventName = "typing"
	EventLeaveRoom          EventName = "leaveRoom"
)

// Outbound events (server -> client).
const (
	EventRoomCreated    EventName = "roomCreated"
	EventJoinedRoom     EventName = "joinedRoom"
	EventLeftRoom       EventName = "leftRoom"
	EventRecipients     EventName = "recipients"
	EventNotification   EventName = "notification"
	EventNewMessage     EventName = "newMessage"
	EventPrivateMessage EventName = "privateMessage"
	EventError          EventName = "error"
)

// Event is one outbound frame.
type Event struct {
	Name EventName `json:"event"`
	Data any       `json:"data,omitempty"`
}

// inboundEvent is the raw decoded envelope of a client frame.
type inboundEvent struct {
	Name EventName       `json:"event"`
	Data json.RawMessage `json:"data"`
}

// CreateRoomPayload is the data of a createRoom event.
type CreateRoomPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// JoinRoomPayload is the data of a joinRoom event.
type JoinRoomPayload struct {
	Username string `json:"username" validate:"required,max=50"`
	Name     string `json:"name" validate:"required,max=100"`
}

// SendMessagePayload is the data of a sendMessage event.
type SendMessagePayload struct {
	RoomID  string `json:"roomId" validate:"required"`
	Sender  string `json:"sender" validate:"max=50"`
	Message string `json:"message" validate:"required"`
}

// SendPrivateMessagePayload is the data of a sendPrivateMessage event.
type SendPrivateMessagePayload struct {
	RecipientUsername string `json:"recipientUsername" validate:"required,max=50"`
	Message           string `json:"message" validate:"required"`
}

// TypingPayload is the data of an inbound typing event.
type TypingPayload struct {
	RoomID string `json:"roomId" validate:"required"`
	Sender string `json:"sender" validate:"max=50"`
}

// RoomPayload answers createRoom and leaveRoom.
type RoomPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

// JoinedRoomPayload answers a successful joinRoom with the recent history.
type JoinedRoomPayload struct {
	RoomID   string          `json:"roomId"`
	RoomName string          `json:"roomName"`
	Messages []store.Message `json:"messages"`
}

// Recipient is one occupant entry of a recipients event.
type Recipient struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
}

// NotificationPayload carries a human-readable room or system notice.
type NotificationPayload struct {
	Message string `json:"message"`
}

// PrivateMessagePayload is delivered to both ends of a private message.
type PrivateMessagePayload struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// TypingNotice is the outbound typing indicator.
type TypingNotice struct {
	Sender string `json:"sender"`
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func notification(text string) Event {
	return Event{Name: EventNotification, Data: NotificationPayload{Message: text}}
}
