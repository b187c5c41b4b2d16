/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Channel, the per-room message log. Appended messages
are broadcast to the whole room, sender included; the sender sees its own
message through that broadcast rather than a local echo.
*/
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// Channel appends and replays room messages.
type Channel struct {
	messages store.MessageStore
	router   *Router
	logger   zerolog.Logger
}

// NewChannel constructs a Channel over the given message store.
func NewChannel(messages store.MessageStore, router *Router) *Channel {
	return &Channel{
		messages: messages,
		router:   router,
		logger:   logx.Component("channel"),
	}
}

// Append stores a message in roomID and broadcasts it to every subscriber of the room.
func (c *Channel) Append(ctx context.Context, roomID, sender, body string) (store.Message, error) {
	if roomID == "" {
		return store.Message{}, errs.NewError(errs.ErrInvalidInput, "room ID is required")
	}
	if strings.TrimSpace(body) == "" {
		return store.Message{}, errs.NewError(errs.ErrInvalidInput, "message is required")
	}

	msg := store.Message{
		ID:        randx.MessageID(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.messages.InsertMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Message{}, errs.NewError(errs.ErrRoomNotFound)
		}
		return store.Message{}, storeError(err)
	}

	c.logger.Debug().
		Str("room_id", roomID).
		Str("message_id", msg.ID).
		Str("sender", sender).
		Msg("Message appended.")

	c.router.ToRoom(roomID, Event{Name: EventNewMessage, Data: msg}, "")

	return msg, nil
}

// RecentHistory returns at most limit of the latest messages of roomID, oldest first.
func (c *Channel) RecentHistory(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	newestFirst, err := c.messages.ListRecentMessages(ctx, roomID, limit)
	if err != nil {
		return nil, storeError(err)
	}

	history := slices.Clone(newestFirst)
	slices.Reverse(history)
	if history == nil {
		history = []store.Message{}
	}
	return history, nil
}
