/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the PresenceRegistry, which binds connections to a username
and a room and keeps the room's broadcast group in step with those bindings.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// PresenceRegistry tracks which connection belongs to which user and room.
type PresenceRegistry struct {
	presence  store.PresenceStore
	directory *Directory
	router    *Router

	// excludeJoiner drops the acting connection from the recipients list
	// broadcast after a join.
	excludeJoiner bool

	logger zerolog.Logger
}

// PresenceOption customizes a PresenceRegistry.
type PresenceOption func(*PresenceRegistry)

// WithJoinerExcluded makes join announcements list every occupant except the joiner.
func WithJoinerExcluded(exclude bool) PresenceOption {
	return func(p *PresenceRegistry) {
		p.excludeJoiner = exclude
	}
}

// NewPresenceRegistry constructs a PresenceRegistry.
func NewPresenceRegistry(presence store.PresenceStore, directory *Directory, router *Router, opts ...PresenceOption) *PresenceRegistry {
	p := &PresenceRegistry{
		presence:  presence,
		directory: directory,
		router:    router,
		logger:    logx.Component("presence"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Join binds connID to username in roomName and subscribes it to the room.
// Nothing is recorded when the room does not exist.
func (p *PresenceRegistry) Join(ctx context.Context, connID, username, roomName string) (store.Presence, store.Room, error) {
	room, err := p.directory.ResolveRoom(ctx, roomName)
	if err != nil {
		return store.Presence{}, store.Room{}, err
	}

	record := store.Presence{
		ConnectionID: connID,
		Username:     username,
		RoomID:       room.ID,
		RoomName:     room.Name,
		JoinedAt:     time.Now().UTC(),
	}

	if err := p.presence.InsertPresence(ctx, record); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return store.Presence{}, store.Room{}, errs.NewError(errs.ErrInvalidInput, "connection already joined a room")
		case errors.Is(err, store.ErrNotFound):
			return store.Presence{}, store.Room{}, errs.NewError(errs.ErrRoomNotFound)
		}
		return store.Presence{}, store.Room{}, storeError(err)
	}

	p.router.Subscribe(room.ID, connID)

	p.logger.Info().
		Str("connection_id", connID).
		Str("username", username).
		Str("room_id", room.ID).
		Msg("User joined room.")

	return record, room, nil
}

// Announce broadcasts the refreshed occupant list to the room, then a
// human-readable join or leave notice to everyone but the actor.
func (p *PresenceRegistry) Announce(ctx context.Context, actor store.Presence, joined bool) error {
	excluding := ""
	if joined && p.excludeJoiner {
		excluding = actor.ConnectionID
	}

	occupants, err := p.ListPresence(ctx, actor.RoomID, excluding)
	if err != nil {
		return err
	}

	recipients := lo.Map(occupants, func(o store.Presence, _ int) Recipient {
		return Recipient{Username: o.Username, ConnectionID: o.ConnectionID}
	})
	p.router.ToRoom(actor.RoomID, Event{Name: EventRecipients, Data: recipients}, "")

	verb := "left"
	if joined {
		verb = "joined"
	}
	p.router.ToRoom(actor.RoomID, notification(fmt.Sprintf("%s %s the room", actor.Username, verb)), actor.ConnectionID)

	return nil
}

// ListPresence returns the occupants of roomID in join order, optionally
// leaving out one connection (empty excluding keeps everyone).
func (p *PresenceRegistry) ListPresence(ctx context.Context, roomID, excluding string) ([]store.Presence, error) {
	occupants, err := p.presence.ListPresenceByRoom(ctx, roomID)
	if err != nil {
		return nil, storeError(err)
	}

	return lo.Filter(occupants, func(o store.Presence, _ int) bool {
		return excluding == "" || o.ConnectionID != excluding
	}), nil
}

// Leave removes the presence record of connID, unsubscribes it and announces
// the departure. It reports whether a record existed; calling it for an
// unjoined connection is a no-op. Only a failed removal is returned as an error.
func (p *PresenceRegistry) Leave(ctx context.Context, connID string) (store.Presence, bool, error) {
	record, ok, err := p.remove(ctx, connID)
	if err != nil || !ok {
		return store.Presence{}, false, err
	}

	p.logger.Info().
		Str("connection_id", connID).
		Str("username", record.Username).
		Str("room_id", record.RoomID).
		Msg("User left room.")

	// The record is gone either way; a failed announcement must not keep the session bound.
	if err := p.Announce(ctx, record, false); err != nil {
		p.logger.Error().Err(err).Str("room_id", record.RoomID).Msg("Failed to announce departure.")
	}
	return record, true, nil
}

// rollback undoes a Join whose follow-up steps failed; nothing is announced.
func (p *PresenceRegistry) rollback(ctx context.Context, connID string) {
	if _, _, err := p.remove(ctx, connID); err != nil {
		p.logger.Error().Err(err).Str("connection_id", connID).Msg("Failed to roll back partial join.")
	}
}

func (p *PresenceRegistry) remove(ctx context.Context, connID string) (store.Presence, bool, error) {
	record, err := p.presence.DeletePresence(ctx, connID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Presence{}, false, nil
	}
	if err != nil {
		return store.Presence{}, false, storeError(err)
	}

	p.router.Unsubscribe(record.RoomID, connID)
	return record, true, nil
}

// FindByUsername returns the earliest active presence record of username.
func (p *PresenceRegistry) FindByUsername(ctx context.Context, username string) (store.Presence, error) {
	record, err := p.presence.FindPresenceByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return store.Presence{}, errs.NewError(errs.ErrNotFound)
	}
	if err != nil {
		return store.Presence{}, storeError(err)
	}
	return record, nil
}

// FindByConnection returns the presence record bound to connID.
func (p *PresenceRegistry) FindByConnection(ctx context.Context, connID string) (store.Presence, error) {
	record, err := p.presence.FindPresenceByConnection(ctx, connID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Presence{}, errs.NewError(errs.ErrNotFound)
	}
	if err != nil {
		return store.Presence{}, storeError(err)
	}
	return record, nil
}
