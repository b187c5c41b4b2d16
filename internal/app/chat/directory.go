/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Directory, which resolves room names to rooms and
creates new rooms. Name uniqueness is ultimately enforced by the store; the
pre-insert lookup only gives the common case a cheap answer.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// Directory creates and resolves rooms.
type Directory struct {
	rooms  store.RoomStore
	router *Router
	logger zerolog.Logger
}

// NewDirectory constructs a Directory over the given room store.
func NewDirectory(rooms store.RoomStore, router *Router) *Directory {
	return &Directory{
		rooms:  rooms,
		router: router,
		logger: logx.Component("directory"),
	}
}

// CreateRoom persists a new room and notifies every live connection except the creator.
// creatorConnID may be empty when the room is created outside a WebSocket session.
func (d *Directory) CreateRoom(ctx context.Context, creatorConnID, name, description string) (store.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Room{}, errs.NewError(errs.ErrInvalidInput, "room name is required")
	}

	if _, err := d.rooms.FindRoomByName(ctx, name); err == nil {
		return store.Room{}, errs.NewError(errs.ErrDuplicateRoom)
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Room{}, storeError(err)
	}

	room := store.Room{
		ID:          randx.RoomID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := d.rooms.InsertRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race against a concurrent creator of the same name.
			return store.Room{}, errs.NewError(errs.ErrDuplicateRoom)
		}
		return store.Room{}, storeError(err)
	}

	d.logger.Info().
		Str("room_id", room.ID).
		Str("room_name", room.Name).
		Str("creator", creatorConnID).
		Msg("Room created.")

	d.router.ToAll(notification(fmt.Sprintf("New room created: %s", room.Name)), creatorConnID)

	return room, nil
}

// ResolveRoom looks up a room by name.
func (d *Directory) ResolveRoom(ctx context.Context, name string) (store.Room, error) {
	room, err := d.rooms.FindRoomByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, store.ErrNotFound) {
		return store.Room{}, errs.NewError(errs.ErrRoomNotFound)
	}
	if err != nil {
		return store.Room{}, storeError(err)
	}
	return room, nil
}

// FindRoom looks up a room by its ID.
func (d *Directory) FindRoom(ctx context.Context, roomID string) (store.Room, error) {
	room, err := d.rooms.FindRoomByID(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Room{}, errs.NewError(errs.ErrRoomNotFound)
	}
	if err != nil {
		return store.Room{}, storeError(err)
	}
	return room, nil
}

// ListRooms returns every room in creation order.
func (d *Directory) ListRooms(ctx context.Context) ([]store.Room, error) {
	rooms, err := d.rooms.ListRooms(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if rooms == nil {
		rooms = []store.Room{}
	}
	return rooms, nil
}

// storeError classifies an unexpected store failure.
// Context expiry is reported as a timeout, anything else as storage unavailability.
func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrOperationTimeout, err)
	}
	return errs.Wrap(errs.ErrStorageUnavailable, err)
}
