/*
Package storetest holds the behavioural test suite every store.Store driver must pass.
*/
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/randx"
)

// Factory returns an empty store for one sub-test.
type Factory func(t *testing.T) store.Store

// Run exercises a store driver against the gateway contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("RoomNameIsUnique", func(t *testing.T) { testRoomNameIsUnique(t, newStore(t)) })
	t.Run("FindRoom", func(t *testing.T) { testFindRoom(t, newStore(t)) })
	t.Run("ListRooms", func(t *testing.T) { testListRooms(t, newStore(t)) })
	t.Run("PresenceLifecycle", func(t *testing.T) { testPresenceLifecycle(t, newStore(t)) })
	t.Run("PresenceOnePerConnection", func(t *testing.T) { testPresenceOnePerConnection(t, newStore(t)) })
	t.Run("ClearPresence", func(t *testing.T) { testClearPresence(t, newStore(t)) })
	t.Run("MessagesNewestFirst", func(t *testing.T) { testMessagesNewestFirst(t, newStore(t)) })
	t.Run("MessageRequiresRoom", func(t *testing.T) { testMessageRequiresRoom(t, newStore(t)) })
}

// base is a fixed instant; records get increasing offsets so ordering never depends on clock resolution.
var base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newRoom(name string, offset int) store.Room {
	return store.Room{
		ID:          randx.RoomID(),
		Name:        name,
		Description: "about " + name,
		CreatedAt:   base.Add(time.Duration(offset) * time.Second),
	}
}

func newPresence(room store.Room, username string, offset int) store.Presence {
	return store.Presence{
		ConnectionID: randx.ConnectionID(),
		Username:     username,
		RoomID:       room.ID,
		RoomName:     room.Name,
		JoinedAt:     base.Add(time.Duration(offset) * time.Second),
	}
}

func testRoomNameIsUnique(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.InsertRoom(ctx, newRoom("general", 0)))
	err := s.InsertRoom(ctx, newRoom("general", 1))
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func testFindRoom(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := newRoom("general", 0)
	require.NoError(t, s.InsertRoom(ctx, room))

	byName, err := s.FindRoomByName(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, room.ID, byName.ID)
	assert.Equal(t, room.Description, byName.Description)
	assert.True(t, room.CreatedAt.Equal(byName.CreatedAt))

	byID, err := s.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "general", byID.Name)

	_, err = s.FindRoomByName(ctx, "random")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindRoomByID(ctx, randx.RoomID())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testListRooms(t *testing.T, s store.Store) {
	ctx := context.Background()

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	for i, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, s.InsertRoom(ctx, newRoom(name, i)))
	}

	rooms, err = s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "alpha", rooms[0].Name)
	assert.Equal(t, "gamma", rooms[2].Name)
}

func testPresenceLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := newRoom("general", 0)
	other := newRoom("random", 1)
	require.NoError(t, s.InsertRoom(ctx, room))
	require.NoError(t, s.InsertRoom(ctx, other))

	alice := newPresence(room, "alice", 0)
	bob := newPresence(room, "bob", 1)
	carol := newPresence(other, "carol", 2)
	for _, p := range []store.Presence{alice, bob, carol} {
		require.NoError(t, s.InsertPresence(ctx, p))
	}

	occupants, err := s.ListPresenceByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, occupants, 2)
	assert.Equal(t, "alice", occupants[0].Username)
	assert.Equal(t, "bob", occupants[1].Username)

	found, err := s.FindPresenceByConnection(ctx, bob.ConnectionID)
	require.NoError(t, err)
	assert.Equal(t, "bob", found.Username)
	assert.Equal(t, room.Name, found.RoomName)

	found, err = s.FindPresenceByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, carol.ConnectionID, found.ConnectionID)

	removed, err := s.DeletePresence(ctx, alice.ConnectionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", removed.Username)

	_, err = s.DeletePresence(ctx, alice.ConnectionID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindPresenceByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	occupants, err = s.ListPresenceByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, "bob", occupants[0].Username)
}

func testPresenceOnePerConnection(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := newRoom("general", 0)
	require.NoError(t, s.InsertRoom(ctx, room))

	p := newPresence(room, "alice", 0)
	require.NoError(t, s.InsertPresence(ctx, p))

	again := p
	again.Username = "alice2"
	require.ErrorIs(t, s.InsertPresence(ctx, again), store.ErrDuplicate)
}

func testClearPresence(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := newRoom("general", 0)
	require.NoError(t, s.InsertRoom(ctx, room))
	require.NoError(t, s.InsertPresence(ctx, newPresence(room, "alice", 0)))
	require.NoError(t, s.InsertPresence(ctx, newPresence(room, "bob", 1)))

	require.NoError(t, s.ClearPresence(ctx))

	occupants, err := s.ListPresenceByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, occupants)
}

func testMessagesNewestFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	room := newRoom("general", 0)
	other := newRoom("random", 1)
	require.NoError(t, s.InsertRoom(ctx, room))
	require.NoError(t, s.InsertRoom(ctx, other))

	for i := range 15 {
		require.NoError(t, s.InsertMessage(ctx, store.Message{
			ID:        randx.MessageID(),
			RoomID:    room.ID,
			Sender:    "alice",
			Body:      fmt.Sprintf("msg-%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.InsertMessage(ctx, store.Message{
		ID: randx.MessageID(), RoomID: other.ID, Sender: "bob", Body: "elsewhere", CreatedAt: base,
	}))

	recent, err := s.ListRecentMessages(ctx, room.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "msg-14", recent[0].Body)
	assert.Equal(t, "msg-05", recent[9].Body)

	all, err := s.ListRecentMessages(ctx, other.ID, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "elsewhere", all[0].Body)

	none, err := s.ListRecentMessages(ctx, randx.RoomID(), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testMessageRequiresRoom(t *testing.T, s store.Store) {
	err := s.InsertMessage(context.Background(), store.Message{
		ID:        randx.MessageID(),
		RoomID:    randx.RoomID(),
		Sender:    "alice",
		Body:      "hi",
		CreatedAt: base,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}
