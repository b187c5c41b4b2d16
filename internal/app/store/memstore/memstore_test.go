package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/store"
	"roomchat/internal/app/store/storetest"
	"roomchat/internal/pkg/randx"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestStore_ConcurrentCreateSameName(t *testing.T) {
	s := New()
	ctx := context.Background()

	const creators = 32
	var wg sync.WaitGroup
	results := make(chan error, creators)

	for range creators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.InsertRoom(ctx, store.Room{ID: randx.RoomID(), Name: "general", CreatedAt: time.Now()})
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch err {
		case nil:
			ok++
		case store.ErrDuplicate:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, creators-1, dup)
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.InsertRoom(ctx, store.Room{ID: randx.RoomID(), Name: "general"})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.ListPresenceByRoom(ctx, "any")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_ListRecentMessagesReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := store.Room{ID: randx.RoomID(), Name: "general", CreatedAt: time.Now()}
	require.NoError(t, s.InsertRoom(ctx, room))

	for i := range 3 {
		require.NoError(t, s.InsertMessage(ctx, store.Message{
			ID: randx.MessageID(), RoomID: room.ID, Sender: "alice", Body: fmt.Sprint(i), CreatedAt: time.Now(),
		}))
	}

	first, err := s.ListRecentMessages(ctx, room.ID, 3)
	require.NoError(t, err)
	first[0].Body = "tampered"

	second, err := s.ListRecentMessages(ctx, room.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "2", second[0].Body)
	assert.Equal(t, "0", second[2].Body)
}
