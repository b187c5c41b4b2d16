/*
Package memstore is an in-process implementation of store.Store.

Each table has its own lock so room, presence and message traffic do not
contend with each other. Every operation is individually atomic; in
particular InsertRoom is a compare-and-insert on the room name.
*/
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"roomchat/internal/app/store"
)

// Store keeps all records in memory. The zero value is not usable; call New.
type Store struct {
	roomsMu sync.RWMutex
	rooms   map[string]entry[store.Room] // by ID
	names   map[string]string            // name -> ID

	presenceMu sync.RWMutex
	presence   map[string]entry[store.Presence] // by connection ID

	// seq orders rooms and presence records by insertion.
	seq atomic.Uint64

	messagesMu sync.RWMutex
	messages   map[string][]store.Message // by room ID, append order
}

var _ store.Store = (*Store)(nil)

type entry[T any] struct {
	value T
	seq   uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		rooms:    make(map[string]entry[store.Room]),
		names:    make(map[string]string),
		presence: make(map[string]entry[store.Presence]),
		messages: make(map[string][]store.Message),
	}
}

func (s *Store) InsertRoom(ctx context.Context, room store.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	if _, taken := s.names[room.Name]; taken {
		return store.ErrDuplicate
	}
	if _, taken := s.rooms[room.ID]; taken {
		return store.ErrDuplicate
	}

	s.rooms[room.ID] = entry[store.Room]{value: room, seq: s.seq.Add(1)}
	s.names[room.Name] = room.ID
	return nil
}

func (s *Store) FindRoomByName(ctx context.Context, name string) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}

	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()

	id, ok := s.names[name]
	if !ok {
		return store.Room{}, store.ErrNotFound
	}
	return s.rooms[id].value, nil
}

func (s *Store) FindRoomByID(ctx context.Context, id string) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}

	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return store.Room{}, store.ErrNotFound
	}
	return room.value, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]store.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.roomsMu.RLock()
	rooms := inOrder(lo.Values(s.rooms))
	s.roomsMu.RUnlock()

	return rooms, nil
}

func (s *Store) InsertPresence(ctx context.Context, presence store.Presence) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	if _, exists := s.presence[presence.ConnectionID]; exists {
		return store.ErrDuplicate
	}
	s.presence[presence.ConnectionID] = entry[store.Presence]{value: presence, seq: s.seq.Add(1)}
	return nil
}

func (s *Store) FindPresenceByConnection(ctx context.Context, connectionID string) (store.Presence, error) {
	if err := ctx.Err(); err != nil {
		return store.Presence{}, err
	}

	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()

	p, ok := s.presence[connectionID]
	if !ok {
		return store.Presence{}, store.ErrNotFound
	}
	return p.value, nil
}

func (s *Store) FindPresenceByUsername(ctx context.Context, username string) (store.Presence, error) {
	if err := ctx.Err(); err != nil {
		return store.Presence{}, err
	}

	s.presenceMu.RLock()
	matches := inOrder(lo.Filter(lo.Values(s.presence), func(p entry[store.Presence], _ int) bool {
		return p.value.Username == username
	}))
	s.presenceMu.RUnlock()

	if len(matches) == 0 {
		return store.Presence{}, store.ErrNotFound
	}
	return matches[0], nil
}

func (s *Store) ListPresenceByRoom(ctx context.Context, roomID string) ([]store.Presence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.presenceMu.RLock()
	occupants := inOrder(lo.Filter(lo.Values(s.presence), func(p entry[store.Presence], _ int) bool {
		return p.value.RoomID == roomID
	}))
	s.presenceMu.RUnlock()

	return occupants, nil
}

func (s *Store) DeletePresence(ctx context.Context, connectionID string) (store.Presence, error) {
	if err := ctx.Err(); err != nil {
		return store.Presence{}, err
	}

	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	p, ok := s.presence[connectionID]
	if !ok {
		return store.Presence{}, store.ErrNotFound
	}
	delete(s.presence, connectionID)
	return p.value, nil
}

func (s *Store) ClearPresence(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.presenceMu.Lock()
	clear(s.presence)
	s.presenceMu.Unlock()
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, msg store.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.roomsMu.RLock()
	_, ok := s.rooms[msg.RoomID]
	s.roomsMu.RUnlock()
	if !ok {
		return store.ErrNotFound
	}

	s.messagesMu.Lock()
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], msg)
	s.messagesMu.Unlock()
	return nil
}

func (s *Store) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []store.Message{}, nil
	}

	s.messagesMu.RLock()
	log := s.messages[roomID]
	start := max(len(log)-limit, 0)
	recent := make([]store.Message, len(log)-start)
	copy(recent, log[start:])
	s.messagesMu.RUnlock()

	slices.Reverse(recent)
	return recent, nil
}

func (s *Store) Close() error {
	return nil
}

func inOrder[T any](entries []entry[T]) []T {
	slices.SortFunc(entries, func(a, b entry[T]) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return lo.Map(entries, func(e entry[T], _ int) T {
		return e.value
	})
}
