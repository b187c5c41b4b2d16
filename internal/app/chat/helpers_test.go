package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomchat/internal/app/store"
	"roomchat/internal/app/store/memstore"
	"roomchat/internal/configs"
)

const (
	eventWait   = time.Second
	silenceWait = 100 * time.Millisecond
)

// fakeConn records every event queued for it.
type fakeConn struct {
	id     string
	events chan Event
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, events: make(chan Event, 256)}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(ev Event) error {
	select {
	case f.events <- ev:
		return nil
	default:
		return errors.New("fake conn full")
	}
}

// next returns the next event of c, failing the test after eventWait.
func next(t *testing.T, c *fakeConn) Event {
	t.Helper()

	select {
	case ev := <-c.events:
		return ev
	case <-time.After(eventWait):
		t.Fatalf("connection %s received no event within %s", c.id, eventWait)
		return Event{}
	}
}

// expect returns the next event of c and checks its name.
func expect(t *testing.T, c *fakeConn, name EventName) Event {
	t.Helper()

	ev := next(t, c)
	require.Equal(t, name, ev.Name, "unexpected event for %s: %+v", c.id, ev.Data)
	return ev
}

// expectError returns the code of the next event of c, which must be an error.
func expectError(t *testing.T, c *fakeConn) int {
	t.Helper()

	ev := expect(t, c, EventError)
	payload, ok := ev.Data.(ErrorPayload)
	require.True(t, ok)
	return payload.Code
}

// expectSilence checks that c receives nothing for silenceWait.
func expectSilence(t *testing.T, c *fakeConn) {
	t.Helper()

	select {
	case ev := <-c.events:
		t.Fatalf("connection %s unexpectedly received %s: %+v", c.id, ev.Name, ev.Data)
	case <-time.After(silenceWait):
	}
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		HistoryLimit:     10,
		OperationTimeout: 2 * time.Second,
		MaxMessageBytes:  5000,
		EventRate:        0,
		EventBurst:       1,
	}
}

// harness wires the chat services over one store.
type harness struct {
	store     store.Store
	router    *Router
	directory *Directory
	presence  *PresenceRegistry
	channel   *Channel
	manager   *Manager
}

func newHarness(t *testing.T, st store.Store, cfg *configs.AppConfig, opts ...PresenceOption) *harness {
	t.Helper()

	if st == nil {
		st = memstore.New()
	}
	if cfg == nil {
		cfg = testConfig()
	}

	router := NewRouter()
	directory := NewDirectory(st, router)
	presence := NewPresenceRegistry(st, directory, router, opts...)
	channel := NewChannel(st, router)
	manager := NewManager(cfg, router, directory, presence, channel)
	t.Cleanup(manager.Shutdown)

	return &harness{
		store:     st,
		router:    router,
		directory: directory,
		presence:  presence,
		channel:   channel,
		manager:   manager,
	}
}

// connect opens a session for a new fake connection.
func (h *harness) connect(id string) (*fakeConn, *Session) {
	conn := newFakeConn(id)
	return conn, h.manager.Open(conn)
}

// emit feeds one inbound event to the manager as the transport would.
func (h *harness) emit(t *testing.T, s *Session, name EventName, data any) {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"event": name, "data": data})
	require.NoError(t, err)
	h.manager.Handle(context.Background(), s, raw)
}

// createRoom creates name through s and consumes the roomCreated reply.
func (h *harness) createRoom(t *testing.T, c *fakeConn, s *Session, name string) RoomPayload {
	t.Helper()

	h.emit(t, s, EventCreateRoom, CreateRoomPayload{Name: name})
	ev := expect(t, c, EventRoomCreated)
	return ev.Data.(RoomPayload)
}

// join joins name as username and consumes the joinedRoom reply.
func (h *harness) join(t *testing.T, c *fakeConn, s *Session, username, name string) JoinedRoomPayload {
	t.Helper()

	h.emit(t, s, EventJoinRoom, JoinRoomPayload{Username: username, Name: name})
	ev := expect(t, c, EventJoinedRoom)
	return ev.Data.(JoinedRoomPayload)
}

func usernames(ev Event) []string {
	recipients := ev.Data.([]Recipient)
	names := make([]string, 0, len(recipients))
	for _, r := range recipients {
		names = append(names, r.Username)
	}
	return names
}

func notice(ev Event) string {
	return ev.Data.(NotificationPayload).Message
}
