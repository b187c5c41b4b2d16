package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/errs"
)

func TestManager_CreateRoom(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, _ := h.connect("bob-conn")

	created := h.createRoom(t, alice, aliceSession, "general")
	assert.Equal(t, "general", created.RoomName)
	assert.NotEmpty(t, created.RoomID)

	// the creator is bound to the new room
	assert.Equal(t, StateJoined, aliceSession.State())
	assert.Equal(t, created.RoomID, aliceSession.RoomID())
	assert.Equal(t, []string{"alice-conn"}, h.router.Members(created.RoomID))

	ev := expect(t, bob, EventNotification)
	assert.Equal(t, "New room created: general", notice(ev))
	expectSilence(t, alice)
}

func TestManager_CreateRoomTwice(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, _ := h.connect("bob-conn")

	h.createRoom(t, alice, aliceSession, "general")
	expect(t, bob, EventNotification)

	h.emit(t, aliceSession, EventCreateRoom, CreateRoomPayload{Name: "general"})
	assert.Equal(t, errs.ErrDuplicateRoom, expectError(t, alice))
	expectSilence(t, bob)

	rooms, err := h.directory.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestManager_CreateRoomRequiresName(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	h.emit(t, aliceSession, EventCreateRoom, CreateRoomPayload{Name: ""})
	assert.Equal(t, errs.ErrInvalidInput, expectError(t, alice))

	h.emit(t, aliceSession, EventCreateRoom, CreateRoomPayload{Name: "   "})
	assert.Equal(t, errs.ErrInvalidInput, expectError(t, alice))
	assert.Equal(t, StateUnbound, aliceSession.State())
}

func TestManager_JoinMissingRoom(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	h.emit(t, aliceSession, EventJoinRoom, JoinRoomPayload{Username: "alice", Name: "nowhere"})
	assert.Equal(t, errs.ErrRoomNotFound, expectError(t, alice))

	assert.Equal(t, StateUnbound, aliceSession.State())
	_, err := h.store.FindPresenceByConnection(context.Background(), "alice-conn")
	require.ErrorIs(t, err, store.ErrNotFound)
	expectSilence(t, alice)
}

func TestManager_JoinReplaysRecentHistory(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, bobSession := h.connect("bob-conn")

	room := h.createRoom(t, alice, aliceSession, "general")
	expect(t, bob, EventNotification)

	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)

	for i := range 15 {
		h.emit(t, aliceSession, EventSendMessage, SendMessagePayload{
			RoomID:  room.RoomID,
			Message: fmt.Sprintf("msg-%02d", i),
		})
		ev := expect(t, alice, EventNewMessage)
		assert.Equal(t, fmt.Sprintf("msg-%02d", i), ev.Data.(store.Message).Body)
	}

	joined := h.join(t, bob, bobSession, "bob", "general")
	require.Len(t, joined.Messages, 10)
	assert.Equal(t, room.RoomID, joined.RoomID)
	assert.Equal(t, "msg-05", joined.Messages[0].Body)
	assert.Equal(t, "msg-14", joined.Messages[9].Body)
}

func TestManager_PresenceAfterJoinsAndLeaves(t *testing.T) {
	h := newHarness(t, nil, nil)
	owner, ownerSession := h.connect("owner-conn")
	room := h.createRoom(t, owner, ownerSession, "general")

	names := []string{"ann", "ben", "cat", "dan", "eve"}
	sessions := make(map[string]*Session)
	conns := make(map[string]*fakeConn)
	for _, name := range names {
		conn, s := h.connect(name + "-conn")
		h.join(t, conn, s, name, "general")
		sessions[name], conns[name] = s, conn
	}

	for _, name := range []string{"ben", "dan"} {
		h.emit(t, sessions[name], EventLeaveRoom, nil)
	}

	occupants, err := h.presence.ListPresence(context.Background(), room.RoomID, "")
	require.NoError(t, err)
	got := make([]string, 0, len(occupants))
	for _, o := range occupants {
		got = append(got, o.Username)
	}
	assert.Equal(t, []string{"ann", "cat", "eve"}, got)

	members := h.router.Members(room.RoomID)
	assert.Contains(t, members, "ann-conn")
	assert.NotContains(t, members, "ben-conn")
	assert.NotContains(t, members, "dan-conn")
}

func TestManager_TypingSkipsSender(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, bobSession := h.connect("bob-conn")

	room := h.createRoom(t, alice, aliceSession, "general")
	expect(t, bob, EventNotification)

	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)
	h.join(t, bob, bobSession, "bob", "general")
	expect(t, bob, EventRecipients)
	expect(t, alice, EventRecipients)
	expect(t, alice, EventNotification)

	h.emit(t, aliceSession, EventTyping, TypingPayload{RoomID: room.RoomID, Sender: "alice"})

	ev := expect(t, bob, EventTyping)
	assert.Equal(t, TypingNotice{Sender: "alice"}, ev.Data)
	expectSilence(t, alice)
}

func TestManager_TypingRequiresJoin(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	h.emit(t, aliceSession, EventTyping, TypingPayload{RoomID: "any", Sender: "alice"})
	assert.Equal(t, errs.ErrNotJoined, expectError(t, alice))
}

func TestManager_MessageScenario(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	room := h.createRoom(t, alice, aliceSession, "general")

	joined := h.join(t, alice, aliceSession, "alice", "general")
	assert.Empty(t, joined.Messages)
	assert.Equal(t, []string{"alice"}, usernames(expect(t, alice, EventRecipients)))

	bob, bobSession := h.connect("bob-conn")
	h.join(t, bob, bobSession, "bob", "general")
	assert.Equal(t, []string{"alice", "bob"}, usernames(expect(t, bob, EventRecipients)))
	assert.Equal(t, []string{"alice", "bob"}, usernames(expect(t, alice, EventRecipients)))
	assert.Equal(t, "bob joined the room", notice(expect(t, alice, EventNotification)))

	h.emit(t, aliceSession, EventSendMessage, SendMessagePayload{RoomID: room.RoomID, Sender: "alice", Message: "hi"})

	for _, c := range []*fakeConn{alice, bob} {
		msg := expect(t, c, EventNewMessage).Data.(store.Message)
		assert.Equal(t, "alice", msg.Sender)
		assert.Equal(t, "hi", msg.Body)
		assert.Equal(t, room.RoomID, msg.RoomID)
	}

	h.manager.Close(bobSession)

	assert.Equal(t, []string{"alice"}, usernames(expect(t, alice, EventRecipients)))
	assert.Equal(t, "bob left the room", notice(expect(t, alice, EventNotification)))
	expectSilence(t, bob)
	assert.Equal(t, StateClosed, bobSession.State())
	assert.Equal(t, 1, h.manager.SessionCount())
}

func TestManager_SendMessageValidation(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	t.Run("unbound", func(t *testing.T) {
		h.emit(t, aliceSession, EventSendMessage, SendMessagePayload{RoomID: "room", Sender: "alice", Message: "hi"})
		assert.Equal(t, errs.ErrNotJoined, expectError(t, alice))
	})

	room := h.createRoom(t, alice, aliceSession, "general")
	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)

	tests := []struct {
		name    string
		payload SendMessagePayload
		code    int
	}{
		{"empty message", SendMessagePayload{RoomID: room.RoomID, Message: ""}, errs.ErrInvalidInput},
		{"missing room", SendMessagePayload{Message: "hi"}, errs.ErrInvalidInput},
		{"other room", SendMessagePayload{RoomID: "elsewhere", Message: "hi"}, errs.ErrNotJoined},
		{"too long", SendMessagePayload{RoomID: room.RoomID, Message: strings.Repeat("x", 5001)}, errs.ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.emit(t, aliceSession, EventSendMessage, tt.payload)
			assert.Equal(t, tt.code, expectError(t, alice))
		})
	}

	history, err := h.channel.RecentHistory(context.Background(), room.RoomID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestManager_SenderFallsBackToPayload(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	// bound by creation only, so no username is known
	room := h.createRoom(t, alice, aliceSession, "general")

	h.emit(t, aliceSession, EventSendMessage, SendMessagePayload{RoomID: room.RoomID, Message: "hi"})
	assert.Equal(t, errs.ErrInvalidInput, expectError(t, alice))

	h.emit(t, aliceSession, EventSendMessage, SendMessagePayload{RoomID: room.RoomID, Sender: "host", Message: "hi"})
	msg := expect(t, alice, EventNewMessage).Data.(store.Message)
	assert.Equal(t, "host", msg.Sender)
}

func TestManager_PrivateMessage(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, bobSession := h.connect("bob-conn")

	h.createRoom(t, alice, aliceSession, "general")
	expect(t, bob, EventNotification)

	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)
	h.join(t, bob, bobSession, "bob", "general")
	expect(t, bob, EventRecipients)
	expect(t, alice, EventRecipients)
	expect(t, alice, EventNotification)

	t.Run("delivered to recipient and echoed", func(t *testing.T) {
		h.emit(t, aliceSession, EventSendPrivateMessage, SendPrivateMessagePayload{RecipientUsername: "bob", Message: "psst"})

		for _, c := range []*fakeConn{bob, alice} {
			pm := expect(t, c, EventPrivateMessage).Data.(PrivateMessagePayload)
			assert.Equal(t, "alice", pm.Sender)
			assert.Equal(t, "psst", pm.Message)
			assert.False(t, pm.CreatedAt.IsZero())
		}
	})

	t.Run("unknown recipient", func(t *testing.T) {
		h.emit(t, aliceSession, EventSendPrivateMessage, SendPrivateMessagePayload{RecipientUsername: "carol", Message: "hello"})

		assert.Equal(t, errs.ErrRecipientNotFound, expectError(t, alice))
		expectSilence(t, bob)
	})

	t.Run("to self is delivered once", func(t *testing.T) {
		h.emit(t, aliceSession, EventSendPrivateMessage, SendPrivateMessagePayload{RecipientUsername: "alice", Message: "note"})

		expect(t, alice, EventPrivateMessage)
		expectSilence(t, alice)
	})

	t.Run("sender without presence", func(t *testing.T) {
		carol, carolSession := h.connect("carol-conn")
		h.emit(t, carolSession, EventSendPrivateMessage, SendPrivateMessagePayload{RecipientUsername: "bob", Message: "hey"})

		assert.Equal(t, errs.ErrSenderNotFound, expectError(t, carol))
		expectSilence(t, bob)
	})

	t.Run("empty message", func(t *testing.T) {
		h.emit(t, aliceSession, EventSendPrivateMessage, SendPrivateMessagePayload{RecipientUsername: "bob"})

		assert.Equal(t, errs.ErrInvalidInput, expectError(t, alice))
	})
}

func TestManager_LeaveRoom(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	bob, bobSession := h.connect("bob-conn")

	// leaving before joining is a no-op
	h.emit(t, aliceSession, EventLeaveRoom, nil)
	expectSilence(t, alice)
	assert.Equal(t, StateUnbound, aliceSession.State())

	room := h.createRoom(t, alice, aliceSession, "general")
	expect(t, bob, EventNotification)
	h.join(t, bob, bobSession, "bob", "general")
	expect(t, bob, EventRecipients)
	expect(t, alice, EventRecipients)
	expect(t, alice, EventNotification)

	h.emit(t, bobSession, EventLeaveRoom, nil)
	left := expect(t, bob, EventLeftRoom).Data.(RoomPayload)
	assert.Equal(t, RoomPayload{RoomID: room.RoomID, RoomName: "general"}, left)
	assert.Equal(t, StateClosed, bobSession.State())

	assert.Empty(t, usernames(expect(t, alice, EventRecipients)))
	assert.Equal(t, "bob left the room", notice(expect(t, alice, EventNotification)))

	// closed is terminal
	h.emit(t, bobSession, EventSendMessage, SendMessagePayload{RoomID: room.RoomID, Message: "hi"})
	assert.Equal(t, errs.ErrSessionClosed, expectError(t, bob))
	h.emit(t, bobSession, EventJoinRoom, JoinRoomPayload{Username: "bob", Name: "general"})
	assert.Equal(t, errs.ErrSessionClosed, expectError(t, bob))

	h.emit(t, bobSession, EventLeaveRoom, nil)
	expectSilence(t, bob)
}

func TestManager_JoinAnotherRoomLeavesFirst(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	general := h.createRoom(t, alice, aliceSession, "general")
	h.emit(t, aliceSession, EventCreateRoom, CreateRoomPayload{Name: "random"})
	random := expect(t, alice, EventRoomCreated).Data.(RoomPayload)

	// creating a second room does not rebind
	assert.Equal(t, general.RoomID, aliceSession.RoomID())

	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)

	h.join(t, alice, aliceSession, "alice", "random")
	assert.Equal(t, []string{"alice"}, usernames(expect(t, alice, EventRecipients)))

	assert.Equal(t, random.RoomID, aliceSession.RoomID())
	assert.Empty(t, h.router.Members(general.RoomID))
	assert.Equal(t, []string{"alice-conn"}, h.router.Members(random.RoomID))

	occupants, err := h.presence.ListPresence(context.Background(), general.RoomID, "")
	require.NoError(t, err)
	assert.Empty(t, occupants)

	// a failed join keeps the current binding
	h.emit(t, aliceSession, EventJoinRoom, JoinRoomPayload{Username: "alice", Name: "nowhere"})
	assert.Equal(t, errs.ErrRoomNotFound, expectError(t, alice))
	assert.Equal(t, random.RoomID, aliceSession.RoomID())
}

func TestManager_MalformedFrames(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")

	h.manager.Handle(context.Background(), aliceSession, []byte("{not json"))
	assert.Equal(t, errs.ErrInvalidJSONFormat, expectError(t, alice))

	h.manager.Handle(context.Background(), aliceSession, []byte(`{"event":"dance","data":{}}`))
	ev := expect(t, alice, EventError)
	assert.Equal(t, errs.ErrUnknownEvent, ev.Data.(ErrorPayload).Code)
	assert.Contains(t, ev.Data.(ErrorPayload).Message, "dance")

	h.manager.Handle(context.Background(), aliceSession, []byte(`{"event":"joinRoom","data":{"username":42}}`))
	assert.Equal(t, errs.ErrInvalidJSONFormat, expectError(t, alice))

	h.manager.Handle(context.Background(), aliceSession, []byte(`{"event":"joinRoom"}`))
	ev = expect(t, alice, EventError)
	assert.Equal(t, errs.ErrInvalidInput, ev.Data.(ErrorPayload).Code)
	assert.Equal(t, "Invalid input: username is required.", ev.Data.(ErrorPayload).Message)
}

func TestManager_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.EventRate = 0.001
	cfg.EventBurst = 1
	h := newHarness(t, nil, cfg)
	alice, aliceSession := h.connect("alice-conn")

	h.emit(t, aliceSession, EventLeaveRoom, nil)
	expectSilence(t, alice)

	h.emit(t, aliceSession, EventLeaveRoom, nil)
	assert.Equal(t, errs.ErrRateLimitExceeded, expectError(t, alice))
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	h := newHarness(t, nil, nil)
	alice, aliceSession := h.connect("alice-conn")
	h.createRoom(t, alice, aliceSession, "general")
	h.join(t, alice, aliceSession, "alice", "general")
	expect(t, alice, EventRecipients)

	h.manager.Close(aliceSession)
	h.manager.Close(aliceSession)

	assert.Equal(t, 0, h.manager.SessionCount())
	_, err := h.store.FindPresenceByConnection(context.Background(), "alice-conn")
	require.ErrorIs(t, err, store.ErrNotFound)
}
