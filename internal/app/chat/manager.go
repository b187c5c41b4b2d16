/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Manager, the session lifecycle orchestrator. It decodes
inbound events, drives each Session through its state machine against the
Directory, PresenceRegistry and Channel, and turns every failure into a single
error event for the originating connection.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"roomchat/internal/configs"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// Manager coordinates sessions and the shared chat services.
type Manager struct {
	router    *Router
	directory *Directory
	presence  *PresenceRegistry
	channel   *Channel

	// config holds the read-only chat settings.
	config *configs.AppConfig

	validate *validator.Validate

	// sessions tracks open sessions by connection ID for shutdown.
	sessions map[string]*Session

	// mu protects sessions.
	mu sync.Mutex

	logger zerolog.Logger
}

// NewManager constructs a Manager over the given services.
func NewManager(cfg *configs.AppConfig, router *Router, directory *Directory, presence *PresenceRegistry, channel *Channel) *Manager {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Manager{
		router:    router,
		directory: directory,
		presence:  presence,
		channel:   channel,
		config:    cfg,
		validate:  validate,
		sessions:  make(map[string]*Session),
		logger:    logx.Component("manager"),
	}
}

// Open registers conn with the router and starts an Unbound session for it.
func (m *Manager) Open(conn Conn) *Session {
	limit := rate.Inf
	if m.config.EventRate > 0 {
		limit = rate.Limit(m.config.EventRate)
	}

	s := newSession(conn, rate.NewLimiter(limit, m.config.EventBurst))
	m.router.Register(conn)

	m.mu.Lock()
	m.sessions[conn.ID()] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info().Str("connection_id", conn.ID()).Int("sessions", total).Msg("Session opened.")
	return s
}

// Handle processes one raw inbound frame of s. Failures are reported to s only.
func (m *Manager) Handle(ctx context.Context, s *Session, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("Recovered from panic while handling event.")
			m.sendError(s, errs.NewError(errs.ErrUnknown))
		}
	}()

	if !s.limiter.Allow() {
		m.sendError(s, errs.NewError(errs.ErrRateLimitExceeded))
		return
	}

	var in inboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		s.logger.Warn().Err(err).Int("frame_bytes", len(raw)).Msg("Client sent invalid JSON")
		m.sendError(s, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.OperationTimeout)
	defer cancel()

	if err := m.dispatch(ctx, s, in); err != nil {
		m.sendError(s, err)
	}
}

func (m *Manager) dispatch(ctx context.Context, s *Session, in inboundEvent) error {
	if s.state == StateClosed && in.Name != EventLeaveRoom {
		return errs.NewError(errs.ErrSessionClosed)
	}

	switch in.Name {
	case EventCreateRoom:
		return m.handleCreateRoom(ctx, s, in.Data)
	case EventJoinRoom:
		return m.handleJoinRoom(ctx, s, in.Data)
	case EventSendMessage:
		return m.handleSendMessage(ctx, s, in.Data)
	case EventSendPrivateMessage:
		return m.handleSendPrivateMessage(ctx, s, in.Data)
	case EventTyping:
		return m.handleTyping(s, in.Data)
	case EventLeaveRoom:
		return m.handleLeaveRoom(ctx, s)
	default:
		s.logger.Warn().Str("event", string(in.Name)).Msg("Client sent unsupported event")
		return errs.NewError(errs.ErrUnknownEvent, string(in.Name))
	}
}

func (m *Manager) handleCreateRoom(ctx context.Context, s *Session, data json.RawMessage) error {
	var p CreateRoomPayload
	if err := m.decode(data, &p); err != nil {
		return err
	}

	room, err := m.directory.CreateRoom(ctx, s.ID(), p.Name, p.Description)
	if err != nil {
		return err
	}

	if s.state == StateUnbound {
		m.router.Subscribe(room.ID, s.ID())
		s.bind(room.ID, room.Name, "")
	}

	m.router.ToConnection(s.ID(), Event{
		Name: EventRoomCreated,
		Data: RoomPayload{RoomID: room.ID, RoomName: room.Name},
	})
	return nil
}

func (m *Manager) handleJoinRoom(ctx context.Context, s *Session, data json.RawMessage) error {
	var p JoinRoomPayload
	if err := m.decode(data, &p); err != nil {
		return err
	}

	// Resolve first so a failed join leaves the current binding untouched.
	if _, err := m.directory.ResolveRoom(ctx, p.Name); err != nil {
		return err
	}

	if s.state == StateJoined {
		if err := m.leaveCurrent(ctx, s, StateUnbound); err != nil {
			return err
		}
	}

	record, room, err := m.presence.Join(ctx, s.ID(), p.Username, p.Name)
	if err != nil {
		return err
	}

	history, err := m.channel.RecentHistory(ctx, room.ID, m.config.HistoryLimit)
	if err != nil {
		rbCtx, cancel := m.detached(ctx)
		defer cancel()
		m.presence.rollback(rbCtx, s.ID())
		return err
	}

	s.bind(room.ID, room.Name, record.Username)

	m.router.ToConnection(s.ID(), Event{
		Name: EventJoinedRoom,
		Data: JoinedRoomPayload{RoomID: room.ID, RoomName: room.Name, Messages: history},
	})

	if err := m.presence.Announce(ctx, record, true); err != nil {
		s.logger.Error().Err(err).Str("room_id", room.ID).Msg("Failed to announce join.")
	}
	return nil
}

func (m *Manager) handleSendMessage(ctx context.Context, s *Session, data json.RawMessage) error {
	var p SendMessagePayload
	if err := m.decode(data, &p); err != nil {
		return err
	}

	if err := m.requireRoom(s, p.RoomID); err != nil {
		return err
	}
	if len(p.Message) > m.config.MaxMessageBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	sender := s.username
	if sender == "" {
		sender = strings.TrimSpace(p.Sender)
	}
	if sender == "" {
		return errs.NewError(errs.ErrInvalidInput, "sender is required")
	}

	_, err := m.channel.Append(ctx, s.roomID, sender, p.Message)
	return err
}

func (m *Manager) handleSendPrivateMessage(ctx context.Context, s *Session, data json.RawMessage) error {
	var p SendPrivateMessagePayload
	if err := m.decode(data, &p); err != nil {
		return err
	}
	if len(p.Message) > m.config.MaxMessageBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	recipient, err := m.presence.FindByUsername(ctx, p.RecipientUsername)
	if errs.Is(err, errs.ErrNotFound) {
		return errs.NewError(errs.ErrRecipientNotFound)
	}
	if err != nil {
		return err
	}

	sender, err := m.presence.FindByConnection(ctx, s.ID())
	if errs.Is(err, errs.ErrNotFound) {
		return errs.NewError(errs.ErrSenderNotFound)
	}
	if err != nil {
		return err
	}

	ev := Event{
		Name: EventPrivateMessage,
		Data: PrivateMessagePayload{
			Sender:    sender.Username,
			Message:   p.Message,
			CreatedAt: time.Now().UTC(),
		},
	}

	if recipient.ConnectionID != s.ID() {
		m.router.ToConnection(recipient.ConnectionID, ev)
	}
	m.router.ToConnection(s.ID(), ev)
	return nil
}

func (m *Manager) handleTyping(s *Session, data json.RawMessage) error {
	var p TypingPayload
	if err := m.decode(data, &p); err != nil {
		return err
	}
	if err := m.requireRoom(s, p.RoomID); err != nil {
		return err
	}

	sender := s.username
	if sender == "" {
		sender = p.Sender
	}

	m.router.ToRoom(s.roomID, Event{Name: EventTyping, Data: TypingNotice{Sender: sender}}, s.ID())
	return nil
}

func (m *Manager) handleLeaveRoom(ctx context.Context, s *Session) error {
	if s.state != StateJoined {
		return nil
	}

	left := RoomPayload{RoomID: s.roomID, RoomName: s.roomName}
	if err := m.leaveCurrent(ctx, s, StateClosed); err != nil {
		return err
	}

	m.router.ToConnection(s.ID(), Event{Name: EventLeftRoom, Data: left})
	return nil
}

// requireRoom checks that s is Joined and, when given, that roomID is its bound room.
func (m *Manager) requireRoom(s *Session, roomID string) error {
	if s.state != StateJoined {
		return errs.NewError(errs.ErrNotJoined)
	}
	if roomID != "" && roomID != s.roomID {
		return errs.NewError(errs.ErrNotJoined)
	}
	return nil
}

// leaveCurrent drops the presence and subscription of a Joined session and moves it to next.
func (m *Manager) leaveCurrent(ctx context.Context, s *Session, next SessionState) error {
	_, existed, err := m.presence.Leave(ctx, s.ID())
	if err != nil {
		return err
	}
	if !existed {
		// Bound through createRoom: subscribed without a presence record.
		m.router.Unsubscribe(s.roomID, s.ID())
	}

	s.unbind(next)
	return nil
}

// Close runs the disconnect path of s: leave, then unregister. Errors are logged only.
func (m *Manager) Close(s *Session) {
	m.mu.Lock()
	_, open := m.sessions[s.ID()]
	delete(m.sessions, s.ID())
	m.mu.Unlock()

	if !open {
		return
	}

	if s.state == StateJoined {
		ctx, cancel := m.detached(context.Background())
		defer cancel()

		if err := m.leaveCurrent(ctx, s, StateClosed); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clean up presence on disconnect.")
		}
	}
	s.state = StateClosed

	m.router.Unregister(s.ID())
	m.logger.Info().Str("connection_id", s.ID()).Msg("Session closed.")
}

// Shutdown closes every open connection that supports it and stops the router.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down session manager...")

	m.mu.Lock()
	conns := make([]Conn, 0, len(m.sessions))
	for _, s := range m.sessions {
		conns = append(conns, s.conn)
	}
	m.mu.Unlock()

	for _, conn := range conns {
		if closer, ok := conn.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				m.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Failed to close connection on shutdown.")
			}
		}
	}

	m.router.Shutdown()
	m.logger.Info().Msg("Session manager shutdown complete.")
}

// SessionCount returns the number of open sessions.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// detached derives a context that survives the cancellation of parent, bounded by the operation timeout.
func (m *Manager) detached(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), m.config.OperationTimeout)
}

// decode unmarshals an event payload into dst and validates it.
func (m *Manager) decode(data json.RawMessage, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if err := m.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errs.NewError(errs.ErrInvalidInput, describeViolation(verrs[0]))
		}
		return errs.Wrap(errs.ErrInvalidInput, err, "malformed payload")
	}
	return nil
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (m *Manager) sendError(s *Session, err error) {
	customErr := errs.From(err)

	event := s.logger.Warn()
	if customErr.Code >= errs.ErrUnknown {
		event = s.logger.Error()
	}
	event.Err(err).Int("code", customErr.Code).Msg("Event rejected.")

	if sendErr := s.conn.Send(Event{
		Name: EventError,
		Data: ErrorPayload{Code: customErr.Code, Message: customErr.Message},
	}); sendErr != nil {
		s.logger.Warn().Err(sendErr).Msg("Failed to queue error event")
	}
}
