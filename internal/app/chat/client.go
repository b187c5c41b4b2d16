/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Client struct, the WebSocket-backed Conn. It owns the
socket, runs the read and write loops (ReadPump and WritePump), and hands each
inbound frame to the Manager on the read loop so one connection's events are
handled strictly in order.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// capacity of the outbound queue of a client.
	sendBuffer = 256

	// frameOverhead is the room left in the read limit for the envelope around a message body.
	frameOverhead = 2048

	// escapeFactor is the worst-case growth of a body under JSON escaping (\u00XX per byte).
	escapeFactor = 6

	// WsCloseCodeServerShutdown is sent when the server closes connections on shutdown.
	WsCloseCodeServerShutdown = websocket.CloseGoingAway
)

// ErrClientClosed is returned by Send once the client stopped accepting events.
var ErrClientClosed = errors.New("client connection closed")

// ErrSendQueueFull is returned by Send when the outbound queue is saturated.
var ErrSendQueueFull = errors.New("client send queue full")

// Client is an active WebSocket connection.
type Client struct {
	// id is the opaque connection identifier.
	id string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be written.
	send chan []byte

	// closed reports whether send has been closed; guarded by mu.
	closed bool
	mu     sync.Mutex

	// maxFrameBytes bounds the size of an inbound frame.
	maxFrameBytes int64

	logger zerolog.Logger
}

var _ Conn = (*Client)(nil)

// NewClient wraps an upgraded WebSocket connection.
// maxMessageBytes is the largest decoded message body the client may send;
// the frame limit leaves room for that body fully escaped.
func NewClient(id string, wsConn *websocket.Conn, maxMessageBytes int) *Client {
	return &Client{
		id:            id,
		conn:          wsConn,
		send:          make(chan []byte, sendBuffer),
		maxFrameBytes: int64(maxMessageBytes)*escapeFactor + frameOverhead,
		logger:        logx.Logger().With().Str("connection_id", id).Logger(),
	}
}

// ID implements Conn.
func (c *Client) ID() string { return c.id }

// Send implements Conn. It marshals ev and queues it without blocking.
func (c *Client) Send(ev Event) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(ev.Name)).Msg("Error marshaling event for client")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return ErrSendQueueFull
	}
}

// Close stops accepting events; WritePump then sends a close frame and shuts the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// ReadPump reads frames until the connection fails, handing each to manager.
// It runs the disconnect path of session before returning.
func (c *Client) ReadPump(ctx context.Context, manager *Manager, session *Session) {
	defer c.cleanupOnDisconnect(manager, session)

	c.conn.SetReadLimit(c.maxFrameBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		manager.Handle(ctx, session, frame)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when ReadPump terminates.
func (c *Client) cleanupOnDisconnect(manager *Manager, session *Session) {
	c.logger.Info().Msg("Client connection cleanup starting.")

	manager.Close(session)
	_ = c.Close()

	if err := c.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes queued frames and periodic pings to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit so ReadPump unblocks
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame, or a close frame once the queue is closed.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		closeMessage := websocket.FormatCloseMessage(WsCloseCodeServerShutdown, "")
		if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
