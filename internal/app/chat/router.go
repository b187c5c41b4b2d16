/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Router, the explicit owner of the live-connection table
and of the room -> subscribers mapping. Delivery is fire-and-forget: unknown
or departed targets silently receive nothing.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"roomchat/internal/pkg/logx"
)

// Router delivers events to rooms and individual connections.
type Router struct {
	// conns maps connection IDs to live connections.
	conns map[string]Conn

	// groups maps room IDs to their broadcast groups.
	groups map[string]*group

	// mu protects conns and groups.
	mu sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{
		conns:  make(map[string]Conn),
		groups: make(map[string]*group),
		stop:   make(chan struct{}),
		logger: logx.Component("router"),
	}
}

// Register adds a live connection. A connection registered twice replaces the old handle.
func (r *Router) Register(conn Conn) {
	r.mu.Lock()
	r.conns[conn.ID()] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info().Str("connection_id", conn.ID()).Int("connections", total).Msg("Connection registered.")
}

// Unregister removes a connection from the live table; pending room events for it are dropped.
func (r *Router) Unregister(connID string) {
	r.mu.Lock()
	_, ok := r.conns[connID]
	delete(r.conns, connID)
	total := len(r.conns)
	r.mu.Unlock()

	if ok {
		r.logger.Info().Str("connection_id", connID).Int("connections", total).Msg("Connection unregistered.")
	}
}

func (r *Router) lookup(connID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	return conn, ok
}

// groupFor returns the group of roomID, starting it when create is set.
func (r *Router) groupFor(roomID string, create bool) *group {
	r.mu.RLock()
	g, ok := r.groups[roomID]
	r.mu.RUnlock()
	if ok || !create {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.groups[roomID]; ok {
		return g
	}

	select {
	case <-r.stop:
		return nil
	default:
	}

	g = newGroup(roomID, r.lookup, r.stop, r.logger)
	r.groups[roomID] = g

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		g.run()
	}()

	return g
}

// Subscribe adds connID to the broadcast group of roomID.
func (r *Router) Subscribe(roomID, connID string) {
	if g := r.groupFor(roomID, true); g != nil {
		g.enqueue(groupOp{kind: opSubscribe, connID: connID})
	}
}

// Unsubscribe removes connID from the broadcast group of roomID.
func (r *Router) Unsubscribe(roomID, connID string) {
	if g := r.groupFor(roomID, false); g != nil {
		g.enqueue(groupOp{kind: opUnsubscribe, connID: connID})
	}
}

// ToRoom delivers ev to every subscriber of roomID except the excluding connection (empty for none).
func (r *Router) ToRoom(roomID string, ev Event, excluding string) {
	if g := r.groupFor(roomID, false); g != nil {
		g.enqueue(groupOp{kind: opDeliver, event: ev, excluding: excluding})
	}
}

// ToConnection delivers ev to a single connection.
func (r *Router) ToConnection(connID string, ev Event) {
	conn, ok := r.lookup(connID)
	if !ok {
		return
	}

	if err := conn.Send(ev); err != nil {
		r.logger.Warn().
			Err(err).
			Str("connection_id", connID).
			Str("event", string(ev.Name)).
			Msg("Dropped direct event for connection.")
	}
}

// ToAll delivers ev to every live connection except the excluding one.
func (r *Router) ToAll(ev Event, excluding string) {
	r.mu.RLock()
	targets := lo.Filter(lo.Values(r.conns), func(c Conn, _ int) bool {
		return c.ID() != excluding
	})
	r.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.Send(ev); err != nil {
			r.logger.Warn().
				Err(err).
				Str("connection_id", conn.ID()).
				Str("event", string(ev.Name)).
				Msg("Dropped global event for connection.")
		}
	}
}

// Members returns the sorted connection IDs subscribed to roomID once every
// previously queued op for that room has been applied.
func (r *Router) Members(roomID string) []string {
	g := r.groupFor(roomID, false)
	if g == nil {
		return []string{}
	}

	reply := make(chan []string, 1)
	if !g.enqueue(groupOp{kind: opMembers, reply: reply}) {
		return []string{}
	}

	select {
	case members := <-reply:
		return members
	case <-r.stop:
		return []string{}
	}
}

// Shutdown stops every group run loop and waits for them to exit.
func (r *Router) Shutdown() {
	r.stopOnce.Do(func() {
		r.logger.Info().Msg("Shutting down router...")
		close(r.stop)
	})
	r.wg.Wait()

	r.logger.Info().Msg("Router shutdown complete.")
}
