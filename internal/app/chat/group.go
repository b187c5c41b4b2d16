/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the broadcast group, the run loop owning the set of
connections subscribed to one room. Subscriptions and deliveries travel
through a single ordered queue, so events submitted by one goroutine reach
every subscriber in submission order.
*/
package chat

import (
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const groupQueueBuffer = 1024

type opKind int

const (
	opSubscribe opKind = iota
	opUnsubscribe
	opDeliver
	opMembers
)

// groupOp is one queued instruction for a group run loop.
type groupOp struct {
	kind      opKind
	connID    string
	event     Event
	excluding string
	reply     chan []string
}

// group is the broadcast group of a single room.
type group struct {
	// roomID is the canonical key of the room this group serves.
	roomID string

	// subscribers holds the connection IDs currently receiving room events.
	subscribers map[string]struct{}

	// ops is the single ordered queue consumed by run.
	ops chan groupOp

	// lookup resolves a connection ID to its live Conn.
	lookup func(connID string) (Conn, bool)

	// stop is closed by the router on shutdown.
	stop <-chan struct{}

	logger zerolog.Logger
}

func newGroup(roomID string, lookup func(string) (Conn, bool), stop <-chan struct{}, parent zerolog.Logger) *group {
	return &group{
		roomID:      roomID,
		subscribers: make(map[string]struct{}),
		ops:         make(chan groupOp, groupQueueBuffer),
		lookup:      lookup,
		stop:        stop,
		logger:      parent.With().Str("room_id", roomID).Logger(),
	}
}

// enqueue hands op to the run loop. It returns false once the router stopped.
func (g *group) enqueue(op groupOp) bool {
	select {
	case <-g.stop:
		return false
	default:
	}

	select {
	case g.ops <- op:
		return true
	case <-g.stop:
		return false
	}
}

// run processes queued ops until the router stops.
func (g *group) run() {
	g.logger.Debug().Msg("Broadcast group started.")
	defer g.logger.Debug().Msg("Broadcast group stopped.")

	for {
		select {
		case op := <-g.ops:
			g.apply(op)
		case <-g.stop:
			return
		}
	}
}

func (g *group) apply(op groupOp) {
	switch op.kind {
	case opSubscribe:
		g.subscribers[op.connID] = struct{}{}
		g.logger.Debug().
			Str("connection_id", op.connID).
			Int("subscribers", len(g.subscribers)).
			Msg("Connection subscribed.")

	case opUnsubscribe:
		delete(g.subscribers, op.connID)
		g.logger.Debug().
			Str("connection_id", op.connID).
			Int("subscribers", len(g.subscribers)).
			Msg("Connection unsubscribed.")

	case opDeliver:
		g.deliver(op.event, op.excluding)

	case opMembers:
		members := lo.Keys(g.subscribers)
		slices.Sort(members)
		op.reply <- members
	}
}

func (g *group) deliver(ev Event, excluding string) {
	for connID := range g.subscribers {
		if connID == excluding {
			continue
		}

		conn, ok := g.lookup(connID)
		if !ok {
			// Subscribed but already gone from the transport; nothing to deliver.
			continue
		}

		if err := conn.Send(ev); err != nil {
			g.logger.Warn().
				Err(err).
				Str("connection_id", connID).
				Str("event", string(ev.Name)).
				Msg("Dropped room event for connection.")
		}
	}
}
