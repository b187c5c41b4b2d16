package chat

// Conn is a live client connection as seen by the chat core.
// The transport owns it; the core only references it by ID.
type Conn interface {
	// ID returns the opaque connection identifier.
	ID() string

	// Send queues ev for delivery without blocking. An error means the event was dropped.
	Send(ev Event) error
}
