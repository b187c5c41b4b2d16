/*
Package errs provides custom error types and application-level error code constants.

These error codes identify business and system failures both inside the server
and in the error events delivered to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidInput indicates that a required field is missing or malformed.
	ErrInvalidInput = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body or frame is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrUnknownEvent indicates that the client sent an event name the server does not handle.
	ErrUnknownEvent = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room, Presence and Message Errors
const (
	// ErrDuplicateRoom indicates that a room with the requested name already exists.
	ErrDuplicateRoom = 2102

	// ErrRoomNotFound indicates that the referenced room does not exist.
	ErrRoomNotFound = 2103

	// ErrMessageTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageTooLong = 2201

	// ErrNotFound indicates that a presence record or other lookup target is absent.
	ErrNotFound = 2301

	// ErrRecipientNotFound indicates that the private message recipient is not online.
	ErrRecipientNotFound = 2302

	// ErrSenderNotFound indicates that the requesting connection has no presence record.
	ErrSenderNotFound = 2303

	// ErrNotJoined indicates that the connection is not bound to the targeted room.
	ErrNotJoined = 2304

	// ErrSessionClosed indicates that the session already left its room and accepts no more events.
	ErrSessionClosed = 2305
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrOperationTimeout indicates that an operation did not complete within its deadline.
	ErrOperationTimeout = 5001

	// ErrStorageUnavailable indicates a transient failure of the persistence layer.
	ErrStorageUnavailable = 5002
)
