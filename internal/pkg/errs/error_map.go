/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to their CustomError templates.
*/
package errs

import "net/http"

// errorMap stores the template CustomError for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidInput:         {Code: ErrInvalidInput, Message: "Invalid input.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrUnknownEvent:         {Code: ErrUnknownEvent, Message: "Unknown event.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room, Presence and Message Errors
	ErrDuplicateRoom:     {Code: ErrDuplicateRoom, Message: "Room already exists.", Status: http.StatusConflict},
	ErrRoomNotFound:      {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrMessageTooLong:    {Code: ErrMessageTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrNotFound:          {Code: ErrNotFound, Message: "Not found.", Status: http.StatusNotFound},
	ErrRecipientNotFound: {Code: ErrRecipientNotFound, Message: "Recipient not found.", Status: http.StatusNotFound},
	ErrSenderNotFound:    {Code: ErrSenderNotFound, Message: "Sender user not found.", Status: http.StatusNotFound},
	ErrNotJoined:         {Code: ErrNotJoined, Message: "Join a room first.", Status: http.StatusConflict},
	ErrSessionClosed:     {Code: ErrSessionClosed, Message: "Session has left its room. Reconnect to continue.", Status: http.StatusGone},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrOperationTimeout:   {Code: ErrOperationTimeout, Message: "The operation timed out. Please try again.", Status: http.StatusGatewayTimeout},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Storage is temporarily unavailable. Please try again.", Status: http.StatusServiceUnavailable},
}

// detailFormats holds the message used instead of the template when NewError receives details.
var detailFormats = map[int]string{
	ErrInvalidInput: "Invalid input: %s.",
	ErrUnknownEvent: "Unknown event %q.",
}
