/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and carries a business code, a user-facing message, an HTTP status and
an optional underlying cause. From classifies arbitrary errors at handler
boundaries so every failure reaches the client as a CustomError.
*/
package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"roomchat/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int

	cause error
}

// Error implements the standard Go error interface.
func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("Error Code %d (HTTP %d): %s: %v", e.Code, e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *CustomError) Unwrap() error {
	return e.cause
}

// NewError constructs a *CustomError from a predefined error code.
// details are formatted into the code's detail message when one exists and ignored otherwise.
// An unknown code yields ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if len(details) > 0 {
		if format, ok := detailFormats[code]; ok {
			customErr.Message = fmt.Sprintf(format, details...)
		}
	}

	return &customErr
}

// Wrap builds the error for code and records cause as its underlying error.
func Wrap(code int, cause error, details ...any) *CustomError {
	customErr := NewError(code, details...)
	customErr.cause = cause
	return customErr
}

// Is reports whether err carries the given business code anywhere in its chain.
func Is(err error, code int) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code == code
	}
	return false
}

// From converts any error into a *CustomError.
// CustomErrors are returned as-is, deadline and cancellation errors become
// ErrOperationTimeout and everything else becomes ErrUnknown wrapping the original.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(ErrOperationTimeout, err)
	}

	return Wrap(ErrUnknown, err)
}
