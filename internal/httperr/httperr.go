// Package httperr defines the error type that crosses the service/handler
// boundary. Services return *Error values with a client-safe message and an
// HTTP status; handlers translate them into a JSON {"message": ...} response.
package httperr

import (
	"errors"
	"net/http"
)

// Error carries an HTTP status and a message safe to show the client.
// An optional wrapped cause is kept for logging only.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given status and client message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap attaches a status and client message to an underlying error.
func Wrap(err error, status int, message string) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// From extracts an *Error from err, or converts it into the default
// 500 response. Raw store and library errors are never shown to clients.
func From(err error) *Error {
	var he *Error
	if errors.As(err, &he) {
		return he
	}
	return &Error{Status: http.StatusInternalServerError, Message: "An unknown error occurred", Err: err}
}
