// Package apierror defines the failure kinds surfaced by the HTTP layer and
// the JSON error body written to clients.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies a failure so the route layer can translate it into an HTTP
// status without inspecting error strings.
type Kind int

const (
	// KindConfiguration: a required setting is missing or the provider API
	// version is below the supported minimum. Raised at client construction.
	KindConfiguration Kind = iota
	// KindUpstreamRequest: the completion provider rejected the request or
	// was unreachable before any streaming began.
	KindUpstreamRequest
	// KindUpstreamStream: the provider stream failed after bytes were
	// already flushed to the client.
	KindUpstreamStream
	// KindStoreUnavailable: the history store is not configured or down.
	KindStoreUnavailable
	// KindStoreOperation: a history-store operation failed.
	KindStoreOperation
	// KindNotFound: a referenced entity does not exist. Still surfaced as
	// 500 for compatibility with existing clients.
	KindNotFound
)

// Error carries a failure kind, a client-safe message, and optionally the
// HTTP status the upstream failure reported.
type Error struct {
	Kind    Kind
	Message string
	Status  int // 0 means no explicit status; HTTPStatus falls back to 500
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status carried by the failure, else 500.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// New builds an Error with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithStatus attaches the HTTP status the failure carried.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

type jsonError struct {
	Error string `json:"error"`
}

// WriteJSON writes the {"error": message} body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message})
}

// WriteError translates err into the error response body. Typed errors keep
// their client-safe message and carried status; anything else becomes a 500
// with the error text.
func WriteError(w http.ResponseWriter, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		WriteJSON(w, ae.HTTPStatus(), ae.Message)
		return
	}
	WriteJSON(w, http.StatusInternalServerError, err.Error())
}
