package cps

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrConnectionClosed = errors.New("cps: connection closed")
	ErrClientClosed     = errors.New("cps: client closed")
	ErrNoServers        = errors.New("cps: no servers available")

	// ErrCircuitOpen is wrapped by errors returned while a server's circuit
	// breaker rejects requests.
	ErrCircuitOpen = errors.New("cps: circuit breaker open")
)

// Error types for transport operations.
// They tell the caller whether the connection that produced them is still
// usable; the Client uses this to decide when to re-dial.

// ConnectionError wraps underlying I/O errors from connection operations.
//
// Common causes:
//   - Connection closed or reset by the server
//   - Deadline from the context expired mid-exchange
//
// Connection handling: Connection is already broken, CLOSE and RECONNECT
type ConnectionError struct {
	Op  string // Operation that failed (dial, write, read)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// FrameError represents a malformed response frame.
//
// Common causes:
//   - Header magic mismatch (not a search engine endpoint)
//   - Response larger than Config.MaxResponseSize
//   - Body shorter than announced
//
// Connection handling: stream position is unknown, CLOSE connection
type FrameError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return "frame error: " + e.Message + ": " + e.Err.Error()
	}
	return "frame error: " + e.Message
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func (e *FrameError) ShouldCloseConnection() bool {
	return true
}

// EncodeError is returned when a request cannot be serialized, for instance
// because of an invalid parameter name. Nothing was sent.
//
// Connection handling: Connection is still valid, request was rejected client-side
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "encode request: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func (e *EncodeError) ShouldCloseConnection() bool {
	return false
}

// ErrorWithConnectionState is implemented by errors that know whether the
// connection should be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves a connection unusable.
//
// Returns true for ConnectionError and FrameError, false for EncodeError,
// context cancellation and nil. Unknown errors are treated conservatively
// and return true.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return true
}
