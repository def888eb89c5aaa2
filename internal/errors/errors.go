package errors

import (
	"errors"
	"fmt"
)

// ToolServerError is the base interface for all typed server errors.
type ToolServerError interface {
	error
	IsToolServerError() bool
}

// Compile-time verification that all error types implement ToolServerError.
var (
	_ ToolServerError = (*ProtocolError)(nil)
	_ ToolServerError = (*ArgumentError)(nil)
	_ ToolServerError = (*ToolError)(nil)
	_ ToolServerError = (*CollaboratorError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrUnknownSession indicates no open session matches the given id.
	ErrUnknownSession = errors.New("unknown session")

	// ErrSessionNotReady indicates a tool call arrived before the handshake completed.
	ErrSessionNotReady = errors.New("session not ready: initialize has not completed")

	// ErrSessionClosed indicates the session was closed and can no longer emit events.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionBusy indicates the session's inbound queue is full.
	ErrSessionBusy = errors.New("session busy: inbound queue full")

	// ErrAlreadyInitialized indicates a second initialize on a ready session.
	ErrAlreadyInitialized = errors.New("session already initialized")

	// ErrUnknownTool indicates the requested tool is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments indicates tool arguments do not satisfy the input schema.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrServerShutdown indicates the server is shutting down and refuses new sessions.
	ErrServerShutdown = errors.New("server shutting down")
)

// JSON-RPC error codes used on the wire.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeSessionNotReady is an implementation-defined server error code.
	CodeSessionNotReady = -32002
)

// Taxonomy names reported in error.data.kind.
const (
	KindUnknownSession     = "UnknownSession"
	KindSessionNotReady    = "SessionNotReady"
	KindProtocolError      = "ProtocolError"
	KindUnknownTool        = "UnknownTool"
	KindInvalidArguments   = "InvalidArguments"
	KindToolExecutionError = "ToolExecutionError"
	KindSessionBusy        = "SessionBusy"
	KindInternal           = "InternalError"
)

// ProtocolError indicates a malformed or unroutable JSON-RPC envelope.
type ProtocolError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error %d: %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsToolServerError implements ToolServerError.
func (e *ProtocolError) IsToolServerError() bool { return true }

// ArgumentError indicates arguments for a known tool failed schema validation
// or could not be decoded into the tool's input.
// It always matches ErrInvalidArguments with errors.Is.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() []error {
	return []error{ErrInvalidArguments, e.Err}
}

// IsToolServerError implements ToolServerError.
func (e *ArgumentError) IsToolServerError() bool { return true }

// ToolError indicates a tool ran and failed.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsToolServerError implements ToolServerError.
func (e *ToolError) IsToolServerError() bool { return true }

// CollaboratorError indicates an external service answered with a failure.
type CollaboratorError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *CollaboratorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Service, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsToolServerError implements ToolServerError.
func (e *CollaboratorError) IsToolServerError() bool { return true }

// Kind maps an error to its taxonomy name.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSession), errors.Is(err, ErrSessionClosed):
		return KindUnknownSession
	case errors.Is(err, ErrSessionNotReady):
		return KindSessionNotReady
	case errors.Is(err, ErrSessionBusy):
		return KindSessionBusy
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrInvalidArguments):
		return KindInvalidArguments
	}

	if _, ok := errors.AsType[*ProtocolError](err); ok {
		return KindProtocolError
	}

	if errors.Is(err, ErrAlreadyInitialized) {
		return KindProtocolError
	}

	if _, ok := errors.AsType[*ToolError](err); ok {
		return KindToolExecutionError
	}

	return KindInternal
}

// Code maps an error to the JSON-RPC error code reported on the wire.
func Code(err error) int {
	if pe, ok := errors.AsType[*ProtocolError](err); ok {
		return pe.Code
	}

	switch {
	case errors.Is(err, ErrSessionNotReady):
		return CodeSessionNotReady
	case errors.Is(err, ErrAlreadyInitialized):
		return CodeInvalidRequest
	case errors.Is(err, ErrUnknownTool), errors.Is(err, ErrInvalidArguments):
		return CodeInvalidParams
	default:
		return CodeInternalError
	}
}
