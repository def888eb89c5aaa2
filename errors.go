package riskmcp

import "github.com/wagiedev/riskmcp/internal/errors"

// Re-export error types from internal package

// ToolServerError is the marker interface implemented by all server errors.
type ToolServerError = errors.ToolServerError

// ProtocolError is a malformed or out-of-order JSON-RPC message.
type ProtocolError = errors.ProtocolError

// ArgumentError indicates tool arguments failed schema validation.
type ArgumentError = errors.ArgumentError

// ToolError indicates a tool handler failed or panicked.
type ToolError = errors.ToolError

// CollaboratorError indicates an external service backing a tool failed.
type CollaboratorError = errors.CollaboratorError

// Re-export sentinel errors from internal package.
var (
	// ErrUnknownSession indicates the session id is not in the table.
	ErrUnknownSession = errors.ErrUnknownSession

	// ErrSessionNotReady indicates a tool call before the handshake completed.
	ErrSessionNotReady = errors.ErrSessionNotReady

	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrSessionBusy indicates the session's inbound queue is full.
	ErrSessionBusy = errors.ErrSessionBusy

	// ErrUnknownTool indicates the requested tool is not registered.
	ErrUnknownTool = errors.ErrUnknownTool

	// ErrInvalidArguments indicates tool arguments failed validation.
	ErrInvalidArguments = errors.ErrInvalidArguments

	// ErrServerShutdown indicates the server no longer accepts sessions.
	ErrServerShutdown = errors.ErrServerShutdown
)

// Failure kinds reported in JSON-RPC error data.
const (
	KindUnknownSession     = errors.KindUnknownSession
	KindSessionNotReady    = errors.KindSessionNotReady
	KindProtocolError      = errors.KindProtocolError
	KindUnknownTool        = errors.KindUnknownTool
	KindInvalidArguments   = errors.KindInvalidArguments
	KindToolExecutionError = errors.KindToolExecutionError
	KindSessionBusy        = errors.KindSessionBusy
)

// Kind returns the failure kind of err, or "" for nil.
func Kind(err error) string {
	return errors.Kind(err)
}
