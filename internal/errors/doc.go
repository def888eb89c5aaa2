// Package errors defines the error taxonomy of the tool server.
//
// Session-level failures (unknown tool, invalid arguments, protocol errors,
// tool execution faults) are values that the dispatcher reports on the
// session's outbound stream. Kind and Code translate any error into the
// taxonomy name and JSON-RPC code used on the wire. All error types support
// unwrapping and can be checked with errors.Is, errors.As and errors.AsType.
package errors
