// Package protocol implements JSON-RPC 2.0 dispatch for tool server sessions.
//
// The Dispatcher decodes each message a session worker hands it, routes it by
// method, and emits exactly one response event per request on the same
// session. Notifications never produce an event.
//
// Supported methods:
//   - initialize: completes the handshake and negotiates a protocol version
//   - ping: liveness check, answered with an empty object
//   - tools/list (alias list_tools): the registry catalog
//   - tools/call (alias call_tool): validated tool invocation, Ready sessions only
//
// Error responses carry the taxonomy name of the failure in error.data.kind.
// Example usage:
//
//	reg := registry.New()
//	dispatcher := protocol.NewDispatcher(log, reg, opts)
//	table := session.NewTable(log, dispatcher, opts)
package protocol
