// Package registry implements the static tool catalog of the server.
//
// Tools are registered once at startup with their MCP metadata and a handler.
// The registry resolves each input schema at registration, validates call
// arguments against it, and invokes handlers with panics converted into tool
// execution errors. Reads are safe for concurrent use by every session.
package registry
