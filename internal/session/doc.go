// Package session manages client sessions of the tool server.
//
// A Session pairs one outbound event stream with a bounded inbound queue.
// Submitted messages are handed to a per-session worker which passes them,
// in submission order, to a Handler. Handlers report results by emitting
// events on the same session. The Table owns every open session and is the
// only place sessions are created and destroyed.
package session
