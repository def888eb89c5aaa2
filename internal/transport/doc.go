// Package transport exposes sessions over HTTP using Server-Sent Events.
//
// GET on the stream path opens a session and streams its events. The first
// frame is an endpoint event naming the submission URL; POSTs to that URL are
// accepted with 202 and answered asynchronously on the stream.
package transport
