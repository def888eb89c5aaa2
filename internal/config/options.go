// Package config provides configuration types for the tool server.
package config

import (
	"log/slog"
	"time"
)

// Default runtime values.
const (
	DefaultServerName       = "riskmcp"
	DefaultServerVersion    = "0.1.0"
	DefaultSSEPath          = "/sse"
	DefaultMessagesPath     = "/messages"
	DefaultQueueSize        = 64
	DefaultOutboundBuffer   = 64
	DefaultKeepAlive        = 15 * time.Second
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultMaxMessageBytes  = 4 << 20 // 4MB
)

// Options configures the behavior of the tool server.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// ServerName and ServerVersion are reported in the initialize response.
	ServerName    string
	ServerVersion string

	// Instructions is an optional usage hint returned from initialize.
	Instructions string

	// SSEPath is the route that opens a session stream.
	SSEPath string

	// MessagesPath is the route clients post messages to. It is announced
	// to the client in the endpoint event together with the session id.
	MessagesPath string

	// QueueSize bounds the number of submitted messages waiting for dispatch
	// per session. Submissions beyond it are refused.
	QueueSize int

	// OutboundBuffer bounds the number of events waiting to be written to a
	// session stream before the dispatcher blocks.
	OutboundBuffer int

	// KeepAlive is the interval of SSE comment pings. Zero disables pings.
	KeepAlive time.Duration

	// HandshakeTimeout closes sessions that do not complete initialize in
	// time. Zero disables the timeout.
	HandshakeTimeout time.Duration

	// MaxMessageBytes bounds the size of one submitted message body.
	MaxMessageBytes int64
}

// DefaultOptions returns Options populated with default values.
func DefaultOptions() *Options {
	return &Options{
		ServerName:       DefaultServerName,
		ServerVersion:    DefaultServerVersion,
		SSEPath:          DefaultSSEPath,
		MessagesPath:     DefaultMessagesPath,
		QueueSize:        DefaultQueueSize,
		OutboundBuffer:   DefaultOutboundBuffer,
		KeepAlive:        DefaultKeepAlive,
		HandshakeTimeout: DefaultHandshakeTimeout,
		MaxMessageBytes:  DefaultMaxMessageBytes,
	}
}

// Normalize fills zero values with defaults. Durations are left as set
// because zero disables keep-alives and the handshake timeout.
func (o *Options) Normalize() {
	if o.ServerName == "" {
		o.ServerName = DefaultServerName
	}

	if o.ServerVersion == "" {
		o.ServerVersion = DefaultServerVersion
	}

	if o.SSEPath == "" {
		o.SSEPath = DefaultSSEPath
	}

	if o.MessagesPath == "" {
		o.MessagesPath = DefaultMessagesPath
	}

	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}

	if o.OutboundBuffer <= 0 {
		o.OutboundBuffer = DefaultOutboundBuffer
	}

	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = DefaultMaxMessageBytes
	}
}
