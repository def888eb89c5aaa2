package riskmcp

import (
	"log/slog"
	"time"

	"github.com/wagiedev/riskmcp/internal/config"
)

// Options configures the behavior of the server.
type Options = config.Options

// Option configures a Server using the functional options pattern.
type Option func(*serverOptions)

type serverOptions struct {
	Options
	tools []*Tool
}

// applyOptions applies functional options over the defaults.
func applyOptions(opts []Option) *serverOptions {
	options := &serverOptions{Options: *config.DefaultOptions()}
	for _, opt := range opts {
		opt(options)
	}

	options.Normalize()

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *serverOptions) {
		o.Logger = logger
	}
}

// WithServerInfo sets the name and version reported during initialize.
func WithServerInfo(name, version string) Option {
	return func(o *serverOptions) {
		o.ServerName = name
		o.ServerVersion = version
	}
}

// WithInstructions sets the usage hint returned from initialize.
func WithInstructions(instructions string) Option {
	return func(o *serverOptions) {
		o.Instructions = instructions
	}
}

// WithTools registers tools when the server is created.
func WithTools(tools ...*Tool) Option {
	return func(o *serverOptions) {
		o.tools = append(o.tools, tools...)
	}
}

// ===== Transport =====

// WithSSEPath sets the route that opens a session stream. Default "/sse".
func WithSSEPath(path string) Option {
	return func(o *serverOptions) {
		o.SSEPath = path
	}
}

// WithMessagesPath sets the route clients post messages to. Default "/messages".
func WithMessagesPath(path string) Option {
	return func(o *serverOptions) {
		o.MessagesPath = path
	}
}

// WithKeepAlive sets the interval of SSE comment pings. Zero disables them.
func WithKeepAlive(interval time.Duration) Option {
	return func(o *serverOptions) {
		o.KeepAlive = interval
	}
}

// WithMaxMessageBytes bounds the size of one posted message.
func WithMaxMessageBytes(n int64) Option {
	return func(o *serverOptions) {
		o.MaxMessageBytes = n
	}
}

// ===== Sessions =====

// WithQueueSize bounds the number of posted messages waiting per session.
// Posts beyond it are refused with 503.
func WithQueueSize(n int) Option {
	return func(o *serverOptions) {
		o.QueueSize = n
	}
}

// WithOutboundBuffer bounds the number of events buffered per stream.
func WithOutboundBuffer(n int) Option {
	return func(o *serverOptions) {
		o.OutboundBuffer = n
	}
}

// WithHandshakeTimeout closes sessions that do not initialize in time.
// Zero disables the timeout.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *serverOptions) {
		o.HandshakeTimeout = timeout
	}
}

// WithOptions replaces all configuration with opts, typically produced by
// a loaded configuration file. Tools and the logger are kept.
func WithOptions(opts *Options) Option {
	return func(o *serverOptions) {
		if opts == nil {
			return
		}

		logger := o.Logger
		o.Options = *opts

		if o.Logger == nil {
			o.Logger = logger
		}
	}
}
