package riskmcp

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// WithServer manages server lifecycle with automatic cleanup.
//
// This helper creates a server, serves it on addr in the background, and
// calls fn with the base URL of the running server. The server is shut down
// when fn returns. Pass "127.0.0.1:0" to pick a free port.
//
// Example usage:
//
//	err := riskmcp.WithServer(ctx, "127.0.0.1:0", func(ctx context.Context, baseURL string) error {
//	    transport := &mcp.SSEClientTransport{Endpoint: baseURL + "/sse"}
//	    // connect a client...
//	    return nil
//	},
//	    riskmcp.WithTools(addTool),
//	)
func WithServer(ctx context.Context, addr string, fn func(ctx context.Context, baseURL string) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	srv, err := New(opts...)
	if err != nil {
		return err
	}

	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	served := make(chan error, 1)

	go func() {
		served <- srv.Serve(serveCtx, ln)
	}()

	fnErr := fn(ctx, "http://"+ln.Addr().String())

	cancel()

	if serveErr := <-served; serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		srv.log.Warn("Server did not shut down cleanly", "error", serveErr)

		if fnErr == nil {
			return serveErr
		}
	}

	return fnErr
}
