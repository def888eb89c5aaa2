package riskmcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/riskmcp/internal/protocol"
	"github.com/wagiedev/riskmcp/internal/registry"
	"github.com/wagiedev/riskmcp/internal/session"
	"github.com/wagiedev/riskmcp/internal/transport"
)

// ShutdownTimeout bounds graceful shutdown once the serve context ends.
const ShutdownTimeout = 10 * time.Second

// Server is a tool server. Create it with New, register tools, then Serve.
//
// Tools may be registered while the server runs; new sessions and
// subsequent tools/list calls see them.
type Server struct {
	log      *slog.Logger
	opts     *Options
	registry *registry.Registry
	table    *session.Table
	handler  *transport.Handler
}

// New creates a Server from options.
func New(opts ...Option) (*Server, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	cfg := options.Options
	cfg.Logger = log

	reg := registry.New()
	for _, tool := range options.tools {
		if err := reg.Register(tool.mcpTool(), tool.ToolHandler); err != nil {
			return nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}

	dispatcher := protocol.NewDispatcher(log, reg, &cfg)
	table := session.NewTable(log, dispatcher, &cfg)

	return &Server{
		log:      log,
		opts:     &cfg,
		registry: reg,
		table:    table,
		handler:  transport.NewHandler(log, table, reg, &cfg),
	}, nil
}

// Register adds a tool to the catalog.
func (s *Server) Register(tool *Tool) error {
	if tool == nil {
		return errors.New("tool must not be nil")
	}

	return s.registry.Register(tool.mcpTool(), tool.ToolHandler)
}

// AddTool registers a typed tool on s. The input schema is inferred from In
// and validated arguments are decoded into In before fn runs.
func AddTool[In any](
	s *Server,
	name, description string,
	fn func(ctx context.Context, in In) (*CallToolResult, error),
) error {
	return registry.AddTool(s.registry, name, description, fn)
}

// Registry returns the tool catalog for packages that register tools
// directly.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Tools returns the registered tool definitions in registration order.
func (s *Server) Tools() []*mcp.Tool {
	return s.registry.List()
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.table.Len()
}

// Handler returns the HTTP handler serving the SSE and message routes,
// for mounting in an existing server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Shutdown closes every session and refuses new ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.table.Shutdown(ctx)
}

// Serve accepts connections on ln until ctx ends, then closes all sessions
// and shuts the HTTP server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Serving", "addr", ln.Addr().String(), "sse_path", s.opts.SSEPath, "tools", s.registry.Len())

		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()

		s.log.Info("Shutting down", "sessions", s.table.Len())

		// Sessions close first so their streams end and the HTTP server
		// sees the connections go idle.
		tableErr := s.table.Shutdown(shutdownCtx)
		httpErr := httpServer.Shutdown(shutdownCtx)

		return errors.Join(tableErr, httpErr)
	})

	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}
