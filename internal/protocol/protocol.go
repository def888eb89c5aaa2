package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/riskmcp/internal/config"
	servererrors "github.com/wagiedev/riskmcp/internal/errors"
	"github.com/wagiedev/riskmcp/internal/registry"
	"github.com/wagiedev/riskmcp/internal/session"
)

// Method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodCancelled   = "notifications/cancelled"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"

	// Short aliases accepted for the tool methods.
	MethodListTools = "list_tools"
	MethodCallTool  = "call_tool"
)

// Compile-time verification that Dispatcher implements session.Handler.
var _ session.Handler = (*Dispatcher)(nil)

// MethodHandler handles one JSON-RPC method.
//
// The returned value is marshaled as the response result. A returned error is
// translated into a JSON-RPC error with errors.Code and errors.Kind.
type MethodHandler func(ctx context.Context, s *session.Session, req *Request) (any, error)

// Dispatcher routes decoded requests to method handlers and emits one
// response event per request on the originating session.
type Dispatcher struct {
	log          *slog.Logger
	registry     *registry.Registry
	serverInfo   *mcp.Implementation
	instructions string

	handlersMu sync.RWMutex
	handlers   map[string]MethodHandler
}

// NewDispatcher creates a dispatcher serving the tools in reg.
// A nil opts uses config.DefaultOptions.
func NewDispatcher(log *slog.Logger, reg *registry.Registry, opts *config.Options) *Dispatcher {
	if opts == nil {
		opts = config.DefaultOptions()
	}

	d := &Dispatcher{
		log:      log.With("component", "protocol"),
		registry: reg,
		serverInfo: &mcp.Implementation{
			Name:    opts.ServerName,
			Version: opts.ServerVersion,
		},
		instructions: opts.Instructions,
		handlers:     make(map[string]MethodHandler, 8),
	}

	d.RegisterHandler(MethodInitialize, d.handleInitialize)
	d.RegisterHandler(MethodPing, d.handlePing)
	d.RegisterHandler(MethodToolsList, d.handleToolsList)
	d.RegisterHandler(MethodListTools, d.handleToolsList)
	d.RegisterHandler(MethodToolsCall, d.handleToolsCall)
	d.RegisterHandler(MethodCallTool, d.handleToolsCall)

	return d
}

// RegisterHandler registers a handler for a method.
// Registering the same method twice overrides the previous handler.
func (d *Dispatcher) RegisterHandler(method string, handler MethodHandler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()

	d.handlers[method] = handler
}

// Handle decodes and dispatches one submitted message. It never fails the
// session: every failure becomes an error response on the stream.
func (d *Dispatcher) Handle(ctx context.Context, s *session.Session, raw []byte) {
	log := d.log.With("session_id", s.ID())

	req, id, err := decodeRequest(raw)
	if err != nil {
		log.Warn("Rejected malformed message", "error", err)
		d.send(log, s, newError(id, err, ""))

		return
	}

	log = log.With("method", req.Method)

	if req.IsNotification() {
		d.handleNotification(log, req)

		return
	}

	d.handlersMu.RLock()
	handler, exists := d.handlers[req.Method]
	d.handlersMu.RUnlock()

	if !exists {
		log.Warn("No handler registered for method")
		d.send(log, s, newError(req.ID, &servererrors.ProtocolError{
			Code:    servererrors.CodeMethodNotFound,
			Message: "method not found: " + req.Method,
		}, ""))

		return
	}

	result, err := handler(ctx, s, req)
	if err != nil {
		var tool string
		if te, ok := errors.AsType[*toolScopedError](err); ok {
			tool = te.tool
		}

		log.Debug("Request failed", "error", err, "kind", servererrors.Kind(err))
		d.send(log, s, newError(req.ID, err, tool))

		return
	}

	resp, err := newResult(req.ID, result)
	if err != nil {
		log.Error("Failed to encode result", "error", err)
		d.send(log, s, newError(req.ID, err, ""))

		return
	}

	d.send(log, s, resp)
}

// send marshals a response and emits it as a message event. Responses for a
// closed session are dropped.
func (d *Dispatcher) send(log *slog.Logger, s *session.Session, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)

		return
	}

	if err := s.Emit(session.EventMessage, data); err != nil {
		log.Debug("Dropping response for closed session", "error", err)
	}
}

func (d *Dispatcher) handleNotification(log *slog.Logger, req *Request) {
	switch req.Method {
	case MethodInitialized:
		log.Debug("Client acknowledged initialization")
	case MethodCancelled:
		log.Debug("Client cancelled a request")
	default:
		log.Debug("Ignoring notification")
	}
}

func (d *Dispatcher) handlePing(context.Context, *session.Session, *Request) (any, error) {
	return struct{}{}, nil
}

func (d *Dispatcher) handleToolsList(context.Context, *session.Session, *Request) (any, error) {
	return &mcp.ListToolsResult{Tools: d.registry.List()}, nil
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, s *session.Session, req *Request) (any, error) {
	if s.State() != session.StateReady {
		return nil, servererrors.ErrSessionNotReady
	}

	var params mcp.CallToolParamsRaw
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &servererrors.ProtocolError{
				Code:    servererrors.CodeInvalidParams,
				Message: "invalid tools/call params",
				Err:     err,
			}
		}
	}

	if params.Name == "" {
		return nil, &servererrors.ProtocolError{
			Code:    servererrors.CodeInvalidParams,
			Message: "invalid tools/call params: name is required",
		}
	}

	entry, err := d.registry.Resolve(params.Name)
	if err != nil {
		return nil, &toolScopedError{tool: params.Name, err: err}
	}

	if _, err := entry.Validate(params.Arguments); err != nil {
		return nil, &toolScopedError{tool: params.Name, err: err}
	}

	log := d.log.With("session_id", s.ID(), "tool", params.Name)
	start := time.Now()

	result, err := entry.Call(ctx, params.Arguments)
	if errors.Is(err, servererrors.ErrInvalidArguments) {
		log.Debug("Tool rejected arguments", "error", err)

		return nil, &toolScopedError{tool: params.Name, err: err}
	}

	if err != nil {
		log.Warn("Tool execution failed", "error", err, "duration", time.Since(start))

		return toolFailureResult(err), nil
	}

	log.Debug("Tool call completed", "duration", time.Since(start), "is_error", result.IsError)

	return result, nil
}

// toolFailureResult reports a tool execution fault as an error result so the
// calling model can see and react to it.
func toolFailureResult(err error) *mcp.CallToolResult {
	cause := err
	if te, ok := errors.AsType[*servererrors.ToolError](err); ok && te.Err != nil {
		cause = te.Err
	}

	result := registry.ErrorResult("Tool execution failed: " + cause.Error())
	result.Meta = mcp.Meta{"kind": servererrors.KindToolExecutionError}

	return result
}

// toolScopedError attaches the requested tool name to a call failure so it
// can be reported in error.data.tool.
type toolScopedError struct {
	tool string
	err  error
}

func (e *toolScopedError) Error() string {
	if errors.Is(e.err, servererrors.ErrUnknownTool) {
		return fmt.Sprintf("unknown tool: %s", e.tool)
	}

	return e.err.Error()
}

func (e *toolScopedError) Unwrap() error {
	return e.err
}
