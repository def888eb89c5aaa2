package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

// Registry holds the tools advertised by the server.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Entry
	order []string
}

// Entry is a registered tool with its resolved input schema.
type Entry struct {
	tool     *mcp.Tool
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	handler  mcp.ToolHandler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]*Entry, 8),
	}
}

// Register adds a tool to the registry.
//
// The tool's InputSchema may be a *jsonschema.Schema, any value that marshals
// to a JSON Schema object, or nil for a tool without arguments.
func (r *Registry) Register(tool *mcp.Tool, handler mcp.ToolHandler) error {
	if tool == nil || tool.Name == "" {
		return errors.New("register tool: name is required")
	}

	if handler == nil {
		return fmt.Errorf("register tool %q: handler is required", tool.Name)
	}

	schema, err := toSchema(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("register tool %q: %w", tool.Name, err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("register tool %q: resolve input schema: %w", tool.Name, err)
	}

	stored := *tool
	stored.InputSchema = schema

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("register tool %q: already registered", tool.Name)
	}

	r.tools[tool.Name] = &Entry{
		tool:     &stored,
		schema:   schema,
		resolved: resolved,
		handler:  handler,
	}
	r.order = append(r.order, tool.Name)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool *mcp.Tool, handler mcp.ToolHandler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// AddTool registers a typed tool. The input schema is inferred from In and
// validated arguments are decoded into In before fn runs. Arguments that pass
// the schema but do not fit In fail with a *errors.ArgumentError.
func AddTool[In any](
	r *Registry,
	name, description string,
	fn func(ctx context.Context, in In) (*mcp.CallToolResult, error),
) error {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("register tool %q: infer input schema: %w", name, err)
	}

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in In

		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				return nil, &servererrors.ArgumentError{Tool: name, Err: fmt.Errorf("decode arguments: %w", err)}
			}
		}

		return fn(ctx, in)
	}

	return r.Register(NewTool(name, description, schema), handler)
}

// List returns the registered tools in registration order.
// The returned tools are copies and may be modified by the caller.
func (r *Registry) List() []*mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tool := *r.tools[name].tool
		result = append(result, &tool)
	}

	return result
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (*Entry, error) {
	r.mu.RLock()
	entry, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", servererrors.ErrUnknownTool, name)
	}

	return entry, nil
}

// Tool returns a copy of the entry's tool description.
func (e *Entry) Tool() *mcp.Tool {
	tool := *e.tool

	return &tool
}

// Name returns the tool name.
func (e *Entry) Name() string {
	return e.tool.Name
}

// Validate checks raw call arguments against the tool's input schema.
// Absent or null arguments are treated as an empty object.
func (e *Entry) Validate(args json.RawMessage) (map[string]any, error) {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	var decoded any
	if err := json.Unmarshal(args, &decoded); err != nil {
		return nil, &servererrors.ArgumentError{Tool: e.tool.Name, Err: err}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &servererrors.ArgumentError{
			Tool: e.tool.Name,
			Err:  fmt.Errorf("arguments must be a JSON object, got %T", decoded),
		}
	}

	if err := e.resolved.Validate(obj); err != nil {
		return nil, &servererrors.ArgumentError{Tool: e.tool.Name, Err: err}
	}

	return obj, nil
}

// Call executes the tool handler with the raw arguments of a validated call.
// The bytes reach the handler unchanged so numeric precision is preserved;
// absent or null arguments become an empty object.
//
// A handler error or panic is returned as a *errors.ToolError, except a
// *errors.ArgumentError which is returned as is. A nil result from the
// handler is replaced with an empty result.
func (e *Entry) Call(ctx context.Context, args json.RawMessage) (result *mcp.CallToolResult, err error) {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      e.tool.Name,
			Arguments: args,
		},
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &servererrors.ToolError{
				Tool: e.tool.Name,
				Err:  fmt.Errorf("panic: %v", rec),
			}
		}
	}()

	result, err = e.handler(ctx, req)
	if err != nil {
		if argErr, ok := errors.AsType[*servererrors.ArgumentError](err); ok {
			return nil, argErr
		}

		return nil, &servererrors.ToolError{Tool: e.tool.Name, Err: err}
	}

	if result == nil {
		result = &mcp.CallToolResult{}
	}

	if result.Content == nil {
		result.Content = []mcp.Content{}
	}

	return result, nil
}

// toSchema normalizes a tool's InputSchema into a *jsonschema.Schema.
func toSchema(v any) (*jsonschema.Schema, error) {
	switch s := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "object"}, nil
	case *jsonschema.Schema:
		if s == nil {
			return &jsonschema.Schema{Type: "object"}, nil
		}

		return s, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse input schema: %w", err)
	}

	if schema.Type != "object" {
		return nil, fmt.Errorf("input schema type must be \"object\", got %q", schema.Type)
	}

	return &schema, nil
}
