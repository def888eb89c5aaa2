package riskmcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/riskmcp/internal/registry"
)

// Re-export MCP SDK types for public API.
// These are the official MCP protocol types.
type (
	// CallToolResult is the server's response to a tool call.
	// Use TextResult, ErrorResult, or ImageResult helpers to create results.
	CallToolResult = mcp.CallToolResult

	// CallToolRequest is the request passed to tool handlers.
	CallToolRequest = mcp.CallToolRequest

	// McpContent is the interface for content types in tool results.
	McpContent = mcp.Content

	// McpTextContent represents text content in a tool result.
	McpTextContent = mcp.TextContent

	// McpImageContent represents image content in a tool result.
	McpImageContent = mcp.ImageContent

	// McpResourceContents is the payload of an embedded resource.
	McpResourceContents = mcp.ResourceContents

	// McpTool represents an MCP tool definition from the official SDK.
	McpTool = mcp.Tool

	// McpToolAnnotations describes optional hints about tool behavior.
	// Fields include ReadOnlyHint, DestructiveHint, IdempotentHint,
	// OpenWorldHint, and Title.
	McpToolAnnotations = mcp.ToolAnnotations

	// Schema is a JSON Schema object for tool input validation.
	Schema = jsonschema.Schema

	// Property describes one argument of a schema built with ObjectSchema.
	Property = registry.Property
)

// ToolHandler is the function signature for tool handlers.
// It receives the context and request, and returns the result.
//
// The context is cancelled when the calling session closes. Use
// ParseArguments to extract input as map[string]any from the request.
//
// Example:
//
//	func(ctx context.Context, req *riskmcp.CallToolRequest) (*riskmcp.CallToolResult, error) {
//	    args, err := riskmcp.ParseArguments(req)
//	    if err != nil {
//	        return riskmcp.ErrorResult(err.Error()), nil
//	    }
//	    a := args["a"].(float64)
//	    return riskmcp.TextResult(fmt.Sprintf("Result: %v", a)), nil
//	}
type ToolHandler = mcp.ToolHandler

// ToolOption configures a Tool during construction.
type ToolOption func(*Tool)

// WithAnnotations sets MCP tool annotations (hints about tool behavior).
func WithAnnotations(annotations *mcp.ToolAnnotations) ToolOption {
	return func(t *Tool) {
		t.ToolAnnotations = annotations
	}
}

// WithTitle sets the human-readable title of the tool.
func WithTitle(title string) ToolOption {
	return func(t *Tool) {
		t.ToolTitle = title
	}
}

// Tool is a tool definition together with its handler.
type Tool struct {
	ToolName        string
	ToolTitle       string
	ToolDescription string
	ToolSchema      *jsonschema.Schema
	ToolHandler     ToolHandler
	ToolAnnotations *mcp.ToolAnnotations
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.ToolName
}

// Description returns the tool description.
func (t *Tool) Description() string {
	return t.ToolDescription
}

// InputSchema returns the JSON Schema for the tool input.
func (t *Tool) InputSchema() *jsonschema.Schema {
	return t.ToolSchema
}

// Handler returns the tool handler function.
func (t *Tool) Handler() ToolHandler {
	return t.ToolHandler
}

// Annotations returns the tool annotations, or nil if not set.
func (t *Tool) Annotations() *mcp.ToolAnnotations {
	return t.ToolAnnotations
}

// mcpTool converts t to its wire definition.
func (t *Tool) mcpTool() *mcp.Tool {
	tool := registry.NewTool(t.ToolName, t.ToolDescription, t.ToolSchema)
	tool.Title = t.ToolTitle
	tool.Annotations = t.ToolAnnotations

	return tool
}

// NewTool creates a Tool with optional configuration.
//
// A nil inputSchema accepts any object. Use SimpleSchema or ObjectSchema
// for convenience or create a full Schema struct for more control.
//
// Example with SimpleSchema:
//
//	addTool := riskmcp.NewTool("add", "Add two numbers",
//	    riskmcp.SimpleSchema(map[string]string{"a": "float64", "b": "float64"}),
//	    func(ctx context.Context, req *riskmcp.CallToolRequest) (*riskmcp.CallToolResult, error) {
//	        args, _ := riskmcp.ParseArguments(req)
//	        a, b := args["a"].(float64), args["b"].(float64)
//	        return riskmcp.TextResult(fmt.Sprintf("Result: %v", a+b)), nil
//	    },
//	    riskmcp.WithAnnotations(&riskmcp.McpToolAnnotations{
//	        ReadOnlyHint: true,
//	    }),
//	)
func NewTool(
	name, description string,
	inputSchema *jsonschema.Schema,
	handler ToolHandler,
	opts ...ToolOption,
) *Tool {
	t := &Tool{
		ToolName:        name,
		ToolDescription: description,
		ToolSchema:      inputSchema,
		ToolHandler:     handler,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// SimpleSchema creates a jsonschema.Schema from a simple type map.
// Every property is required.
//
// Input format: {"a": "float64", "b": "string"}
//
// Type mappings:
//   - "string"           → {"type": "string"}
//   - "int", "int64"     → {"type": "integer"}
//   - "float64", "float" → {"type": "number"}
//   - "bool"             → {"type": "boolean"}
//   - "[]string"         → {"type": "array", "items": {"type": "string"}}
//   - "any", "object"    → {"type": "object"}
func SimpleSchema(props map[string]string) *jsonschema.Schema {
	return registry.SimpleSchema(props)
}

// ObjectSchema creates an object schema with optional properties, enums
// and numeric bounds.
func ObjectSchema(props map[string]Property) *jsonschema.Schema {
	return registry.ObjectSchema(props)
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return registry.TextResult(text)
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return registry.ErrorResult(message)
}

// ImageResult creates a CallToolResult with image content.
func ImageResult(data []byte, mimeType string) *mcp.CallToolResult {
	return registry.ImageResult(data, mimeType)
}

// ResourceResult creates a CallToolResult with a text summary followed by
// embedded resources.
func ResourceResult(summary string, resources ...*mcp.ResourceContents) *mcp.CallToolResult {
	return registry.ResourceResult(summary, resources...)
}

// JSONResource marshals v into an application/json resource at uri.
func JSONResource(uri string, v any) (*mcp.ResourceContents, error) {
	return registry.JSONResource(uri, v)
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
// This is a convenience function for extracting tool input.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	return registry.ParseArguments(req)
}
