package registry

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// ImageResult creates a CallToolResult with image content.
func ImageResult(data []byte, mimeType string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: mimeType},
		},
	}
}

// ResourceResult creates a CallToolResult with a text summary followed by
// embedded resources. An empty summary is omitted.
func ResourceResult(summary string, resources ...*mcp.ResourceContents) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(resources)+1)
	if summary != "" {
		content = append(content, &mcp.TextContent{Text: summary})
	}

	for _, r := range resources {
		content = append(content, &mcp.EmbeddedResource{Resource: r})
	}

	return &mcp.CallToolResult{Content: content}
}

// JSONResource marshals v into an application/json resource at uri.
func JSONResource(uri string, v any) (*mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal resource %s: %w", uri, err)
	}

	return &mcp.ResourceContents{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}, nil
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil {
		return make(map[string]any), nil
	}

	if len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
