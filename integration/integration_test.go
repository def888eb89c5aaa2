//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/riskmcp"
	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/embedder"
	"github.com/wagiedev/riskmcp/internal/tools"
)

// startEmbedder serves a fake embedding service returning 3-dimensional
// vectors.
func startEmbedder(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		vectors := make([][]float64, len(req.Texts))
		for i, text := range req.Texts {
			vectors[i] = []float64{float64(len(text)), 0, 1}
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": vectors,
			"model_name": "all-MiniLM-L6-v2",
			"dimension":  3,
		})
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

// startServer runs a server with the built-in tools and returns its SSE
// endpoint.
func startServer(t *testing.T, opts ...riskmcp.Option) (*riskmcp.Server, string) {
	t.Helper()

	srv, err := riskmcp.New(opts...)
	require.NoError(t, err)

	require.NoError(t, tools.Register(srv.Registry(), tools.Options{
		Embedder: embedder.New(startEmbedder(t), nil),
		Analysis: analysis.NewService(riskmcp.NopLogger(), analysis.Local{}, analysis.ServiceOptions{}),
	}))

	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
		ts.Close()
	})

	return srv, ts.URL + "/sse"
}

// connect opens a client session over SSE and completes the handshake.
func connect(t *testing.T, ctx context.Context, endpoint string) *mcp.ClientSession {
	t.Helper()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, &mcp.SSEClientTransport{Endpoint: endpoint}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = session.Close() })

	return session
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content is %T", result.Content[0])

	return text.Text
}
