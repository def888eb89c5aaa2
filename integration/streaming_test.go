//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/riskmcp/internal/tools"
)

// TestStreaming_ConcurrentSessions tests that sessions are served
// independently and each sees its own results.
func TestStreaming_ConcurrentSessions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	srv, endpoint := startServer(t)

	const sessions = 5

	clients := make([]*mcp.ClientSession, sessions)
	for i := range clients {
		clients[i] = connect(t, ctx, endpoint)
	}

	require.Equal(t, sessions, srv.Sessions())

	var wg sync.WaitGroup

	for i, session := range clients {
		wg.Go(func() {
			for j := range 10 {
				result, err := session.CallTool(ctx, &mcp.CallToolParams{
					Name:      tools.NameCalculateSum,
					Arguments: map[string]any{"a": i * 100, "b": j},
				})
				if !assert.NoError(t, err) {
					return
				}

				text, ok := result.Content[0].(*mcp.TextContent)
				if assert.True(t, ok) {
					assert.Equal(t, fmt.Sprintf("The sum is %d", i*100+j), text.Text)
				}
			}
		})
	}

	wg.Wait()
}
