//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/riskmcp"
)

// TestLifecycle_Handshake tests that the SDK client completes initialize.
func TestLifecycle_Handshake(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv, endpoint := startServer(t,
		riskmcp.WithServerInfo("integration-server", "9.9.9"),
		riskmcp.WithInstructions("test instructions"),
	)

	session := connect(t, ctx, endpoint)

	info := session.InitializeResult()
	require.NotNil(t, info)
	require.Equal(t, "integration-server", info.ServerInfo.Name)
	require.Equal(t, "9.9.9", info.ServerInfo.Version)
	require.Equal(t, "test instructions", info.Instructions)
	require.NotNil(t, info.Capabilities.Tools)

	require.Equal(t, 1, srv.Sessions())
	require.NoError(t, session.Ping(ctx, nil))
}

// TestLifecycle_CloseRemovesSession tests that closing the client stream
// removes the session from the table.
func TestLifecycle_CloseRemovesSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv, endpoint := startServer(t)

	session := connect(t, ctx, endpoint)
	require.Equal(t, 1, srv.Sessions())

	require.NoError(t, session.Close())
	require.Eventually(t, func() bool { return srv.Sessions() == 0 }, 5*time.Second, 20*time.Millisecond)
}

// TestLifecycle_ShutdownEndsSessions tests that server shutdown closes
// connected clients.
func TestLifecycle_ShutdownEndsSessions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv, endpoint := startServer(t)
	session := connect(t, ctx, endpoint)

	require.NoError(t, srv.Shutdown(ctx))
	require.Equal(t, 0, srv.Sessions())

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()

	done := make(chan error, 1)

	go func() { done <- session.Wait() }()

	select {
	case <-done:
	case <-waitCtx.Done():
		t.Fatal("client session did not end after server shutdown")
	}
}
