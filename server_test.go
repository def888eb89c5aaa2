package riskmcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumTool() *Tool {
	return NewTool("calculate_sum", "Add two integers",
		SimpleSchema(map[string]string{"a": "int", "b": "int"}),
		func(_ context.Context, req *CallToolRequest) (*CallToolResult, error) {
			args, err := ParseArguments(req)
			if err != nil {
				return nil, err
			}

			return TextResult(fmt.Sprintf("The sum is %v", args["a"].(float64)+args["b"].(float64))), nil
		},
	)
}

// sseReader reads "event:"/"data:" pairs from an SSE stream.
type sseReader struct {
	r *bufio.Reader
}

func (s *sseReader) next(t *testing.T) (event, data string) {
	t.Helper()

	for {
		line, err := s.r.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func openSession(t *testing.T, baseURL string) (*sseReader, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/sse", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	reader := &sseReader{r: bufio.NewReader(resp.Body)}

	event, endpoint := reader.next(t)
	require.Equal(t, "endpoint", event)
	require.True(t, strings.HasPrefix(endpoint, "/messages?sessionId="))

	return reader, baseURL + endpoint
}

func postMessage(t *testing.T, url, body string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestServer_EndToEnd(t *testing.T) {
	srv, err := New(
		WithServerInfo("test-server", "1.2.3"),
		WithTools(sumTool()),
		WithHandshakeTimeout(0),
	)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	stream, endpoint := openSession(t, ts.URL)
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	postMessage(t, endpoint, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"t","version":"0"}}}`)
	postMessage(t, endpoint, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	postMessage(t, endpoint, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"calculate_sum","arguments":{"a":2,"b":3}}}`)

	var initResp struct {
		ID     int `json:"id"`
		Result struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}

	event, data := stream.next(t)
	require.Equal(t, "message", event)
	require.NoError(t, json.Unmarshal([]byte(data), &initResp))
	assert.Equal(t, 1, initResp.ID)
	assert.Equal(t, "2025-06-18", initResp.Result.ProtocolVersion)
	assert.Equal(t, "test-server", initResp.Result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", initResp.Result.ServerInfo.Version)

	_, data = stream.next(t)

	var callResp struct {
		ID     int `json:"id"`
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}

	require.NoError(t, json.Unmarshal([]byte(data), &callResp))
	assert.Equal(t, 2, callResp.ID)
	require.Len(t, callResp.Result.Content, 1)
	assert.Equal(t, "The sum is 5", callResp.Result.Content[0].Text)
}

func TestServer_RegisterAfterNew(t *testing.T) {
	srv, err := New()
	require.NoError(t, err)

	require.NoError(t, srv.Register(sumTool()))
	require.Error(t, srv.Register(sumTool()))
	require.Error(t, srv.Register(nil))

	type echoInput struct {
		Text string `json:"text" jsonschema:"Text to echo"`
	}

	require.NoError(t, AddTool(srv, "echo", "Echo text", func(_ context.Context, in echoInput) (*CallToolResult, error) {
		return TextResult(in.Text), nil
	}))

	tools := srv.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "calculate_sum", tools[0].Name)
	assert.Equal(t, "echo", tools[1].Name)
	assert.Equal(t, 2, srv.Registry().Len())
}

func TestNew_DuplicateTools(t *testing.T) {
	_, err := New(WithTools(sumTool(), sumTool()))
	require.ErrorContains(t, err, "failed to register tool")
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	srv, err := New(WithTools(sumTool()))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)

	go func() {
		served <- srv.Serve(ctx, ln)
	}()

	baseURL := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	_, _ = openSession(t, baseURL)

	cancel()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("Serve did not return after cancel")
	}

	assert.Equal(t, 0, srv.Sessions())
}

func TestWithServer(t *testing.T) {
	var health map[string]any

	err := WithServer(context.Background(), "127.0.0.1:0", func(_ context.Context, baseURL string) error {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		return json.NewDecoder(resp.Body).Decode(&health)
	}, WithTools(sumTool()))

	require.NoError(t, err)
	assert.Equal(t, "ok", health["status"])
	assert.InDelta(t, 1, health["tools"], 0)
}

func TestWithServer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithServer(ctx, "127.0.0.1:0", func(context.Context, string) error {
		called = true

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
