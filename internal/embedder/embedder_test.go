package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

func newEmbedServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, nil)
}

func TestEmbed(t *testing.T) {
	var received embedRequest

	client := newEmbedServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
			"model_name": "all-MiniLM-L6-v2",
			"dimension":  3,
		})
	})

	out, err := client.Embed(context.Background(), []string{"hello", "world"}, true)
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world"}, received.Texts)
	require.True(t, received.Normalize)

	require.Equal(t, "all-MiniLM-L6-v2", out.ModelName)
	require.Equal(t, 3, out.Dimension)
	require.Len(t, out.Vectors, 2)
	require.InDelta(t, 0.6, out.Vectors[1][2], 1e-9)
}

func TestEmbed_InfersDimension(t *testing.T) {
	client := newEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2,3,4]],"model_name":"m"}`))
	})

	out, err := client.Embed(context.Background(), []string{"x"}, false)
	require.NoError(t, err)
	require.Equal(t, 4, out.Dimension)
}

func TestEmbed_Errors(t *testing.T) {
	t.Run("no texts", func(t *testing.T) {
		_, err := New("http://unused", nil).Embed(context.Background(), nil, true)
		require.ErrorIs(t, err, ErrNoTexts)
	})

	t.Run("too many texts", func(t *testing.T) {
		_, err := New("http://unused", nil).Embed(context.Background(), make([]string, MaxTexts+1), true)
		require.ErrorContains(t, err, "too many texts")
	})

	t.Run("service error detail", func(t *testing.T) {
		client := newEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail":"Model not loaded"}`))
		})

		_, err := client.Embed(context.Background(), []string{"x"}, true)

		collabErr, ok := errors.AsType[*servererrors.CollaboratorError](err)
		require.True(t, ok)
		require.Equal(t, http.StatusServiceUnavailable, collabErr.StatusCode)
		require.Equal(t, "embedder request failed (status 503): Model not loaded", err.Error())
	})

	t.Run("count mismatch", func(t *testing.T) {
		client := newEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"embeddings":[[1]],"model_name":"m","dimension":1}`))
		})

		_, err := client.Embed(context.Background(), []string{"a", "b"}, true)
		require.ErrorContains(t, err, "expected 2 embeddings, got 1")
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Embed(ctx, []string{"a"}, true)
		require.ErrorIs(t, err, context.Canceled)
	})
}
