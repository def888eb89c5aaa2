package riskmcp

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json at warn", func(t *testing.T) {
		var buf bytes.Buffer

		log, err := NewLogger(&buf, "warn", "json")
		require.NoError(t, err)

		log.Info("hidden")
		log.Warn("shown", "session_id", "abc")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "shown", entry["msg"])
		require.Equal(t, "abc", entry["session_id"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		log, err := NewLogger(&buf, "debug", "")
		require.NoError(t, err)

		log.Debug("hello")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewLogger(&bytes.Buffer{}, "loud", "text")
		require.ErrorContains(t, err, "invalid log level")

		_, err = NewLogger(&bytes.Buffer{}, "info", "xml")
		require.ErrorContains(t, err, "invalid log format")
	})
}

func TestNopLogger(t *testing.T) {
	require.NotNil(t, NopLogger())
	NopLogger().Error("discarded")
}
