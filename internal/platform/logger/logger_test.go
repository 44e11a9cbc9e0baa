package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json output at configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "warn", "json")
		log.Info("hidden")
		log.Warn("shown", "attempt_id", "a1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "shown", line["msg"])
		assert.Equal(t, "a1", line["attempt_id"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "debug", "text").Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
	})
}
