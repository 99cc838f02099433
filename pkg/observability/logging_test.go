package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "info", Format: "json", ServiceName: "link-service"})

	logger.Info("bank item linked", "item_id", "item-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bank item linked", entry["msg"])
	assert.Equal(t, "link-service", entry["service"])
	assert.Equal(t, "item-1", entry["item_id"])
}

func TestNewLogger_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogConfig{}).Info("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), buf.String())
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogConfig{Format: "text"}).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "debug"})

	logger.Info("exchange",
		"access_token", "access-sandbox-123",
		"public_token", "public-sandbox-456",
		slog.Group("plaid", "secret", "shh"),
		"item_id", "item-1",
	)

	out := buf.String()
	assert.NotContains(t, out, "access-sandbox-123")
	assert.NotContains(t, out, "public-sandbox-456")
	assert.NotContains(t, out, "shh")
	assert.Contains(t, out, "item-1")
	assert.Contains(t, out, redactedValue)
}

func TestInitLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := InitLogger(LogConfig{Level: "error"})
	assert.Same(t, logger, slog.Default())
}
