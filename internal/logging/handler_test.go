package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSetup_AddsServiceAndEnvironment(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("authapi", "test", "json", "info", &buf)

	logger.Info("hello", "k", "v")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "authapi", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "v", entry["k"])
	assert.NotContains(t, entry, "request_id")
}

func TestSetup_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("authapi", "test", "json", "info", &buf)

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-123")
	logger.InfoContext(ctx, "with request")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestSetup_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("authapi", "test", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("authapi", "test", "text", "debug", &buf)

	logger.With("component", "x").Debug("text line")
	assert.Contains(t, buf.String(), "msg=\"text line\"")
	assert.Contains(t, buf.String(), "service=authapi")
	assert.Contains(t, buf.String(), "component=x")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestLogError(t *testing.T) {
	t.Run("oops error carries code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup("authapi", "test", "json", "info", &buf)

		err := oops.Code("MAIL_SEND_FAILED").With("provider", "mailgun").Errorf("boom")
		LogError(context.Background(), logger, "send failed", err)

		entry := decodeLine(t, &buf)
		assert.Equal(t, "send failed", entry["msg"])
		assert.Equal(t, "MAIL_SEND_FAILED", entry["code"])
		ctxAttr, ok := entry["context"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "mailgun", ctxAttr["provider"])
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup("authapi", "test", "json", "info", &buf)

		LogError(context.Background(), logger, "plain", errors.New("nope"))

		entry := decodeLine(t, &buf)
		assert.Equal(t, "nope", entry["error"])
		assert.NotContains(t, entry, "code")
	})
}
