package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/logger"
)

func newTestLogger(b *bytes.Buffer, lvl slog.Level) *logger.AppLogger {
	h := slog.NewJSONHandler(b, &slog.HandlerOptions{
		AddSource:   true,
		Level:       lvl,
		ReplaceAttr: logger.TruncSourceAttr,
	})

	return logger.New(slog.New(h))
}

func decodeRecord(t *testing.T, b *bytes.Buffer) map[string]any {
	t.Helper()

	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b.Bytes(), &m))
	b.Reset()

	return m
}

func TestAppLoggerLevels(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, slog.LevelWarn)

	// Act
	l.Debug("debug", nil)
	l.Info("info", nil)

	// Assert
	require.Zero(t, b.Len())

	// Act
	l.Warn("warn", nil)

	// Assert
	m := decodeRecord(t, b)
	require.Equal(t, "WARN", m[slog.LevelKey])
	require.Equal(t, "warn", m[slog.MessageKey])

	// Act
	l.Error("error", nil)

	// Assert
	m = decodeRecord(t, b)
	require.Equal(t, "ERROR", m[slog.LevelKey])
}

func TestAppLoggerSource(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, slog.LevelDebug)

	// Act
	l.Info("here", nil)

	// Assert
	m := decodeRecord(t, b)
	src, ok := m[slog.SourceKey].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(src, "logger/logger_test.go:"), src)

	// Act
	l.Info("there", &logger.LogContext{Caller: "elsewhere.go:1"})

	// Assert
	m = decodeRecord(t, b)
	require.Equal(t, "elsewhere.go:1", m[slog.SourceKey])
}

func TestAppLoggerLogContext(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, slog.LevelDebug)
	r := httptest.NewRequest(http.MethodPost, "https://example.com/echo?password=hunter2", nil)
	r.Header.Set("Content-Type", "application/json")

	// Act
	l.Error("failed", &logger.LogContext{
		Data:    map[string]any{"name": "Fred"},
		Error:   errors.New("oops"),
		Request: r,
	})

	// Assert
	m := decodeRecord(t, b)
	lc, ok := m[logger.LogContextKey].(map[string]any)
	require.True(t, ok)
	require.Equal(t, map[string]any{"name": "Fred"}, lc["data"])
	require.Equal(t, "oops", lc["error"])
	require.Equal(t, map[string]any{
		"method":       http.MethodPost,
		"url":          "https://example.com/echo?password=" + reqargs.LogMaskVal,
		"content_type": "application/json",
	}, lc["request"])
}

func TestAppLoggerAddSkip(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l := newTestLogger(b, slog.LevelDebug)

	// Act
	sl := l.AddSkip(1)

	// Assert
	require.Equal(t, 1, sl.Skip())
	require.Equal(t, 0, l.Skip())
}

func TestCurrentCaller(t *testing.T) {
	var actual string
	func() { actual = logger.CurrentCaller() }()

	require.True(t, strings.HasPrefix(actual, "logger/logger_test.go:"), actual)
}
