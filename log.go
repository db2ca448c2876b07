package reqargs

import (
	"log/slog"
	"net/url"
	"strings"
)

const (
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"
)

var (
	AppLogKind  = slog.StringValue("app")
	HTTPLogKind = slog.StringValue("http")

	// MaskedLogValue is a convenience [log/slog.Value]
	// to be used in implementations of [log/slog.LogValuer]
	// to hide sensitive data from log messages.
	MaskedLogValue = slog.StringValue(LogMaskVal)
)

// Mask replaces the values stored under key in vals with a single [LogMaskVal].
// Keys are matched case-insensitively.
func Mask(vals url.Values, key string) {
	if key == "" {
		return
	}

	for k := range vals {
		if strings.EqualFold(k, key) {
			vals[k] = []string{LogMaskVal}
		}
	}
}

// NewLogLevel translates val into a [log/slog.Level],
// defaulting to [log/slog.LevelInfo] for unknown values.
func NewLogLevel(val string) slog.Level {
	switch strings.ToUpper(val) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
