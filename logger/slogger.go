package logger

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/xy-planning-network/reqargs"
)

const (
	logLevelEnvVar = "LOG_LEVEL"
	logJSONEnvVar  = "LOG_JSON"
)

// NewSlogger toggles constructing the specific [*log/slog.Logger]
// from the given parameters.
//
// Outside of development, or when LOG_JSON is true, records are JSON.
// Otherwise, application logs go through a colorized console handler
// and HTTP logs through a plain text handler.
func NewSlogger(kind slog.Value, env reqargs.Environment, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(reqargs.EnvVarOrLogLevel(logLevelEnvVar, slog.LevelInfo))

	useJSON := !env.IsDevelopment() || reqargs.EnvVarOrBool(logJSONEnvVar, false)
	isHTTP := kind.String() == reqargs.HTTPLogKind.String()

	var handler slog.Handler
	switch {
	case useJSON && !isHTTP:
		opts := &slog.HandlerOptions{
			AddSource:   true,
			Level:       lvl,
			ReplaceAttr: TruncSourceAttr,
		}
		handler = slog.NewJSONHandler(out, opts)

	case !useJSON && !isHTTP:
		opts := &tint.Options{
			AddSource:  true,
			Level:      lvl,
			TimeFormat: "2006-01-02 15:04:05.000",
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = ColorizeLevel(groups, a)
				return TruncSourceAttr(groups, a)
			},
		}
		handler = tint.NewHandler(out, opts)

	case useJSON:
		opts := &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = DeleteLevelAttr(groups, a)
				return DeleteMessageAttr(groups, a)
			},
		}
		handler = slog.NewJSONHandler(out, opts)

	default:
		opts := &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = DeleteLevelAttr(groups, a)
				return DeleteMessageAttr(groups, a)
			},
		}
		handler = slog.NewTextHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		{Key: reqargs.LogKindKey, Value: kind},
	})

	return slog.New(handler)
}
