package logger

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgWhite),
	slog.LevelInfo:  color.New(color.FgBlue),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

// ColorizeLevel paints the level attribute according to its severity.
//
// ColorizeLevel is meant for a ReplaceAttr func on a console handler.
func ColorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	c, ok := levelColors[lvl]
	if !ok {
		c = color.New(color.FgMagenta)
	}

	return slog.String(slog.LevelKey, c.Sprint(lvl.String()))
}

// DeleteLevelAttr drops the level attribute.
func DeleteLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		return slog.Attr{}
	}

	return a
}

// DeleteMessageAttr drops the message attribute.
func DeleteMessageAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.MessageKey {
		return slog.Attr{}
	}

	return a
}

// TruncSourceAttr shortens the source attribute to the file's directory,
// file name and line number.
//
// e.g.,:
// /home/dlk/my-project/internal/internal.go:12 => internal/internal.go:12
func TruncSourceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}

	src, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}

	dir, file := path.Split(src.File)
	return slog.String(slog.SourceKey, fmt.Sprintf(callerTmpl, path.Join(path.Base(dir), file), src.Line))
}
