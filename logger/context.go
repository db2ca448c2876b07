package logger

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"runtime"

	"github.com/xy-planning-network/reqargs"
)

// LogContextKey is the attribute key a LogContext is logged under.
const LogContextKey = "log_context"

const callerTmpl = "%s:%d"

var (
	_ slog.LogValuer = LogContext{}
)

// A LogContext provides additional information and configuration
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	//
	// Request bodies are never logged; query params named "password" are masked.
	Request *http.Request
}

// LogValue groups the non-zero fields of LogContext.
//
// LogValue implements [log/slog.LogValuer].
func (lc LogContext) LogValue() slog.Value {
	var attrs []slog.Attr
	if len(lc.Data) > 0 {
		data := make([]any, 0, len(lc.Data))
		for k, v := range lc.Data {
			data = append(data, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("data", data...))
	}

	if lc.Error != nil {
		attrs = append(attrs, slog.String("error", lc.Error.Error()))
	}

	if lc.Request != nil {
		attrs = append(attrs, slog.Group("request", requestAttrs(lc.Request)...))
	}

	return slog.GroupValue(attrs...)
}

func requestAttrs(r *http.Request) []any {
	attrs := []any{slog.String("method", r.Method)}
	if r.URL != nil {
		u := *r.URL
		q := u.Query()
		reqargs.Mask(q, "password")
		u.RawQuery = q.Encode()
		attrs = append(attrs, slog.String("url", u.String()))
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		attrs = append(attrs, slog.String("content_type", ct))
	}

	if id, ok := r.Context().Value(reqargs.RequestIDKey).(string); ok {
		attrs = append(attrs, slog.String("id", id))
	}

	return attrs
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() { 		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	dir, base := path.Split(file)
	return fmt.Sprintf(callerTmpl, path.Join(path.Base(dir), base), line)
}
