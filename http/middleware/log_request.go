package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/xy-planning-network/reqargs"
)

// A LogRequestRecord is everything LogRequest logs about a request and the response to it.
type LogRequestRecord struct {
	BodySize       int    `json:"bodySize"`
	Host           string `json:"host"`
	ID             string `json:"id"`
	IPAddr         string `json:"ipAddr"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	Protocol       string `json:"protocol"`
	Referrer       string `json:"referrer"`
	ReqContentType string `json:"reqContentType"`
	Scheme         string `json:"scheme"`
	Status         int    `json:"status"`
	URI            string `json:"uri"`
	UserAgent      string `json:"userAgent"`
}

// LogRequest logs a LogRequestRecord for every request once a response is written,
// using the enclosed [*log/slog.Logger].
//
// LogRequest scrubs the values for the following query params:
// - password
//
// if l is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(l *slog.Logger) Adapter {
	if l == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, h, func(_ io.Writer, p handlers.LogFormatterParams) {
			rec := newLogRequestRecord(p)
			l.LogAttrs(
				context.Background(),
				slog.LevelInfo,
				"",
				slog.Int("bodySize", rec.BodySize),
				slog.String("host", rec.Host),
				slog.String("id", rec.ID),
				slog.String("ipAddr", rec.IPAddr),
				slog.String("method", rec.Method),
				slog.String("path", rec.Path),
				slog.String("protocol", rec.Protocol),
				slog.String("referrer", rec.Referrer),
				slog.String("reqContentType", rec.ReqContentType),
				slog.String("scheme", rec.Scheme),
				slog.Int("status", rec.Status),
				slog.String("uri", rec.URI),
				slog.String("userAgent", rec.UserAgent),
			)
		})
	}
}

// newLogRequestRecord collects the parts of p worth logging.
func newLogRequestRecord(p handlers.LogFormatterParams) LogRequestRecord {
	r := p.Request
	u := p.URL

	q := u.Query()
	reqargs.Mask(q, "password")

	uri := u.Path
	if len(q) > 0 {
		uri += "?" + q.Encode()
	}

	rec := LogRequestRecord{
		BodySize:       p.Size,
		Host:           r.Host,
		Method:         r.Method,
		Path:           u.Path,
		Protocol:       r.Proto,
		Referrer:       r.Header.Get("Referrer"),
		ReqContentType: r.Header.Get("Content-Type"),
		Scheme:         u.Scheme,
		Status:         p.StatusCode,
		URI:            uri,
		UserAgent:      r.UserAgent(),
	}

	if id, ok := r.Context().Value(reqargs.RequestIDKey).(string); ok {
		rec.ID = id
	}

	if ip, ok := r.Context().Value(reqargs.IpAddrKey).(string); ok {
		rec.IPAddr = ip
	}

	return rec
}
