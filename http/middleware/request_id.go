package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/reqargs"
)

// RequestIDHeader carries a request's ID to and from clients.
const RequestIDHeader = "X-Request-Id"

// RequestID adds a uuid to the request context under reqargs.RequestIDKey
// and echoes it in the RequestIDHeader of the response.
//
// A valid uuid a client sent in the RequestIDHeader is kept.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
			if err != nil {
				id = uuid.New()
			}

			w.Header().Set(RequestIDHeader, id.String())
			ctx := context.WithValue(r.Context(), reqargs.RequestIDKey, id.String())
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
