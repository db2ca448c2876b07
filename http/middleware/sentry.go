package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/reqargs"
)

// ReportPanic recovers from and reports panics to Sentry,
// responding with http.StatusInternalServerError.
//
// If env is development, NoopAdapter returns and panics are left to crash the request as usual.
func ReportPanic(env reqargs.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler {
		return sh.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					w.WriteHeader(http.StatusInternalServerError)
					panic(rec)
				}
			}()

			h.ServeHTTP(w, r)
		}))
	}
}
