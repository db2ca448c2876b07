package ranger

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/middleware"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/resp"
	"github.com/xy-planning-network/reqargs/http/router"
	"github.com/xy-planning-network/reqargs/logger"
)

// defaultAppLogger constructs a [logger.SkipLogger] configured for use in the application.
func defaultAppLogger(env reqargs.Environment, dsn string, output io.Writer) logger.SkipLogger {
	slogger := logger.NewSlogger(reqargs.AppLogKind, env, output)
	var l logger.SkipLogger = logger.New(slogger)
	l.Debug("setting up app logger", nil)
	if dsn != "" {
		l = logger.NewSentryLogger(env, l, dsn)
		l.Debug("using SentryLogger for app logger", nil)
	}

	slog.SetDefault(slogger)

	return l
}

// defaultHTTPLogger constructs a [*log/slog.Logger] for use in HTTP router logging.
func defaultHTTPLogger(env reqargs.Environment, output io.Writer) *slog.Logger {
	sl := logger.NewSlogger(reqargs.HTTPLogKind, env, output)
	sl.Debug("setting up HTTP router logger")

	return sl
}

// defaultMiddlewares lists the middlewares every request routed by the default router passes through.
func defaultMiddlewares(cfg Config, httpLog *slog.Logger) []middleware.Adapter {
	return []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(httpLog),
		middleware.ReportPanic(cfg.Env),
		middleware.CORS(cfg.CORSOrigins...),
	}
}

// defaultParser constructs the [*req.Parser] shared by every handler binding arguments.
func defaultParser(cfg Config, l logger.Logger) *req.Parser {
	return req.NewParser(
		req.WithLogger(l),
		req.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(l logger.Logger) *resp.Responder {
	return resp.NewResponder(resp.WithLogger(l))
}

// defaultRouter constructs a [*router.Router] to be used by the web server.
//
// Requests no route matches are answered with the same JSON error body
// a request failing to parse is.
func defaultRouter(
	cfg Config,
	httpLog *slog.Logger,
	responder *resp.Responder,
) *router.Router {
	route := router.New(cfg.Env, middleware.LogRequest(httpLog))
	route.OnEveryRequest(defaultMiddlewares(cfg, httpLog)...)
	route.HandleNotFound(statusHandler(responder, http.StatusNotFound))
	route.HandleMethodNotAllowed(statusHandler(responder, http.StatusMethodNotAllowed))

	return route
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context, cfg Config) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Port,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// statusHandler fails every request with code.
func statusHandler(responder *resp.Responder, code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.Fail(w, r, &req.HTTPError{
			Code:       code,
			Reason:     http.StatusText(code),
			LogMessage: r.Method + " " + r.URL.Path,
		})
	})
}
