package ranger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/resp"
	"github.com/xy-planning-network/reqargs/http/router"
	"github.com/xy-planning-network/reqargs/logger"
)

// A Ranger manages and exposes all components of an app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	cancel  context.CancelFunc
	cfg     Config
	ctx     context.Context
	httpLog *slog.Logger
	l       logger.SkipLogger
	out     io.Writer
	p       *req.Parser
	srv     *http.Server
}

// New constructs a Ranger from the provided options.
// Configuration read by NewConfig applies first followed by the options passed into New.
// Components no option supplies are constructed from the resulting Config.
func New(opts ...RangerOption) (*Ranger, error) {
	r := &Ranger{cfg: NewConfig(), out: os.Stdout}
	followups := make([]OptFollowup, 0)

	// NOTE: some options need a logger to finish configuring the *Ranger.
	// They return an OptFollowup to be called once defaults are in place.
	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reqargs.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if r.ctx == nil {
		r.ctx = context.Background()
	}
	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.l == nil {
		r.l = defaultAppLogger(r.cfg.Env, r.cfg.SentryDSN, r.out)
	}

	r.httpLog = defaultHTTPLogger(r.cfg.Env, r.out)

	if r.p == nil {
		r.p = defaultParser(r.cfg, r.l)
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			r.cancel()
			return nil, fmt.Errorf("%w: %s", reqargs.ErrBadConfig, err)
		}
	}

	if r.Responder == nil {
		r.Responder = defaultResponder(r.l)
	}

	if r.Router == nil {
		r.Router = defaultRouter(r.cfg, r.httpLog, r.Responder)
	}

	if r.srv == nil {
		r.srv = defaultServer(r.ctx, r.cfg)
	}
	r.srv.Handler = r.Router

	r.l.Debug(fmt.Sprintf("configured app for %s", r.cfg.Env), nil)

	return r, nil
}

// Config returns the Config the Ranger was built from.
func (r *Ranger) Config() Config { return r.cfg }

// Context returns the context.Context cancelled when the Ranger shuts down.
func (r *Ranger) Context() context.Context { return r.ctx }

// EmitLogger returns the app's logger.
func (r *Ranger) EmitLogger() logger.SkipLogger { return r.l }

// Parser returns the *req.Parser every Binder built by the Ranger shares.
func (r *Ranger) Parser() *req.Parser { return r.p }

// Cancel stops a running Guide.
func (r *Ranger) Cancel() { r.cancel() }

// Guide begins the web server.
//
// These, and (*Ranger).Cancel, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("could not listen: %w", err)
			r.l.Error(err.Error(), nil)
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		r.cancel()
		return err
	case <-r.ctx.Done():
	}

	return r.Shutdown()
}

// Shutdown shutdowns the web server.
func (r *Ranger) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}

// NewBinder constructs a *req.Binder using the Ranger's Parser
// that responds to failures with the Ranger's Responder.
func NewBinder[T any](r *Ranger, s req.Schema[T], opts ...req.BinderOptFn) *req.Binder[T] {
	opts = append([]req.BinderOptFn{req.WithOnError(r.Fail)}, opts...)
	return req.NewBinder(r.p, s, opts...)
}

// UseArgs is like [req.UseArgs] but is configured by the Ranger.
func UseArgs[T any](r *Ranger, s req.Schema[T], fn func(w http.ResponseWriter, r *http.Request, args T), opts ...req.BinderOptFn) http.Handler {
	return NewBinder(r, s, opts...).Handler(fn)
}
