package req

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// argsKey is the context key a Binder stores parsed arguments under.
type argsKey struct{}

// An OnErrorFunc responds to a request whose arguments could not be parsed.
type OnErrorFunc func(w http.ResponseWriter, r *http.Request, err *HTTPError)

// A Binder parses the arguments of every request it handles
// before handing the request off, either to a function taking those arguments
// or to the next http.Handler with the arguments stored in the request context.
type Binder[T any] struct {
	onErr  OnErrorFunc
	opts   []ParseOptFn
	parser *Parser
	schema Schema[T]
}

// A BinderOptFn configures a Binder when constructing a new one.
type BinderOptFn func(*binderConfig)

type binderConfig struct {
	onErr OnErrorFunc
	opts  []ParseOptFn
}

// WithOnError sets how a Binder responds to requests failing to parse.
func WithOnError(fn OnErrorFunc) BinderOptFn {
	return func(c *binderConfig) {
		if fn != nil {
			c.onErr = fn
		}
	}
}

// WithParseOpts configures every call to Parse a Binder makes.
func WithParseOpts(opts ...ParseOptFn) BinderOptFn {
	return func(c *binderConfig) { c.opts = append(c.opts, opts...) }
}

// NewBinder constructs a *Binder parsing requests with p against s.
//
// Without WithOnError, a Binder responds to failures with WriteError.
func NewBinder[T any](p *Parser, s Schema[T], opts ...BinderOptFn) *Binder[T] {
	cfg := binderConfig{onErr: WriteError}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Binder[T]{onErr: cfg.onErr, opts: cfg.opts, parser: p, schema: s}
}

// Handler parses the arguments of a request and calls fn with them.
// fn is not called when parsing fails.
func (b *Binder[T]) Handler(fn func(w http.ResponseWriter, r *http.Request, args T)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args, ok := b.parse(w, r)
		if !ok {
			return
		}

		fn(w, r, args)
	})
}

// Middleware parses the arguments of a request and stores them in its context
// before calling the next handler.
//
// Handlers retrieve the arguments with ArgsFromContext.
func (b *Binder[T]) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			args, ok := b.parse(w, r)
			if !ok {
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), argsKey{}, args)))
		})
	}
}

// parse runs Parse once, responding to r if it fails.
func (b *Binder[T]) parse(w http.ResponseWriter, r *http.Request) (T, bool) {
	args, err := Parse(b.parser, b.schema, r, b.opts...)
	if err == nil {
		return args, true
	}

	var herr *HTTPError
	if !errors.As(err, &herr) {
		herr = DefaultErrorHandler(err, r, 0, nil).(*HTTPError)
	}

	b.onErr(w, r, herr)
	return args, false
}

// ArgsFromContext retrieves the arguments a Binder's Middleware stored in ctx.
func ArgsFromContext[T any](ctx context.Context) (T, bool) {
	args, ok := ctx.Value(argsKey{}).(T)
	return args, ok
}

// UseArgs is shorthand for NewBinder(p, s, opts...).Handler(fn).
func UseArgs[T any](p *Parser, s Schema[T], fn func(w http.ResponseWriter, r *http.Request, args T), opts ...BinderOptFn) http.Handler {
	return NewBinder(p, s, opts...).Handler(fn)
}

// UseKwargs is shorthand for NewBinder(p, s, opts...).Middleware().
func UseKwargs[T any](p *Parser, s Schema[T], opts ...BinderOptFn) func(http.Handler) http.Handler {
	return NewBinder(p, s, opts...).Middleware()
}

// WriteError responds to r with err rendered as JSON.
func WriteError(w http.ResponseWriter, _ *http.Request, err *HTTPError) {
	for k, vals := range err.Headers {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
