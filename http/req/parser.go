package req

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/logger"
)

// A Parser reads the arguments of requests from their Locations and validates them against a Schema.
//
// A Parser is immutable once constructed and safe for concurrent use.
type Parser struct {
	handler      ErrorHandler
	loaders      loaders
	locations    []Location
	logger       logger.Logger
	maxBodyBytes int64
	pathParams   PathParamsFunc
	overrides    loaders
}

// A ParserOptFn configures a Parser when constructing a new one.
type ParserOptFn func(*Parser)

// NewParser constructs a *Parser configured by opts.
//
// Without options, a Parser searches DefaultLocations,
// reads path params with [github.com/gorilla/mux.Vars],
// reads at most DefaultMaxBodyBytes of a body,
// and converts errors with DefaultErrorHandler.
func NewParser(opts ...ParserOptFn) *Parser {
	p := &Parser{
		handler:      DefaultErrorHandler,
		locations:    DefaultLocations,
		logger:       logger.New(nil),
		maxBodyBytes: DefaultMaxBodyBytes,
		overrides:    make(loaders),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.loaders = defaultLoaders(p.maxBodyBytes, p.pathParams)
	for loc, fn := range p.overrides {
		p.loaders[loc] = fn
	}

	return p
}

// WithErrorHandler sets the ErrorHandler errors are converted with.
func WithErrorHandler(fn ErrorHandler) ParserOptFn {
	return func(p *Parser) {
		if fn != nil {
			p.handler = fn
		}
	}
}

// WithLoader replaces how loc is read from a request.
func WithLoader(loc Location, fn LoadFunc) ParserOptFn {
	return func(p *Parser) {
		if fn != nil {
			p.overrides[loc] = fn
		}
	}
}

// WithLocations sets the order Locations are searched in
// for every call to Parse not setting its own.
func WithLocations(locs ...Location) ParserOptFn {
	return func(p *Parser) {
		if len(locs) > 0 {
			p.locations = append([]Location(nil), locs...)
		}
	}
}

// WithLogger sets the logger.Logger a Parser logs with.
func WithLogger(l logger.Logger) ParserOptFn {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMaxBodyBytes bounds how much of a body is read when parsing JSON or forms.
// Values less than 1 are ignored.
func WithMaxBodyBytes(n int64) ParserOptFn {
	return func(p *Parser) {
		if n > 0 {
			p.maxBodyBytes = n
		}
	}
}

// WithPathParams sets how the variables matched in a request's route are read,
// e.g., for routers other than [github.com/gorilla/mux].
func WithPathParams(fn PathParamsFunc) ParserOptFn {
	return func(p *Parser) { p.pathParams = fn }
}

// parseConfig is what a single call to Parse may override.
type parseConfig struct {
	headers   http.Header
	locations []Location
	status    int
}

// A ParseOptFn configures a single call to Parse.
type ParseOptFn func(*parseConfig)

// ErrorHeaders adds h to the response to any error.
func ErrorHeaders(h http.Header) ParseOptFn {
	return func(c *parseConfig) { c.headers = h }
}

// ErrorStatus sets the status code to respond to a validation error with.
func ErrorStatus(code int) ParseOptFn {
	return func(c *parseConfig) { c.status = code }
}

// Locations sets the order Locations are searched in, overriding the Parser's.
func Locations(locs ...Location) ParseOptFn {
	return func(c *parseConfig) {
		if len(locs) > 0 {
			c.locations = append([]Location(nil), locs...)
		}
	}
}

// Parse reads every field s declares from r and loads them into a T.
//
// Each field takes its value from the first Location holding one, searched in order.
// Fields found nowhere are Missing when s loads them.
// Locations are not read once every field has a value.
//
// Errors reading r, decoding values, or loading them are converted by the Parser's ErrorHandler.
// An unknown Location is a programming error: Parse returns it as is, wrapping reqargs.ErrNotImplemented.
//
// Parse never modifies what handlers later read from r.
// Reading a JSON body uses r.GetBody when it is set;
// otherwise, r.Body is swapped for a reader that replays the body from its start.
// Form bodies are parsed into r.Form and r.PostForm, as [net/http.Request.ParseForm] does.
func Parse[T any](p *Parser, s Schema[T], r *http.Request, opts ...ParseOptFn) (T, error) {
	var zero T

	cfg := parseConfig{locations: p.locations}
	for _, opt := range opts {
		opt(&cfg)
	}

	fields := s.Fields()
	raw := make(map[string]any, len(fields))
	for _, field := range fields {
		raw[field] = Missing
	}

	unresolved := len(fields)
	found := make(map[string]Location, len(fields))
	for _, loc := range cfg.locations {
		if unresolved == 0 {
			break
		}

		load, ok := p.loaders[loc]
		if !ok {
			return zero, fmt.Errorf("reqargs/http/req: %w: no loader for location %q", reqargs.ErrNotImplemented, loc)
		}

		proxy, err := load(r, s)
		if err != nil {
			return zero, p.handle(err, r, cfg)
		}

		for _, field := range fields {
			if !IsMissing(raw[field]) {
				continue
			}

			val, err := proxy.Get(field)
			if err != nil {
				return zero, p.handle(err, r, cfg)
			}

			if IsMissing(val) {
				continue
			}

			raw[field] = val
			found[field] = loc
			unresolved--
		}
	}

	p.logger.Debug("resolved request arguments", &logger.LogContext{
		Data:    map[string]any{"locations": found},
		Request: r,
	})

	args, err := s.Load(raw)
	if err != nil {
		return zero, p.handle(err, r, cfg)
	}

	return args, nil
}

// handle converts err with the Parser's ErrorHandler, guaranteeing a non-nil error.
func (p *Parser) handle(err error, r *http.Request, cfg parseConfig) error {
	herr := p.handler(err, r, cfg.status, cfg.headers)
	if herr == nil {
		return errors.Join(reqargs.ErrUnexpected, err)
	}

	return herr
}
