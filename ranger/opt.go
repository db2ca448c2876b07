package ranger

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/resp"
	"github.com/xy-planning-network/reqargs/http/router"
	"github.com/xy-planning-network/reqargs/logger"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithEnv is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithRouter is an example of the second.
// The *Ranger is updated only when the closure it returns is called,
// once a logger is available to announce it.
type RangerOption func(rng *Ranger) (OptFollowup, error)

// An OptFollowup finishes configuring a *Ranger after every RangerOption has run.
type OptFollowup func() error

// WithConfig replaces the Config read from environment variables.
func WithConfig(cfg Config) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if err := cfg.Env.Valid(); err != nil {
			return nil, fmt.Errorf("environment %q: %w", cfg.Env, err)
		}

		rng.cfg = cfg
		return nil, nil
	}
}

// WithContext exposes the provided context.Context to the app.
// Requests served by the default *http.Server derive their contexts from ctx.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if ctx == nil {
			return nil, fmt.Errorf("%w: nil context", reqargs.ErrMissingData)
		}

		rng.ctx = ctx
		return nil, nil
	}
}

// WithEnv casts the provided string into a valid Environment,
// or, reads from the ENVIRONMENT environment variable a valid Environment.
//
// If both fail, the Environment is set to Development.
func WithEnv(env string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		e := reqargs.Environment(env)
		if err := e.Valid(); err != nil {
			e = reqargs.EnvVarOrEnv(environmentEnvVar, reqargs.Development)
		}

		rng.cfg.Env = e
		return nil, nil
	}
}

// WithLogger exposes the provided logger.SkipLogger to the app.
func WithLogger(l logger.SkipLogger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if l == nil {
			return nil, fmt.Errorf("%w: nil logger", reqargs.ErrMissingData)
		}

		rng.l = l
		return nil, nil
	}
}

// WithLogOutput directs the default app and HTTP loggers to out.
func WithLogOutput(out io.Writer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if out == nil {
			return nil, fmt.Errorf("%w: nil log output", reqargs.ErrMissingData)
		}

		rng.out = out
		return nil, nil
	}
}

// WithParser exposes the provided *req.Parser to the app,
// replacing the one configured from Config.
func WithParser(p *req.Parser) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if p == nil {
			return nil, fmt.Errorf("%w: nil parser", reqargs.ErrMissingData)
		}

		rng.p = p
		return nil, nil
	}
}

// WithResponder constructs a followup option that, when called,
// exposes the *resp.Responder to the app.
func WithResponder(r *resp.Responder) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if r == nil {
				return fmt.Errorf("%w: nil responder", reqargs.ErrMissingData)
			}

			rng.Responder = r
			rng.l.Debug("using responder", nil)

			return nil
		}, nil
	}
}

// WithRouter constructs a followup option that, when called,
// exposes the *router.Router to the app.
func WithRouter(r *router.Router) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if r == nil {
				return fmt.Errorf("%w: nil router", reqargs.ErrMissingData)
			}

			rng.Router = r
			rng.l.Debug(fmt.Sprintf("using router %T", r), nil)

			return nil
		}, nil
	}
}

// WithServer exposes the *http.Server to the app.
// The Ranger's router replaces any Handler set on s.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if s == nil {
			return nil, fmt.Errorf("%w: nil server", reqargs.ErrMissingData)
		}

		rng.srv = s
		return nil, nil
	}
}
