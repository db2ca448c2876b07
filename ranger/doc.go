/*
Package ranger initializes and manages an app parsing request arguments, with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New].
A [Ranger] wires together the components every handler needs:
a [req.Parser], a [resp.Responder] that responds to requests failing to parse,
and a [router.Router] applying a default middleware chain.

Handlers bind arguments with [UseArgs] or [NewBinder],
which share the Ranger's [req.Parser] and respond to failures with [resp.Responder.Fail].

[*Ranger.Guide] begins the app's web server.
By default, [*Ranger.Guide] listens on [DefaultPort] (:3000).

Upon calling [*Ranger.Guide], all routes configured up to that point are now active.
Stop that web server with [*Ranger.Shutdown],
call [*Ranger.Cancel],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures an app through environment variables
and by passing a [RangerOption] to [New].

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - CORS_ORIGINS: a comma-separated list of origins allowed to make cross-origin requests
  - ENVIRONMENT: the environment the application is running in; cf. [reqargs.Environment]
  - LOG_JSON: whether to log JSON in development; default: false
  - LOG_LEVEL: the level at which to begin logging; default: INFO
  - MAX_BODY_BYTES: how much of a request body is read when parsing JSON or forms; default: 1048576
  - PORT: the port the application should listen on; default: :3000
  - SENTRY_DSN: the DSN warnings and errors are reported to; default: none
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
*/
package ranger
