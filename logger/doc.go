/*
Package logger provides logging functionality to a reqargs app by defining the required behavior in [Logger]
and providing an implementation of it with [AppLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
[AppLogger] writes through a [*log/slog.Logger], so the configured [log/slog.Handler]
decides which levels are emitted and how records look.
[NewSlogger] builds the handlers a reqargs app uses:
a colorized console handler in development and JSON everywhere else.

# LogContext

A [LogContext] carries data inessential to the message proper
but that provides a fuller picture of the application state at the time of logging.
It is logged as a group under the "log_context" key:

	2024-04-28 15:55:21.000 INF http/echo.go:43 parsed arguments log_context.data.name=World

# SkipLogger

Sometimes, especially with internal packages, the file and line number in a log needs to be configurable.
[SkipLogger] provides additional configuration functionality by setting the number of frames to skip
back in order to reach the desired caller.
*/
package logger
