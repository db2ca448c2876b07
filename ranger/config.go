package ranger

import (
	"strings"
	"time"

	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
)

const (
	// CORS defaults
	corsOriginsEnvVar = "CORS_ORIGINS"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	sentryDsnEnvVar = "SENTRY_DSN"

	// Parser defaults
	maxBodyBytesEnvVar = "MAX_BODY_BYTES"

	// Web server defaults
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second
)

// A Config is everything a Ranger reads from environment variables.
type Config struct {
	CORSOrigins  []string
	Env          reqargs.Environment
	IdleTimeout  time.Duration
	MaxBodyBytes int64
	Port         string
	ReadTimeout  time.Duration
	SentryDSN    string
	WriteTimeout time.Duration
}

// NewConfig reads a Config from environment variables,
// falling back to defaults for those unset or invalid.
func NewConfig() Config {
	port := reqargs.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	var origins []string
	for _, o := range strings.Split(reqargs.EnvVarOrString(corsOriginsEnvVar, ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		CORSOrigins:  origins,
		Env:          reqargs.EnvVarOrEnv(environmentEnvVar, reqargs.Development),
		IdleTimeout:  reqargs.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		MaxBodyBytes: reqargs.EnvVarOrInt64(maxBodyBytesEnvVar, req.DefaultMaxBodyBytes),
		Port:         port,
		ReadTimeout:  reqargs.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		SentryDSN:    reqargs.EnvVarOrString(sentryDsnEnvVar, ""),
		WriteTimeout: reqargs.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
}
