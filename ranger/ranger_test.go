package ranger_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/req/schema"
	"github.com/xy-planning-network/reqargs/http/router"
	"github.com/xy-planning-network/reqargs/ranger"
)

func newTestRanger(t *testing.T, buf *bytes.Buffer) *ranger.Ranger {
	t.Helper()

	cfg := ranger.NewConfig()
	cfg.Env = reqargs.Testing
	cfg.Port = ":0"

	rng, err := ranger.New(ranger.WithConfig(cfg), ranger.WithLogOutput(buf))
	require.NoError(t, err)

	return rng
}

func TestNewConfig(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "STAGING")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("MAX_BODY_BYTES", "nope")
	t.Setenv("SERVER_READ_TIMEOUT", "1s")

	// Act
	actual := ranger.NewConfig()

	// Assert
	require.Equal(t, reqargs.Staging, actual.Env)
	require.Equal(t, ":8080", actual.Port)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, actual.CORSOrigins)
	require.Equal(t, req.DefaultMaxBodyBytes, actual.MaxBodyBytes)
	require.Equal(t, time.Second, actual.ReadTimeout)
	require.Equal(t, ranger.DefaultServerWriteTimeout, actual.WriteTimeout)
}

func TestNewBadConfig(t *testing.T) {
	tcs := []struct {
		name string
		opt  ranger.RangerOption
	}{
		{"Env", ranger.WithConfig(ranger.Config{Env: "nope"})},
		{"Nil-Logger", ranger.WithLogger(nil)},
		{"Nil-Parser", ranger.WithParser(nil)},
		{"Nil-Server", ranger.WithServer(nil)},
		{"Nil-Responder", ranger.WithResponder(nil)},
		{"Nil-Router", ranger.WithRouter(nil)},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := ranger.New(ranger.WithLogOutput(new(bytes.Buffer)), tc.opt)

			// Assert
			require.ErrorIs(t, err, reqargs.ErrBadConfig)
		})
	}
}

func TestWithEnv(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "REVIEW")

	// Act
	rng, err := ranger.New(ranger.WithLogOutput(new(bytes.Buffer)), ranger.WithEnv("nope"))

	// Assert
	require.NoError(t, err)
	require.Equal(t, reqargs.Review, rng.Config().Env)

	// Act
	rng, err = ranger.New(ranger.WithLogOutput(new(bytes.Buffer)), ranger.WithEnv("DEMO"))

	// Assert
	require.NoError(t, err)
	require.Equal(t, reqargs.Demo, rng.Config().Env)
}

func TestRangerUseArgs(t *testing.T) {
	// Arrange
	buf := new(bytes.Buffer)
	rng := newTestRanger(t, buf)
	s := schema.NewMap(schema.String("name").Required().Rules("min=3"))
	rng.Handle(router.Route{
		Path:   "/echo",
		Method: http.MethodGet,
		Handler: ranger.UseArgs(rng, s, func(w http.ResponseWriter, r *http.Request, args req.Args) {
			fmt.Fprint(w, args["name"])
		}),
	})

	// Act
	w := httptest.NewRecorder()
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo?name=Fred", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Fred", w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-Id"))
	require.Contains(t, buf.String(), `"kind":"http"`)

	// Act
	w = httptest.NewRecorder()
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo?name=ab", nil))

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.JSONEq(t, `{"error":{"code":422,"status":"Unprocessable Entity","messages":{"name":["Shorter than minimum length 3."]}}}`, w.Body.String())
	require.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRangerDefaultHandlers(t *testing.T) {
	// Arrange
	rng := newTestRanger(t, new(bytes.Buffer))
	rng.Handle(router.Route{Path: "/echo", Method: http.MethodGet, Handler: http.NotFoundHandler()})

	tcs := []struct {
		name     string
		method   string
		path     string
		expected string
	}{
		{"Not-Found", http.MethodGet, "/nope", `{"error":{"code":404,"status":"Not Found"}}`},
		{"Method-Not-Allowed", http.MethodPatch, "/echo", `{"error":{"code":405,"status":"Method Not Allowed"}}`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()

			// Act
			rng.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			// Assert
			require.JSONEq(t, tc.expected, w.Body.String())
			require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))
		})
	}
}

func TestRangerGuide(t *testing.T) {
	// Arrange
	rng := newTestRanger(t, new(bytes.Buffer))
	done := make(chan error, 1)

	// Act
	go func() { done <- rng.Guide() }()
	rng.Cancel()

	// Assert
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Guide did not stop")
	}

	require.Error(t, rng.Context().Err())
}
