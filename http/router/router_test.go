package router_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/middleware"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/req/schema"
	"github.com/xy-planning-network/reqargs/http/router"
)

func header(key, val string) middleware.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(key, val)
			h.ServeHTTP(w, r)
		})
	}
}

func TestRouterHandleRoutes(t *testing.T) {
	// Arrange
	rt := router.New(reqargs.Testing, nil)
	rt.OnEveryRequest(header("X-Order", "every"))

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "ok") })
	rt.HandleRoutes(
		[]router.Route{
			{Path: "/get", Method: http.MethodGet, Handler: ok, Middlewares: []middleware.Adapter{header("X-Order", "route")}},
			{Path: "/any", Handler: ok},
		},
		header("X-Order", "group"),
	)

	tcs := []struct {
		name   string
		method string
		path   string
		code   int
		order  []string
	}{
		{"Get", http.MethodGet, "/get", http.StatusOK, []string{"every", "group", "route"}},
		{"Wrong-Method", http.MethodPost, "/get", http.StatusMethodNotAllowed, nil},
		{"Any-Method", http.MethodDelete, "/any", http.StatusOK, []string{"every", "group"}},
		{"Not-Found", http.MethodGet, "/nope", http.StatusNotFound, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()

			// Act
			rt.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.order, w.Header().Values("X-Order"))
		})
	}
}

func TestRouterPathParams(t *testing.T) {
	// Arrange
	rt := router.New(reqargs.Testing, nil)
	s := schema.NewMap(schema.String("name").Required())
	rt.Handle(router.Route{
		Path:   "/echo/{name}",
		Method: http.MethodGet,
		Handler: req.UseArgs(req.NewParser(), s, func(w http.ResponseWriter, r *http.Request, args req.Args) {
			fmt.Fprint(w, args["name"])
		}, req.WithParseOpts(req.Locations(req.Path))),
	})

	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo/Fred", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Fred", w.Body.String())
}

func TestRouterHandlers(t *testing.T) {
	// Arrange
	rt := router.New(reqargs.Testing, header("X-Logged", "1"))
	rt.Handle(router.Route{Path: "/get", Method: http.MethodGet, Handler: http.NotFoundHandler()})
	rt.HandleNotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }))
	rt.HandleMethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusConflict) }))

	// Act
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, "1", w.Header().Get("X-Logged"))

	// Act
	w = httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/get", nil))

	// Assert
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRouterSubrouter(t *testing.T) {
	// Arrange
	rt := router.New(reqargs.Testing, nil)
	rt.OnEveryRequest(header("X-Order", "every"))

	api := rt.Subrouter("/api/v1")
	api.OnEveryRequest(header("X-Order", "api"))
	api.Handle(router.Route{Path: "/echo", Method: http.MethodGet, Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})})
	rt.Handle(router.Route{Path: "/echo", Method: http.MethodGet, Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})})

	// Act
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"every", "api"}, w.Header().Values("X-Order"))

	// Act
	w = httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	// Assert
	require.Equal(t, []string{"every"}, w.Header().Values("X-Order"))
}

func TestRouterCatchAll(t *testing.T) {
	// Arrange
	rt := router.New(reqargs.Testing, nil)
	rt.CatchAll(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }))

	// Act
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything/at/all", nil))

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
