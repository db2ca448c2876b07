package req_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/req/schema"
	"github.com/xy-planning-network/reqargs/logger"
)

func echoSchema() *schema.Map {
	return schema.NewMap(schema.String("name").Default("World").Rules("min=3"))
}

func newJSONRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func newFormRequest(target string, vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParse(t *testing.T) {
	// Arrange
	p := req.NewParser()

	tcs := []struct {
		name     string
		r        *http.Request
		expected req.Args
	}{
		{"query", httptest.NewRequest(http.MethodGet, "/echo?name=Fred", nil), req.Args{"name": "Fred"}},
		{"query-default", httptest.NewRequest(http.MethodGet, "/echo", nil), req.Args{"name": "World"}},
		{"form", newFormRequest("/echo", url.Values{"name": {"Joe"}}), req.Args{"name": "Joe"}},
		{"form-default", newFormRequest("/echo", url.Values{}), req.Args{"name": "World"}},
		{"json", newJSONRequest(http.MethodPost, "/echo", `{"name":"Fred"}`), req.Args{"name": "Fred"}},
		{"json-default", newJSONRequest(http.MethodPost, "/echo", `{}`), req.Args{"name": "World"}},
		{"json-extra-data", newJSONRequest(http.MethodPost, "/echo", `{"extra":"data"}`), req.Args{"name": "World"}},
		{"json-blank", newJSONRequest(http.MethodPost, "/echo", ""), req.Args{"name": "World"}},
		{"json-null", newJSONRequest(http.MethodPost, "/echo", "null"), req.Args{"name": "World"}},
		{"json-int", newJSONRequest(http.MethodPost, "/echo", "1"), req.Args{"name": "World"}},
		{"json-list", newJSONRequest(http.MethodPost, "/echo", `[{"extra":"data"}]`), req.Args{"name": "World"}},
		{"json-non-ascii", newJSONRequest(http.MethodPost, "/echo", `{"name":"øˆƒ£ºº∆ƒˆ∆"}`), req.Args{"name": "øˆƒ£ºº∆ƒˆ∆"}},
		{"no-body", httptest.NewRequest(http.MethodPost, "/echo", nil), req.Args{"name": "World"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual, err := req.Parse(p, echoSchema(), tc.r)

			// Assert
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseJSONContentTypes(t *testing.T) {
	// Arrange
	p := req.NewParser()

	tcs := []struct {
		name        string
		contentType string
		expected    req.Args
	}{
		{"charset", "application/json;charset=UTF-8", req.Args{"name": "Steve"}},
		{"vendor", "application/vnd.api+json;charset=UTF-8", req.Args{"name": "Steve"}},
		{"not-json", "text/plain", req.Args{"name": "World"}},
		{"no-content-type", "", req.Args{"name": "World"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"Steve"}`))
			if tc.contentType != "" {
				r.Header.Set("Content-Type", tc.contentType)
			}

			// Act
			actual, err := req.Parse(p, echoSchema(), r)

			// Assert
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseMultiple(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(schema.String("name").Multiple())
	expected := req.Args{"name": []any{"steve", "Loria"}}

	// Act
	actual, err := req.Parse(p, s, httptest.NewRequest(http.MethodGet, "/echo_multi?name=steve&name=Loria", nil))

	// Assert
	require.NoError(t, err)
	require.Equal(t, expected, actual)

	// Act
	actual, err = req.Parse(p, s, newFormRequest("/echo_multi", url.Values{"name": {"steve", "Loria"}}))

	// Assert
	require.NoError(t, err)
	require.Equal(t, expected, actual)

	// Act
	actual, err = req.Parse(p, s, newJSONRequest(http.MethodPost, "/echo_multi", `{"name":"Steve"}`))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": []any{"Steve"}}, actual)
}

func TestParseFirstLocationWins(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(schema.String("name"), schema.String("color"))
	r := newFormRequest("/echo?name=query", url.Values{"name": {"form"}, "color": {"blue"}})

	// Act
	actual, err := req.Parse(p, s, r)

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "query", "color": "blue"}, actual)

	// Arrange
	r = newFormRequest("/echo?name=query", url.Values{"name": {"form"}})

	// Act
	actual, err = req.Parse(p, s, r, req.Locations(req.Form, req.Query))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "form"}, actual)
}

func TestParseSkipsLocationsOnceResolved(t *testing.T) {
	// Arrange
	var loaded []req.Location
	spy := func(loc req.Location) req.LoadFunc {
		return func(r *http.Request, m req.Multiplier) (*req.Proxy, error) {
			loaded = append(loaded, loc)
			return req.LoadQuery(r, m)
		}
	}

	p := req.NewParser(
		req.WithLoader(req.Query, spy(req.Query)),
		req.WithLoader(req.Headers, spy(req.Headers)),
	)
	r := httptest.NewRequest(http.MethodGet, "/echo?name=Fred", nil)

	// Act
	_, err := req.Parse(p, echoSchema(), r, req.Locations(req.Query, req.Headers))

	// Assert
	require.NoError(t, err)
	require.Equal(t, []req.Location{req.Query}, loaded)
}

func TestParseQueryLocation(t *testing.T) {
	// Arrange
	p := req.NewParser(req.WithLocations(req.Query))
	r := newJSONRequest(http.MethodPost, "/echo_query?name=Steve", `{"name":"Fred"}`)

	// Act
	actual, err := req.Parse(p, echoSchema(), r)

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "Steve"}, actual)
}

func TestParseHeadersAndCookies(t *testing.T) {
	// Arrange
	p := req.NewParser()
	r := httptest.NewRequest(http.MethodGet, "/echo_headers", nil)
	r.Header.Set("name", "Fred")

	// Act
	actual, err := req.Parse(p, schema.NewMap(schema.String("Name")), r, req.Locations(req.Headers))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"Name": "Fred"}, actual)

	// Arrange
	r = httptest.NewRequest(http.MethodGet, "/echo_cookie", nil)
	r.AddCookie(&http.Cookie{Name: "name", Value: "Steve"})

	// Act
	actual, err = req.Parse(p, echoSchema(), r, req.Locations(req.Cookies))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "Steve"}, actual)
}

func TestParsePathParams(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(schema.String("name"), schema.Int("value"))
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/echo/foo?value=42", nil), map[string]string{"name": "foo"})

	// Act
	actual, err := req.Parse(p, s, r, req.Locations(req.Path, req.Query))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "foo", "value": 42}, actual)

	// Arrange
	p = req.NewParser(req.WithPathParams(func(r *http.Request) map[string]string {
		return map[string]string{"name": r.PathValue("name")}
	}))
	r = httptest.NewRequest(http.MethodGet, "/echo/bar", nil)
	r.SetPathValue("name", "bar")

	// Act
	actual, err = req.Parse(p, s, r, req.Locations(req.Path))

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "bar"}, actual)
}

func TestParseFiles(t *testing.T) {
	// Arrange
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("myfile", "README.md")
	require.NoError(t, err)
	_, err = fw.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("name", "Fred"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/echo_file", body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	p := req.NewParser()
	s := schema.NewMap(schema.Any("myfile"), schema.String("name"))

	// Act
	actual, err := req.Parse(p, s, r, req.Locations(req.Files, req.Form))

	// Assert
	require.NoError(t, err)
	require.Equal(t, "Fred", actual["name"])

	fh, ok := actual["myfile"].(*multipart.FileHeader)
	require.True(t, ok)
	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "data", string(b))

	// Act
	actual, err = req.Parse(p, s, httptest.NewRequest(http.MethodGet, "/echo_file", nil), req.Locations(req.Files))

	// Assert
	require.NoError(t, err)
	require.Empty(t, actual)
}

func TestParseDoesNotConsumeBody(t *testing.T) {
	// Arrange
	p := req.NewParser()
	body := `{"name":"Fred"}`
	r := newJSONRequest(http.MethodPost, "/echo", body)

	// Act
	first, err := req.Parse(p, echoSchema(), r)
	require.NoError(t, err)

	second, err := req.Parse(p, echoSchema(), r)
	require.NoError(t, err)

	// Assert
	require.Equal(t, first, second)

	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Equal(t, body, string(b))
}

func TestParseIdempotent(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(
		schema.String("name").Default("World"),
		schema.Int("ids").Multiple(),
		schema.Any("user").Nested(schema.NewMap(schema.Int("id"), schema.String("name"))),
	)
	body := `{"name":"Fred","ids":[1,2],"user":{"id":9007199254740993,"name":"Joe"}}`

	withGetBody := func() *http.Request {
		r, err := http.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		require.NoError(t, err)
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	tcs := []struct {
		name string
		r    func() *http.Request
	}{
		{"query", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/echo?name=Fred&ids=1&ids=2", nil) }},
		{"form", func() *http.Request { return newFormRequest("/echo", url.Values{"name": {"Fred"}, "ids": {"1", "2"}}) }},
		{"json-replayed", func() *http.Request { return newJSONRequest(http.MethodPost, "/echo", body) }},
		{"json-get-body", withGetBody},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := tc.r()

			// Act
			first, err := req.Parse(p, s, r)
			require.NoError(t, err)

			second, err := req.Parse(p, s, r)
			require.NoError(t, err)

			// Assert
			require.Equal(t, first, second)
			require.Equal(t, []any{1, 2}, first["ids"])
			require.Equal(t, "Fred", first["name"])
		})
	}
}

func TestParseGetBodyLeavesRequest(t *testing.T) {
	// Arrange
	p := req.NewParser()
	body := `{"name":"Fred"}`
	r, err := http.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	require.NoError(t, err)
	r.Header.Set("Content-Type", "application/json")
	orig := r.Body

	// Act
	actual, err := req.Parse(p, echoSchema(), r)

	// Assert
	require.NoError(t, err)
	require.Equal(t, req.Args{"name": "Fred"}, actual)
	require.Equal(t, orig, r.Body)

	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Equal(t, body, string(b))
}

func TestParseJSONNumbers(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(
		schema.Int("id"),
		schema.Int("page").Rules("max=100"),
		schema.Float("ratio"),
		schema.Any("user").Nested(schema.NewMap(schema.Int("id"))),
	)

	// Act
	actual, err := req.Parse(p, s, newJSONRequest(
		http.MethodPost,
		"/echo",
		`{"id":9007199254740993,"page":2.0,"ratio":0.1,"user":{"id":-9007199254740993}}`,
	))

	// Assert
	require.NoError(t, err)
	require.Equal(t, 9007199254740993, actual["id"])
	require.Equal(t, 2, actual["page"])
	require.Equal(t, 0.1, actual["ratio"])
	require.Equal(t, map[string]any{"id": -9007199254740993}, actual["user"])

	tcs := []struct {
		name string
		body string
	}{
		{"exponent", `{"page":1e20}`},
		{"negative-exponent", `{"page":-1e20}`},
		{"literal", `{"page":99999999999999999999}`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := req.Parse(p, s, newJSONRequest(http.MethodPost, "/echo", tc.body))

			// Assert
			var herr *req.HTTPError
			require.ErrorAs(t, err, &herr)
			require.Equal(t, http.StatusUnprocessableEntity, herr.Code)
			require.Equal(t, map[string][]string{"page": {"Not a valid integer."}}, herr.Messages)
		})
	}
}

func TestParseErrors(t *testing.T) {
	// Arrange
	p := req.NewParser()

	tcs := []struct {
		name     string
		r        *http.Request
		code     int
		messages map[string][]string
	}{
		{
			"validation",
			newFormRequest("/echo", url.Values{"name": {"b"}}),
			http.StatusUnprocessableEntity,
			map[string][]string{"name": {"Shorter than minimum length 3."}},
		},
		{
			"invalid-json",
			newJSONRequest(http.MethodPost, "/echo", `{"name":`),
			http.StatusBadRequest,
			map[string][]string{"json": {"Invalid JSON body."}},
		},
		{
			"invalid-unicode",
			httptest.NewRequest(http.MethodGet, "/echo?name=%FF", nil),
			http.StatusBadRequest,
			map[string][]string{"name": {`Invalid unicode in name: "\xff"`}},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := req.Parse(p, echoSchema(), tc.r)

			// Assert
			var herr *req.HTTPError
			require.ErrorAs(t, err, &herr)
			require.Equal(t, tc.code, herr.Code)
			require.Equal(t, http.StatusText(tc.code), herr.Reason)
			require.Equal(t, tc.messages, herr.Messages)
		})
	}
}

func TestParseBodyTooLarge(t *testing.T) {
	// Arrange
	p := req.NewParser(req.WithMaxBodyBytes(8))
	r := newJSONRequest(http.MethodPost, "/echo", `{"name":"Frederick"}`)

	// Act
	_, err := req.Parse(p, echoSchema(), r)

	// Assert
	var herr *req.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusBadRequest, herr.Code)
	require.ErrorIs(t, err, req.ErrInvalidJSON)
}

func TestParseErrorStatusAndHeaders(t *testing.T) {
	// Arrange
	p := req.NewParser()
	headers := http.Header{"X-Reason": {"invalid"}}
	r := newFormRequest("/echo", url.Values{"name": {"b"}})

	// Act
	_, err := req.Parse(p, echoSchema(), r, req.ErrorStatus(http.StatusBadRequest), req.ErrorHeaders(headers))

	// Assert
	var herr *req.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusBadRequest, herr.Code)
	require.Equal(t, "Bad Request", herr.Reason)
	require.Equal(t, headers, herr.Headers)
	require.ErrorIs(t, err, reqargs.ErrNotValid)
}

func TestParseValidationErrorStatus(t *testing.T) {
	// Arrange
	p := req.NewParser()
	s := schema.NewMap(schema.String("text")).WithValidator(func(req.Args) error {
		return req.NewValidationError("text", "Invalid value.").WithStatus(http.StatusBadRequest)
	})

	// Act
	_, err := req.Parse(p, s, newJSONRequest(http.MethodPost, "/error400", `{"text":"foo"}`))

	// Assert
	var herr *req.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusBadRequest, herr.Code)
	require.Equal(t, map[string][]string{"text": {"Invalid value."}}, herr.Messages)
}

func TestParseUnknownLocation(t *testing.T) {
	// Arrange
	called := false
	p := req.NewParser(req.WithErrorHandler(func(err error, _ *http.Request, _ int, _ http.Header) error {
		called = true
		return err
	}))

	// Act
	_, err := req.Parse(p, echoSchema(), httptest.NewRequest(http.MethodGet, "/", nil), req.Locations("body"))

	// Assert
	require.ErrorIs(t, err, reqargs.ErrNotImplemented)
	require.False(t, called)
}

func TestParseCustomErrorHandler(t *testing.T) {
	// Arrange
	sentinel := errors.New("custom")
	var (
		gotStatus int
		gotErr    error
	)
	p := req.NewParser(req.WithErrorHandler(func(err error, _ *http.Request, status int, _ http.Header) error {
		gotErr = err
		gotStatus = status
		return sentinel
	}))

	// Act
	_, err := req.Parse(p, echoSchema(), newFormRequest("/echo", url.Values{"name": {"b"}}), req.ErrorStatus(http.StatusTeapot))

	// Assert
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, http.StatusTeapot, gotStatus)

	var verr *req.ValidationError
	require.ErrorAs(t, gotErr, &verr)
}

func TestParseNilErrorHandlerResult(t *testing.T) {
	// Arrange
	p := req.NewParser(req.WithErrorHandler(func(error, *http.Request, int, http.Header) error { return nil }))

	// Act
	_, err := req.Parse(p, echoSchema(), newFormRequest("/echo", url.Values{"name": {"b"}}))

	// Assert
	require.ErrorIs(t, err, reqargs.ErrUnexpected)
	require.ErrorIs(t, err, reqargs.ErrNotValid)
}

func TestParseLogsResolvedLocations(t *testing.T) {
	// Arrange
	buf := new(bytes.Buffer)
	l := logger.New(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	p := req.NewParser(req.WithLogger(l))

	// Act
	_, err := req.Parse(p, echoSchema(), httptest.NewRequest(http.MethodGet, "/echo?name=Fred", nil))

	// Assert
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"locations":{"name":"query"}`)
}
