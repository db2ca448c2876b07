package req

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"
	"github.com/xy-planning-network/reqargs"
)

const (
	// DefaultMaxBodyBytes bounds how much of a request body is read when parsing JSON or forms.
	DefaultMaxBodyBytes int64 = 1 << 20

	charsetParam = "charset"
)

// A LoadFunc reads one Location of r into a *Proxy.
//
// A LoadFunc never validates; it only reduces the request to a RawValues.
// Errors it returns are passed to the Parser's ErrorHandler.
type LoadFunc func(r *http.Request, m Multiplier) (*Proxy, error)

// A PathParamsFunc extracts the variables matched in a request's route.
type PathParamsFunc func(r *http.Request) map[string]string

// loaders is the set of LoadFuncs a Parser uses, one per Location.
type loaders map[Location]LoadFunc

// defaultLoaders constructs LoadFuncs for [net/http] requests routed by [github.com/gorilla/mux].
func defaultLoaders(maxBodyBytes int64, pathParams PathParamsFunc) loaders {
	return loaders{
		Cookies: LoadCookies,
		Files:   loadFiles(maxBodyBytes),
		Form:    loadForm(maxBodyBytes),
		Headers: LoadHeaders,
		JSON:    loadJSON(maxBodyBytes),
		Path:    loadPath(pathParams),
		Query:   LoadQuery,
	}
}

// LoadQuery reads the query params of r.
func LoadQuery(r *http.Request, m Multiplier) (*Proxy, error) {
	return NewMultiDictProxy(MultiDict(r.URL.Query()), m), nil
}

// LoadHeaders reads the headers of r.
func LoadHeaders(r *http.Request, m Multiplier) (*Proxy, error) {
	return NewMultiDictProxy(HeaderValues(r.Header), m), nil
}

// LoadCookies reads the cookies sent with r.
func LoadCookies(r *http.Request, m Multiplier) (*Proxy, error) {
	return NewCookieProxy(CookieJar(r.Cookies()), m), nil
}

// loadForm reads the form values in the body of r, ignoring query params.
// A "charset" parameter on the Content-Type header selects how values are decoded.
func loadForm(maxBodyBytes int64) LoadFunc {
	return func(r *http.Request, m Multiplier) (*Proxy, error) {
		if err := parseForm(r, maxBodyBytes); err != nil {
			return nil, err
		}

		var opts []ProxyOptFn
		if mt, err := mediaType(r); err == nil {
			if cs, ok := mt.Parameters[charsetParam]; ok {
				opts = append(opts, WithCharset(cs))
			}
		}

		return NewMultiDictProxy(MultiDict(r.PostForm), m, opts...), nil
	}
}

// loadFiles reads the files uploaded in a multipart body of r.
// Requests without a multipart body have no files.
func loadFiles(maxBodyBytes int64) LoadFunc {
	return func(r *http.Request, m Multiplier) (*Proxy, error) {
		if err := parseForm(r, maxBodyBytes); err != nil {
			return nil, err
		}

		files := FileMap{}
		if r.MultipartForm != nil {
			files = FileMap(r.MultipartForm.File)
		}

		return NewMultiDictProxy(files, m), nil
	}
}

// loadPath reads the variables matched in the route of r.
func loadPath(fn PathParamsFunc) LoadFunc {
	if fn == nil {
		fn = mux.Vars
	}

	return func(r *http.Request, m Multiplier) (*Proxy, error) {
		return NewMultiDictProxy(PathParams(fn(r)), m), nil
	}
}

// loadJSON reads the members of a JSON object in the body of r.
//
// Every key is Missing when:
//   - r does not declare a JSON content type, even if the body is JSON;
//   - the body is not available yet;
//   - the body is empty;
//   - the body is JSON, but not an object.
//
// A body declared as JSON that is not returns ErrInvalidJSON.
func loadJSON(maxBodyBytes int64) LoadFunc {
	return func(r *http.Request, m Multiplier) (*Proxy, error) {
		none := NewJSONProxy(JSONObject(nil), m)
		if !IsJSONRequest(r) {
			return none, nil
		}

		body, ok, err := readBody(r, maxBodyBytes)
		if err != nil {
			return nil, err
		}

		if !ok || len(bytes.TrimSpace(body)) == 0 {
			return none, nil
		}

		if !gjson.ValidBytes(body) {
			return nil, ErrInvalidJSON
		}

		doc := gjson.ParseBytes(body)
		if !doc.IsObject() {
			return none, nil
		}

		return NewJSONProxy(JSONObject(doc.Map()), m), nil
	}
}

// IsJSONRequest reports whether the Content-Type of r is application/json
// or a structured syntax suffixed with +json, e.g., application/vnd.api+json.
func IsJSONRequest(r *http.Request) bool {
	mt, err := mediaType(r)
	if err != nil {
		return false
	}

	if !strings.EqualFold(mt.Type, "application") {
		return false
	}

	sub := strings.ToLower(mt.Subtype)
	return sub == "json" || strings.HasSuffix(sub, "+json")
}

func mediaType(r *http.Request) (contenttype.MediaType, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return contenttype.MediaType{}, fmt.Errorf("%w: no Content-Type", reqargs.ErrMissingData)
	}

	return contenttype.ParseMediaType(ct)
}

// readBody reads all of the body of r, leaving it for handlers to read again.
//
// When r.GetBody is set, readBody reads a copy of the body and r is not changed.
// Otherwise, readBody replaces r.Body with a reader replaying what was read before the rest of the body.
// readBody reports false when the body is not available.
func readBody(r *http.Request, maxBodyBytes int64) ([]byte, bool, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false, nil
	}

	if r.GetBody != nil {
		body, err := r.GetBody()
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed copying body: %s", reqargs.ErrBadFormat, err)
		}
		defer body.Close()

		return readLimited(body, maxBodyBytes)
	}

	orig := r.Body
	b, err := io.ReadAll(io.LimitReader(orig, maxBodyBytes+1))
	r.Body = readCloser{io.MultiReader(bytes.NewReader(b), orig), orig}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed reading body: %s", reqargs.ErrBadFormat, err)
	}

	return checkLimit(b, maxBodyBytes)
}

// readLimited reads at most maxBodyBytes of body.
func readLimited(body io.Reader, maxBodyBytes int64) ([]byte, bool, error) {
	b, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed reading body: %s", reqargs.ErrBadFormat, err)
	}

	return checkLimit(b, maxBodyBytes)
}

func checkLimit(b []byte, maxBodyBytes int64) ([]byte, bool, error) {
	if int64(len(b)) > maxBodyBytes {
		return nil, false, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidJSON, maxBodyBytes)
	}

	return b, true, nil
}

// readCloser replays what was read of a body before reading the rest of it.
type readCloser struct {
	io.Reader
	io.Closer
}

// parseForm parses form bodies of r, multipart or otherwise, at most once.
func parseForm(r *http.Request, maxBodyBytes int64) error {
	if r.PostForm != nil {
		return nil
	}

	if mt, err := mediaType(r); err == nil && strings.EqualFold(mt.Type, "multipart") {
		err := r.ParseMultipartForm(maxBodyBytes)
		if err == nil || errors.Is(err, http.ErrNotMultipart) {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrInvalidForm, err)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidForm, err)
	}

	return nil
}
