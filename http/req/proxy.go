package req

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/xy-planning-network/reqargs"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// previewLen caps how many bytes of an undecodable value are echoed back in a DecodeError.
const previewLen = 40

var (
	_ RawValues = CookieJar(nil)
	_ RawValues = FileMap(nil)
	_ RawValues = HeaderValues(nil)
	_ RawValues = JSONObject(nil)
	_ RawValues = MultiDict(nil)
	_ RawValues = PathParams(nil)
)

// A RawValues is the raw key-to-value(s) view of a single request location.
// Every Location adapter reduces its part of a request to a RawValues.
type RawValues interface {
	// Lookup returns what is stored under key and whether key is present at all.
	// Repeated occurrences of a key are returned as a slice.
	Lookup(key string) (any, bool)
}

// A Multiplier reports whether a field accepts many values.
type Multiplier interface {
	Multiple(field string) bool
}

// MultiDict exposes key-to-values data, such as [net/url.Values].
type MultiDict map[string][]string

func (m MultiDict) Lookup(key string) (any, bool) {
	vals, ok := m[key]
	return vals, ok
}

// HeaderValues exposes an [net/http.Header], canonicalizing keys on lookup.
type HeaderValues http.Header

func (h HeaderValues) Lookup(key string) (any, bool) {
	vals := http.Header(h).Values(key)
	return vals, len(vals) > 0
}

// CookieJar exposes the cookies sent with a request by name.
type CookieJar []*http.Cookie

func (c CookieJar) Lookup(key string) (any, bool) {
	var found []*http.Cookie
	for _, cookie := range c {
		if cookie != nil && cookie.Name == key {
			found = append(found, cookie)
		}
	}

	return found, len(found) > 0
}

// FileMap exposes the files uploaded in a multipart form.
type FileMap map[string][]*multipart.FileHeader

func (f FileMap) Lookup(key string) (any, bool) {
	files, ok := f[key]
	return files, ok
}

// PathParams exposes the variables matched in a route's path.
type PathParams map[string]string

func (p PathParams) Lookup(key string) (any, bool) {
	val, ok := p[key]
	return val, ok
}

// JSONObject exposes the members of a JSON object.
//
// Numbers are returned as a json.Number holding their literal text,
// so integers beyond the precision of a float64 survive intact.
type JSONObject map[string]gjson.Result

func (j JSONObject) Lookup(key string) (any, bool) {
	res, ok := j[key]
	if !ok {
		return nil, false
	}

	return jsonValue(res), true
}

// jsonValue converts res into the Go value it holds, keeping numbers as a json.Number.
func jsonValue(res gjson.Result) any {
	switch {
	case res.Type == gjson.Number:
		return json.Number(res.Raw)

	case res.IsArray():
		items := make([]any, 0)
		res.ForEach(func(_, item gjson.Result) bool {
			items = append(items, jsonValue(item))
			return true
		})
		return items

	case res.IsObject():
		obj := make(map[string]any)
		res.ForEach(func(key, val gjson.Result) bool {
			obj[key.String()] = jsonValue(val)
			return true
		})
		return obj

	default:
		return res.Value()
	}
}

type proxyMode int

const (
	multiDictMode proxyMode = iota
	cookieMode
	jsonMode
)

// A Proxy is a read-through view over one location's RawValues
// that decides, per key, between a single value and a sequence of values.
//
// A Proxy is built for a single call to Parse and is not safe to share across requests.
type Proxy struct {
	charset  encoding.Encoding
	mode     proxyMode
	multiple Multiplier
	raw      RawValues
}

// A ProxyOptFn configures a Proxy when constructing a new one.
type ProxyOptFn func(*Proxy)

// WithCharset decodes text values using the named charset, e.g., "ISO-8859-1".
// Unknown names and UTF-8 leave strict UTF-8 validation in place.
func WithCharset(name string) ProxyOptFn {
	return func(p *Proxy) {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return
		}

		if n, _ := htmlindex.Name(enc); n == "utf-8" {
			return
		}

		p.charset = enc
	}
}

// NewMultiDictProxy constructs a *Proxy for locations where a key may occur many times:
// query params, form values, headers, files and path params.
//
// Keys not declared multi-valued by m resolve to their first occurrence.
func NewMultiDictProxy(raw RawValues, m Multiplier, opts ...ProxyOptFn) *Proxy {
	p := &Proxy{mode: multiDictMode, multiple: m, raw: raw}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewCookieProxy constructs a *Proxy over cookies.
// Cookie values are unwrapped from their [*net/http.Cookie] and are not decoded.
func NewCookieProxy(raw RawValues, m Multiplier) *Proxy {
	return &Proxy{mode: cookieMode, multiple: m, raw: raw}
}

// NewJSONProxy constructs a *Proxy over the members of a JSON object.
//
// A JSON array is a single value, not repeated occurrences of a key:
// keys not declared multi-valued by m keep arrays as they are,
// while multi-valued keys wrap a lone value into a sequence.
func NewJSONProxy(raw RawValues, m Multiplier) *Proxy {
	return &Proxy{mode: jsonMode, multiple: m, raw: raw}
}

// Get resolves the value stored under key.
//
// Get returns Missing if key is not present.
// If key is multi-valued, Get returns a []any holding every occurrence in order;
// a key present with zero occurrences is Missing.
// Otherwise, Get returns the first occurrence.
//
// Text values are decoded; Get returns a *DecodeError if they cannot be.
func (p *Proxy) Get(key string) (any, error) {
	val, ok := p.raw.Lookup(key)
	if !ok {
		return Missing, nil
	}

	if p.mode == cookieMode {
		val = cookieValues(val)
	}

	if p.isMultiple(key) {
		if val == nil && p.mode == jsonMode {
			return nil, nil
		}

		seq, isSeq := sequence(val)
		if !isSeq {
			seq = []any{val}
		}

		if len(seq) == 0 {
			return Missing, nil
		}

		for i := range seq {
			norm, err := p.normalize(key, seq[i])
			if err != nil {
				return nil, err
			}
			seq[i] = norm
		}

		return seq, nil
	}

	if p.mode != jsonMode {
		if seq, isSeq := sequence(val); isSeq {
			if len(seq) == 0 {
				return Missing, nil
			}
			val = seq[0]
		}
	}

	return p.normalize(key, val)
}

func (p *Proxy) isMultiple(key string) bool {
	return p.multiple != nil && p.multiple.Multiple(key)
}

// normalize converts bytes-like values into valid text.
func (p *Proxy) normalize(key string, v any) (any, error) {
	if p.mode == cookieMode {
		return v, nil
	}

	switch t := v.(type) {
	case string:
		if p.charset == nil {
			if !utf8.ValidString(t) {
				return nil, newDecodeError(key, []byte(t))
			}
			return t, nil
		}

		s, err := p.charset.NewDecoder().String(t)
		if err != nil {
			return nil, newDecodeError(key, []byte(t))
		}
		return s, nil

	case []byte:
		if p.charset == nil {
			if !utf8.Valid(t) {
				return nil, newDecodeError(key, t)
			}
			return string(t), nil
		}

		b, err := p.charset.NewDecoder().Bytes(t)
		if err != nil {
			return nil, newDecodeError(key, t)
		}
		return string(b), nil

	default:
		return v, nil
	}
}

// cookieValues unwraps cookies into their values.
func cookieValues(v any) any {
	switch t := v.(type) {
	case *http.Cookie:
		return t.Value
	case []*http.Cookie:
		vals := make([]any, len(t))
		for i, c := range t {
			vals[i] = c.Value
		}
		return vals
	default:
		return v
	}
}

// sequence copies v into a []any if v is a slice or array of occurrences.
// A []byte is a single value.
func sequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return append([]any(nil), t...), true
	case []string:
		seq := make([]any, len(t))
		for i, s := range t {
			seq[i] = s
		}
		return seq, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	seq := make([]any, rv.Len())
	for i := range seq {
		seq[i] = rv.Index(i).Interface()
	}

	return seq, true
}

// A DecodeError is a value that cannot be decoded as text.
type DecodeError struct {
	Key string

	// Preview is a quoted, truncated rendition of the offending bytes.
	Preview string
}

func newDecodeError(key string, b []byte) *DecodeError {
	if len(b) > previewLen {
		b = b[:previewLen]
	}

	return &DecodeError{Key: key, Preview: fmt.Sprintf("%q", b)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Invalid unicode in %s: %s", e.Key, e.Preview)
}

func (e *DecodeError) Unwrap() error { return reqargs.ErrBadFormat }
