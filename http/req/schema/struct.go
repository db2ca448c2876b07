package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	gschema "github.com/gorilla/schema"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
)

// A Struct loads arguments into a T, a struct type.
//
// Struct reads field names from "schema" struct tags, falling back to the Go field name.
// Slice fields accept many values.
// Defaults are set with the "default" tag option, e.g.:
//
//	type Search struct {
//		Query string   `schema:"q" validate:"required"`
//		Page  int      `schema:"page,default:1" validate:"min=1"`
//		Tags  []string `schema:"tag"`
//	}
//
// Loaded values are checked against "validate" struct tags.
type Struct[T any] struct {
	dec   *gschema.Decoder
	multi map[string]bool
	names []string
	valid validator
}

// NewStruct constructs a *Struct for T.
// NewStruct errors if T is not a struct type.
func NewStruct[T any]() (*Struct[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", reqargs.ErrBadConfig, typ)
	}

	s := &Struct[T]{dec: newDecoder(), multi: make(map[string]bool), valid: newValidator()}
	s.collect(typ)

	return s, nil
}

// MustStruct is like NewStruct but panics if T is not a struct type.
func MustStruct[T any]() *Struct[T] {
	s, err := NewStruct[T]()
	if err != nil {
		panic(err)
	}

	return s
}

// collect records the names and multiplicity of the exported fields of typ.
// Embedded structs contribute their fields.
func (s *Struct[T]) collect(typ reflect.Type) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.SplitN(field.Tag.Get("schema"), ",", 2)[0]
		if name == "-" {
			continue
		}

		ft := field.Type
		if field.Anonymous && name == "" && ft.Kind() == reflect.Struct {
			s.collect(ft)
			continue
		}

		if name == "" {
			name = field.Name
		}

		if _, ok := s.multi[name]; !ok {
			s.names = append(s.names, name)
		}

		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		s.multi[name] = ft.Kind() == reflect.Slice && ft.Elem().Kind() != reflect.Uint8
	}
}

// Fields lists the names of the fields of T, in order.
func (s *Struct[T]) Fields() []string { return append([]string(nil), s.names...) }

// Multiple reports whether name is a slice field.
func (s *Struct[T]) Multiple(name string) bool { return s.multi[name] }

// Load decodes raw into a T, then validates it.
func (s *Struct[T]) Load(raw map[string]any) (T, error) {
	var args T

	vals := make(url.Values, len(raw))
	verr := new(req.ValidationError)
	for _, name := range s.names {
		v, ok := raw[name]
		if !ok || req.IsMissing(v) || v == nil {
			continue
		}

		items, isSeq := toSlice(v)
		if !isSeq {
			items = []any{v}
		}

		for _, item := range items {
			str, ok := formValue(item)
			if !ok {
				verr.Add(name, "Not a valid value.")
				continue
			}

			vals.Add(name, str)
		}
	}

	if verr.Len() > 0 {
		return args, verr
	}

	if err := s.dec.Decode(&args, vals); err != nil {
		return args, translateDecoderError(err)
	}

	if err := s.valid.validateStruct(&args); err != nil {
		var zero T
		return zero, s.flatten(err)
	}

	return args, nil
}

// flatten names the messages for fields of embedded structs the way they are read,
// e.g., "Paging.limit" becomes "limit".
func (s *Struct[T]) flatten(err error) error {
	verr, ok := err.(*req.ValidationError)
	if !ok {
		return err
	}

	flat := &req.ValidationError{Status: verr.Status}
	for field, msgs := range verr.Messages {
		if _, known := s.multi[field]; !known {
			if i := strings.LastIndex(field, "."); i >= 0 {
				if _, known := s.multi[field[i+1:]]; known {
					field = field[i+1:]
				}
			}
		}

		for _, msg := range msgs {
			flat.Add(field, msg)
		}
	}

	return flat
}

// formValue renders scalar values the way they would be sent in a form.
func formValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
