package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// A Kind is the type a Field converts its values into.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindFloat
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "any"
	}
}

var (
	truthy = map[string]bool{"1": true, "on": true, "t": true, "true": true, "y": true, "yes": true}
	falsy  = map[string]bool{"0": true, "off": true, "f": true, "false": true, "n": true, "no": true}
)

// A Field declares a single argument of a Map.
//
// Fields are built by chaining calls, e.g.:
//
//	schema.Int("page").Default(1).Rules("min=1")
type Field struct {
	name       string
	kind       Kind
	def        any
	hasDefault bool
	multiple   bool
	nested     *Map
	required   bool
	rules      string
	validators []func(v any) error
}

// Any declares a field whose values are passed along as they are found.
func Any(name string) *Field { return &Field{name: name, kind: KindAny} }

// Bool declares a field converted to a bool.
// Strings such as "1", "on", "true" or "yes" are true; "0", "off", "false" or "no" are false.
func Bool(name string) *Field { return &Field{name: name, kind: KindBool} }

// Float declares a field converted to a float64.
func Float(name string) *Field { return &Field{name: name, kind: KindFloat} }

// Int declares a field converted to an int.
func Int(name string) *Field { return &Field{name: name, kind: KindInt} }

// String declares a field converted to a string.
func String(name string) *Field { return &Field{name: name, kind: KindString} }

// Name is the key the field is read from.
func (f *Field) Name() string { return f.name }

// Default sets the value used when the field is Missing.
// A Field with a default is never required.
func (f *Field) Default(v any) *Field {
	f.def = v
	f.hasDefault = true
	return f
}

// Multiple declares the field accepts many values, loading them as a []any.
func (f *Field) Multiple() *Field {
	f.multiple = true
	return f
}

// Nested declares the field is a JSON object loaded by m.
func (f *Field) Nested(m *Map) *Field {
	f.nested = m
	return f
}

// Required declares the field must be present.
func (f *Field) Required() *Field {
	f.required = true
	return f
}

// Rules sets the go-playground/validator rules the loaded value must satisfy, e.g., "min=2,max=10".
func (f *Field) Rules(rules string) *Field {
	f.rules = rules
	return f
}

// Validate adds fn to the checks the loaded value must pass.
//
// fn returns a *req.ValidationError to set messages under the field's name
// or, with non-empty field names, under names prefixed by the field's.
// Any other error's text becomes a message for the field.
func (f *Field) Validate(fn func(v any) error) *Field {
	if fn != nil {
		f.validators = append(f.validators, fn)
	}
	return f
}

// convert turns a single value into f's Kind, reporting a message if it cannot.
func (f *Field) convert(v any) (any, string) {
	switch f.kind {
	case KindString:
		return toString(v)
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	default:
		return v, ""
	}
}

func toString(v any) (any, string) {
	switch t := v.(type) {
	case string:
		return t, ""
	case []byte:
		return string(t), ""
	default:
		return nil, "Not a valid string."
	}
}

func toInt(v any) (any, string) {
	const msg = "Not a valid integer."

	switch t := v.(type) {
	case int:
		return t, ""
	case int64:
		return int(t), ""
	case float64:
		i, ok := floatToInt(t)
		if !ok {
			return nil, msg
		}
		return int(i), ""
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), ""
		}

		// Integral literals such as 2.0 or 1e3.
		f, err := t.Float64()
		if err != nil {
			return nil, msg
		}

		i, ok := floatToInt(f)
		if !ok {
			return nil, msg
		}
		return int(i), ""
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, msg
		}
		return i, ""
	default:
		return nil, msg
	}
}

// floatToInt converts f into an int64 if f is a whole number int64 can hold.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	// float64(math.MaxInt64) rounds up to 2^63.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

func toFloat(v any) (any, string) {
	const msg = "Not a valid number."

	switch t := v.(type) {
	case float64:
		return t, ""
	case int:
		return float64(t), ""
	case int64:
		return float64(t), ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, msg
		}
		return f, ""
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, msg
		}
		return f, ""
	default:
		return nil, msg
	}
}

func toBool(v any) (any, string) {
	const msg = "Not a valid boolean."

	switch t := v.(type) {
	case bool:
		return t, ""
	case float64:
		if t == 1 || t == 0 {
			return t == 1, ""
		}
		return nil, msg
	case int:
		if t == 1 || t == 0 {
			return t == 1, ""
		}
		return nil, msg
	case json.Number:
		if t == "1" || t == "0" {
			return t == "1", ""
		}
		return nil, msg
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch {
		case truthy[s]:
			return true, ""
		case falsy[s]:
			return false, ""
		}
		return nil, msg
	default:
		return nil, msg
	}
}

// toSlice copies v into a []any if v is a slice or array.
// A []byte is not a slice of values.
func toSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return append([]any(nil), t...), true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	vals := make([]any, rv.Len())
	for i := range vals {
		vals[i] = rv.Index(i).Interface()
	}

	return vals, true
}
