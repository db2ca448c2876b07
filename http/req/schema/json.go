package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const jsonSchemaURL = "reqargs.schema.json"

var _ req.Schema[req.Args] = (*JSON)(nil)

// A JSON loads arguments into a req.Args according to a JSON Schema document describing an object.
//
// Each of the document's "properties" is a field; fields of type "array" accept many values.
// Text values are converted into the type their property declares before validating,
// so query params and form values validate the same as JSON.
// Missing fields take the property's "default", if any.
type JSON struct {
	names   []string
	printer *message.Printer
	props   map[string]*jsonschema.Schema
	schema  *jsonschema.Schema
}

// NewJSON compiles doc, a JSON Schema document, into a *JSON.
func NewJSON(doc []byte) (*JSON, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: unmarshaling schema: %s", reqargs.ErrBadConfig, err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(jsonSchemaURL, parsed); err != nil {
		return nil, fmt.Errorf("%w: adding schema: %s", reqargs.ErrBadConfig, err)
	}

	sch, err := c.Compile(jsonSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling schema: %s", reqargs.ErrBadConfig, err)
	}

	for sch.Ref != nil {
		sch = sch.Ref
	}

	names := make([]string, 0, len(sch.Properties))
	for name := range sch.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	return &JSON{
		names:   names,
		printer: message.NewPrinter(language.English),
		props:   sch.Properties,
		schema:  sch,
	}, nil
}

// MustJSON is like NewJSON but panics if doc does not compile.
func MustJSON(doc []byte) *JSON {
	s, err := NewJSON(doc)
	if err != nil {
		panic(err)
	}

	return s
}

// Fields lists the names of the document's properties, sorted.
func (s *JSON) Fields() []string { return append([]string(nil), s.names...) }

// Multiple reports whether the property name is of type "array".
func (s *JSON) Multiple(name string) bool {
	return hasType(s.props[name], "array")
}

// Load converts the raw values of every property and validates them against the document.
//
// Values of "integer" properties load as an int64 and values of "number" properties as a float64,
// no matter the location they were read from.
func (s *JSON) Load(raw map[string]any) (req.Args, error) {
	verr := new(req.ValidationError)
	args := make(req.Args, len(s.names))
	for _, name := range s.names {
		v, ok := raw[name]
		prop := s.props[name]
		if !ok || req.IsMissing(v) {
			if prop != nil && prop.Default != nil {
				args[name] = coerce(prop, *prop.Default, name, verr)
			}
			continue
		}

		args[name] = coerce(prop, v, name, verr)
	}

	// NOTE: the validator only accepts map[string]any for objects.
	err := s.schema.Validate(map[string]any(args))
	if err != nil {
		var valErr *jsonschema.ValidationError
		if !errors.As(err, &valErr) {
			return nil, fmt.Errorf("%w: %s", reqargs.ErrUnexpected, err)
		}

		s.collect(valErr, verr)
	}

	if verr.Len() > 0 {
		return nil, verr
	}

	return args, nil
}

// collect walks the leaves of valErr, adding their messages to verr.
func (s *JSON) collect(valErr *jsonschema.ValidationError, verr *req.ValidationError) {
	if len(valErr.Causes) > 0 {
		for _, cause := range valErr.Causes {
			s.collect(cause, verr)
		}
		return
	}

	field := strings.Join(valErr.InstanceLocation, ".")

	if required, ok := valErr.ErrorKind.(*kind.Required); ok {
		for _, name := range required.Missing {
			key := name
			if field != "" {
				key = field + "." + name
			}
			verr.Add(key, msgRequired)
		}
		return
	}

	if field == "" {
		field = SchemaKey
	}

	msg := valErr.ErrorKind.LocalizedString(s.printer)
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
		if !strings.HasSuffix(msg, ".") {
			msg += "."
		}
	}

	verr.Add(field, msg)
}

// coerce converts v into the Go type prop declares.
// Whole numbers too large for an int64 add a message for field to verr.
// Values coerce cannot convert are left as they are for the document to reject.
func coerce(prop *jsonschema.Schema, v any, field string, verr *req.ValidationError) any {
	if prop == nil {
		return v
	}

	if hasType(prop, "array") {
		items, ok := toSlice(v)
		if !ok {
			return v
		}

		item := itemSchema(prop)
		for i := range items {
			items[i] = coerce(item, items[i], field+"."+strconv.Itoa(i), verr)
		}
		return items
	}

	switch {
	case hasType(prop, "integer"):
		return coerceInt(v, field, verr)
	case hasType(prop, "number"):
		return coerceFloat(v)
	}

	str, ok := v.(string)
	if !ok {
		return v
	}

	switch {
	case hasType(prop, "boolean"):
		if b, msg := toBool(str); msg == "" {
			return b
		}
	case hasType(prop, "null"):
		if str == "" {
			return nil
		}
	}

	return v
}

// coerceInt converts text and numbers holding whole values into an int64.
func coerceInt(v any, field string, verr *req.ValidationError) any {
	var f float64
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		f = t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}

		var err error
		if f, err = t.Float64(); err != nil {
			return v
		}
	case string:
		str := strings.TrimSpace(t)
		if i, err := strconv.ParseInt(str, 10, 64); err == nil {
			return i
		}

		var err error
		if f, err = strconv.ParseFloat(str, 64); err != nil {
			return v
		}
	default:
		return v
	}

	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}

	i, ok := floatToInt(f)
	if !ok {
		verr.Add(field, "Not a valid integer.")
		return v
	}

	return i
}

// coerceFloat converts text and numbers into a float64.
func coerceFloat(v any) any {
	var (
		f   float64
		err error
	)

	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return v
	}

	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}

	return f
}

// hasType reports whether sch declares typ, but not string, as one of its types.
func hasType(sch *jsonschema.Schema, typ string) bool {
	if sch == nil {
		return false
	}

	for sch.Ref != nil {
		sch = sch.Ref
	}

	if sch.Types == nil {
		return false
	}

	types := sch.Types.ToStrings()
	if typ != "string" && slices.Contains(types, "string") {
		return false
	}

	return slices.Contains(types, typ)
}

// itemSchema finds the schema every item of an array must satisfy.
func itemSchema(sch *jsonschema.Schema) *jsonschema.Schema {
	for sch.Ref != nil {
		sch = sch.Ref
	}

	if sch.Items2020 != nil {
		return sch.Items2020
	}

	if item, ok := sch.Items.(*jsonschema.Schema); ok {
		return item
	}

	return nil
}
