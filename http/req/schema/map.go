package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
)

// SchemaKey holds messages concerning the arguments as a whole rather than a single field.
const SchemaKey = "_schema"

var _ req.Schema[req.Args] = (*Map)(nil)

// A Map loads arguments into a req.Args according to the Fields it declares.
//
// Every field is checked; Load reports the messages for all failing fields at once.
type Map struct {
	fields     []*Field
	index      map[string]*Field
	names      []string
	valid      validator
	validators []func(req.Args) error
}

// NewMap constructs a *Map loading fields, in order.
// A later field replaces an earlier one of the same name.
func NewMap(fields ...*Field) *Map {
	m := &Map{index: make(map[string]*Field, len(fields)), valid: newValidator()}
	for _, f := range fields {
		if f == nil {
			continue
		}

		if _, ok := m.index[f.name]; !ok {
			m.names = append(m.names, f.name)
			m.fields = append(m.fields, f)
		} else {
			for i := range m.fields {
				if m.fields[i].name == f.name {
					m.fields[i] = f
				}
			}
		}

		m.index[f.name] = f
	}

	return m
}

// WithValidator returns a copy of m that also checks the loaded arguments as a whole with fn.
//
// fn runs only when every field loaded successfully.
// Messages from an error other than a *req.ValidationError are set under SchemaKey.
func (m *Map) WithValidator(fn func(req.Args) error) *Map {
	cp := *m
	cp.validators = append(append([]func(req.Args) error(nil), m.validators...), fn)
	return &cp
}

// Fields lists the names of the declared fields, in order.
func (m *Map) Fields() []string { return append([]string(nil), m.names...) }

// Multiple reports whether name is declared to accept many values.
func (m *Map) Multiple(name string) bool {
	f, ok := m.index[name]
	return ok && f.multiple
}

// Load converts and validates the raw values of every declared field.
//
// A Missing field takes its default if it has one,
// fails if it is required, and is left out otherwise.
func (m *Map) Load(raw map[string]any) (req.Args, error) {
	args, verr, err := m.load(raw)
	if err != nil {
		return nil, err
	}

	if verr != nil {
		return nil, verr
	}

	for _, fn := range m.validators {
		if err := fn(args); err != nil {
			verr, err = mergeFieldError(verr, SchemaKey, err)
			if err != nil {
				return nil, err
			}
		}
	}

	if verr != nil {
		return nil, verr
	}

	return args, nil
}

// load does the work of Load, keeping validation failures apart from other errors.
func (m *Map) load(raw map[string]any) (req.Args, *req.ValidationError, error) {
	var verr *req.ValidationError
	add := func(field, msg string) {
		if verr == nil {
			verr = new(req.ValidationError)
		}
		verr.Add(field, msg)
	}

	args := make(req.Args, len(m.fields))
	for _, f := range m.fields {
		v, ok := raw[f.name]
		if !ok {
			v = req.Missing
		}

		if req.IsMissing(v) {
			switch {
			case f.hasDefault:
				v = f.def
			case f.required:
				add(f.name, msgRequired)
				continue
			default:
				continue
			}
		}

		if v == nil {
			if !f.hasDefault || f.def != nil {
				add(f.name, msgNull)
				continue
			}

			args[f.name] = nil
			continue
		}

		val, nested, ok := m.loadField(f, v, add)
		if nested != nil {
			if verr == nil {
				verr = new(req.ValidationError)
			}
			verr.Merge("", nested)
		}
		if !ok {
			continue
		}

		msgs, err := m.valid.validateVar(val, f.rules)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: field %q", err, f.name)
		}

		for _, msg := range msgs {
			add(f.name, msg)
		}

		if len(msgs) > 0 {
			continue
		}

		failed := false
		for _, fn := range f.validators {
			if err := fn(val); err != nil {
				verr, err = mergeFieldError(verr, f.name, err)
				if err != nil {
					return nil, nil, err
				}
				failed = true
			}
		}

		if !failed {
			args[f.name] = val
		}
	}

	return args, verr, nil
}

// loadField converts v for f, reporting whether it succeeded.
// Failures in nested fields return as a *req.ValidationError with fully qualified field names.
func (m *Map) loadField(f *Field, v any, add func(field, msg string)) (any, *req.ValidationError, bool) {
	if !f.multiple {
		return m.loadOne(f, f.name, v, add)
	}

	vals, ok := toSlice(v)
	if !ok {
		add(f.name, "Not a valid list.")
		return nil, nil, false
	}

	var nested *req.ValidationError
	okAll := true
	for i := range vals {
		key := f.name
		if f.nested != nil {
			key = f.name + "." + strconv.Itoa(i)
		}

		val, verr, ok := m.loadOne(f, key, vals[i], add)
		if verr != nil {
			if nested == nil {
				nested = new(req.ValidationError)
			}
			nested.Merge("", verr)
		}

		okAll = okAll && ok
		vals[i] = val
	}

	return vals, nested, okAll
}

// loadOne converts a single value for f under key.
func (m *Map) loadOne(f *Field, key string, v any, add func(field, msg string)) (any, *req.ValidationError, bool) {
	if f.nested == nil {
		val, msg := f.convert(v)
		if msg != "" {
			add(key, msg)
			return nil, nil, false
		}

		return val, nil, true
	}

	obj, ok := v.(map[string]any)
	if !ok {
		add(key, "Invalid input type.")
		return nil, nil, false
	}

	raw := make(map[string]any, len(f.nested.names))
	for _, name := range f.nested.names {
		if val, ok := obj[name]; ok {
			raw[name] = val
		} else {
			raw[name] = req.Missing
		}
	}

	args, verr, err := f.nested.load(raw)
	if err != nil || verr != nil {
		out := new(req.ValidationError)
		if err != nil {
			out.Add(key, err.Error())
		}
		out.Merge(key, verr)
		return nil, out, false
	}

	return map[string]any(args), nil, true
}

// mergeFieldError folds err into verr under field.
// Errors returned as is are neither a *req.ValidationError nor plain failures of validation.
func mergeFieldError(verr *req.ValidationError, field string, err error) (*req.ValidationError, error) {
	if errors.Is(err, reqargs.ErrUnexpected) || errors.Is(err, reqargs.ErrBadConfig) {
		return verr, err
	}

	if verr == nil {
		verr = new(req.ValidationError)
	}

	var fieldErr *req.ValidationError
	if !errors.As(err, &fieldErr) {
		verr.Add(field, err.Error())
		return verr, nil
	}

	if verr.Status == 0 {
		verr.Status = fieldErr.Status
	}

	for name, msgs := range fieldErr.Messages {
		key := field
		if name != "" && field != SchemaKey {
			key = field + "." + name
		} else if name != "" {
			key = name
		}

		for _, msg := range msgs {
			verr.Add(key, msg)
		}
	}

	return verr, nil
}
