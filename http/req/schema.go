package req

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xy-planning-network/reqargs"
)

// A Schema declares the fields Parse looks for and validates what it finds.
//
// A Schema is shared by every request it parses; implementations must be safe for concurrent use
// and must not change between calls.
type Schema[T any] interface {
	Multiplier

	// Fields lists the names of the fields to look up, in order.
	Fields() []string

	// Load validates and converts the raw values found for every field.
	// Fields with no value anywhere are set to Missing in raw.
	//
	// Load returns a *ValidationError when the values do not satisfy the Schema.
	Load(raw map[string]any) (T, error)
}

// Args are parsed arguments keyed by field name.
type Args map[string]any

// A ValidationError holds the messages explaining why each field failed validation.
type ValidationError struct {
	// Messages maps field names to their messages, in the order they were added.
	Messages map[string][]string

	// Status overrides the HTTP status code used to respond with this error.
	// The zero value defers to the Parser's default.
	Status int
}

// NewValidationError constructs a *ValidationError holding msgs for field.
func NewValidationError(field string, msgs ...string) *ValidationError {
	ve := &ValidationError{Messages: make(map[string][]string)}
	for _, msg := range msgs {
		ve.Add(field, msg)
	}

	return ve
}

// Add appends msg to the messages for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Messages == nil {
		e.Messages = make(map[string][]string)
	}

	e.Messages[field] = append(e.Messages[field], msg)
}

// Merge appends all of other's messages under prefix, joined to each field with a ".".
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}

	for field, msgs := range other.Messages {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}

		for _, msg := range msgs {
			e.Add(key, msg)
		}
	}
}

// Len is the number of fields with messages.
func (e *ValidationError) Len() int { return len(e.Messages) }

// WithStatus sets the HTTP status code to respond with, returning e.
func (e *ValidationError) WithStatus(code int) *ValidationError {
	e.Status = code
	return e
}

// Error renders the messages deterministically, sorted by field.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Messages))
	for field := range e.Messages {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		b, _ := json.Marshal(e.Messages[field])
		parts = append(parts, fmt.Sprintf("%q: %s", field, b))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

func (e *ValidationError) Unwrap() error { return reqargs.ErrNotValid }
