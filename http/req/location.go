package req

import (
	"fmt"

	"github.com/xy-planning-network/reqargs"
)

// A Location names the part of an HTTP request a value is read from.
type Location string

const (
	Cookies Location = "cookies"
	Files   Location = "files"
	Form    Location = "form"
	Headers Location = "headers"
	JSON    Location = "json"
	Path    Location = "path"
	Query   Location = "query"
)

// DefaultLocations is the order Locations are searched in
// when neither the Parser nor the call to Parse configure one.
var DefaultLocations = []Location{Query, Form, JSON}

func (l Location) String() string { return string(l) }

// Valid asserts l is one of the known Locations.
func (l Location) Valid() error {
	switch l {
	case Cookies, Files, Form, Headers, JSON, Path, Query:
		return nil
	default:
		return fmt.Errorf("%w: unknown location %q", reqargs.ErrNotValid, string(l))
	}
}
