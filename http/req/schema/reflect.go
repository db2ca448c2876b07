package schema

import (
	"encoding/json"
	"fmt"

	invschema "github.com/invopop/jsonschema"
	"github.com/xy-planning-network/reqargs"
)

// Reflect builds a *JSON from the Go type of v, a struct.
//
// Properties are named by "json" struct tags and constrained by "jsonschema" struct tags, e.g.:
//
//	type Echo struct {
//		Name string `json:"name" jsonschema:"minLength=1,default=World"`
//		Tags []int  `json:"tags,omitempty"`
//	}
//
// Fields without "omitempty" are required.
func Reflect(v any) (*JSON, error) {
	r := &invschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	doc, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling reflected schema: %s", reqargs.ErrBadConfig, err)
	}

	return NewJSON(doc)
}
