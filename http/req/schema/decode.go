package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	gschema "github.com/gorilla/schema"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
)

func newDecoder() *gschema.Decoder {
	dec := gschema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error returned by *schema.Decoder into standardized errors.
// Some *schema.Decoder errors are issues with calling code;
// some errors are unexpected issues;
// still some are mismatches between a request's values and the expected shape,
// which return as a *req.ValidationError.
func translateDecoderError(err error) error {
	var pkgErrs gschema.MultiError
	if !errors.As(err, &pkgErrs) {
		return fmt.Errorf("%w: %s", reqargs.ErrBadFormat, err)
	}

	verr := new(req.ValidationError)
	for _, pkgErr := range pkgErrs {
		switch err := pkgErr.(type) {
		case gschema.ConversionError:
			verr.Add(err.Key, typeMessage(err.Type))

		case gschema.EmptyFieldError:
			verr.Add(err.Key, msgRequired)

		case gschema.UnknownKeyError:
			// NOTE: unknown keys are ignored by newDecoder;
			// this covers a decoder configured otherwise.
			verr.Add(err.Key, msgUnknown)

		default:
			// NOTE: a field of a type with no schema.Converter registered
			// does not raise an error until a value for it is decoded.
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type", reqargs.ErrNotImplemented)
			}

			return fmt.Errorf("%w: %s", reqargs.ErrUnexpected, err)
		}
	}

	return verr
}

// typeMessage describes the type a value failed to convert into.
func typeMessage(t reflect.Type) string {
	if t == nil {
		return "Not a valid value."
	}

	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return "Not a valid boolean."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Not a valid integer."
	case reflect.Float32, reflect.Float64:
		return "Not a valid number."
	case reflect.String:
		return "Not a valid string."
	default:
		return fmt.Sprintf("Not a valid %s.", t.String())
	}
}
