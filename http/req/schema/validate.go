package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/xy-planning-network/reqargs"
	"github.com/xy-planning-network/reqargs/http/req"
)

const (
	msgRequired = "Missing data for required field."
	msgNull     = "Field may not be null."
	msgUnknown  = "Unknown field."
)

type validator struct {
	valid *v10.Validate
}

// newValidator constructs a validator, which applies default configuration.
func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", validateEnumerable)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("schema"), ",", 2)[0]
		if name == "-" {
			name = ""
		}

		if name == "" {
			name = strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		}

		if name == "-" {
			name = ""
		}

		return name
	})

	return validator{v}
}

// validateStruct checks the fields on structPtr match the rules set by "validate" struct tags.
// On success, validateStruct returns no error.
// On failure, validateStruct translates each issue into a message for its field,
// returning them all as a *req.ValidationError.
func (v validator) validateStruct(structPtr any) error {
	err := v.valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %s", reqargs.ErrUnexpected, err)
	}

	verr := new(req.ValidationError)
	for _, fe := range errs {
		field := fe.Namespace()

		ns := strings.SplitN(field, ".", 2)
		if len(ns) == 2 {
			field = ns[1]
		}

		verr.Add(field, ruleMessage(fe))
	}

	return verr
}

// validateVar checks val matches rules, a "validate" struct tag, returning a message per failed rule.
// A misconfigured rule returns an error instead.
func (v validator) validateVar(val any, rules string) (msgs []string, err error) {
	if rules == "" {
		return nil, nil
	}

	// NOTE: validator panics on undefined rules.
	defer func() {
		if r := recover(); r != nil {
			msgs, err = nil, fmt.Errorf("%w: rules %q: %v", reqargs.ErrBadConfig, rules, r)
		}
	}()

	err = v.valid.Var(val, rules)
	if err == nil {
		return nil, nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, fmt.Errorf("%w: rules %q: %s", reqargs.ErrBadConfig, rules, err)
	}

	msgs = make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, ruleMessage(fe))
	}

	return msgs, nil
}

// ruleMessage renders the failed rule of fe for clients.
func ruleMessage(fe v10.FieldError) string {
	k := fe.Kind()
	sized := k == reflect.String || k == reflect.Slice || k == reflect.Array || k == reflect.Map

	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Not a valid email address."
	case "url", "http_url":
		return "Not a valid URL."
	case "uuid", "uuid4":
		return "Not a valid UUID."
	case "enum":
		return "Must be one of the enumerated values."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case "len":
		if sized {
			return fmt.Sprintf("Length must be %s.", fe.Param())
		}
		return fmt.Sprintf("Must be equal to %s.", fe.Param())
	case "min":
		if sized {
			return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		if sized {
			return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "lt":
		return fmt.Sprintf("Must be less than %s.", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("Failed validation: %s=%s.", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("Failed validation: %s.", fe.Tag())
	}
}

// validateEnumerable validates whether field is a valid Enumerable or slice of valid Enumerable.
func validateEnumerable(fl v10.FieldLevel) bool {
	field := fl.Field()

	if field.Kind() == reflect.Slice {
		vals := []reflect.Value{}
		for i := 0; i < field.Len(); i++ {
			vals = append(vals, field.Index(i))
		}

		return checkEnums(vals...)
	}

	return checkEnums(field)
}

// checkEnums asserts each [reflect.Value] is an Enumerable and valid.
func checkEnums(items ...reflect.Value) bool {
	if len(items) == 0 {
		return false
	}

	for _, item := range items {
		if !item.CanInterface() {
			return false
		}

		enum, ok := item.Interface().(reqargs.Enumerable)
		if !ok || enum.Valid() != nil {
			return false
		}
	}

	return true
}
