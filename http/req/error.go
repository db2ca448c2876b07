package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/reqargs"
)

const (
	// DefaultValidationStatus is the status code a failed validation responds with
	// unless the caller or the ValidationError set one.
	DefaultValidationStatus = http.StatusUnprocessableEntity

	invalidFormMsg = "Invalid form body."
	invalidJSONMsg = "Invalid JSON body."
)

var (
	// ErrInvalidForm signals a form body that could not be parsed.
	ErrInvalidForm = fmt.Errorf("%w: invalid form body", reqargs.ErrBadFormat)

	// ErrInvalidJSON signals a JSON body that is present, declared as JSON, and malformed.
	ErrInvalidJSON = fmt.Errorf("%w: invalid JSON body", reqargs.ErrBadFormat)
)

// An HTTPError is everything needed to respond to a request whose arguments could not be parsed.
type HTTPError struct {
	// Code is the HTTP status code.
	Code int

	// Reason is the status text to respond with.
	Reason string

	// LogMessage is a single-line rendering of the error, fit for logs.
	LogMessage string

	// Messages maps field names to the reasons they were rejected.
	// Errors concerning a whole body use the location as the field name, e.g., "json".
	Messages map[string][]string

	// Headers are set on the response in addition to any others.
	Headers http.Header

	// Err is the error that caused the HTTPError.
	Err error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("reqargs/http/req: %d %s: %s", e.Code, e.Reason, e.LogMessage)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// MarshalJSON renders the parts of e meant for clients.
func (e *HTTPError) MarshalJSON() ([]byte, error) {
	var body struct {
		E struct {
			Code     int                 `json:"code"`
			Status   string              `json:"status,omitempty"`
			Messages map[string][]string `json:"messages,omitempty"`
		} `json:"error"`
	}

	body.E.Code = e.Code
	body.E.Status = e.Reason
	body.E.Messages = e.Messages

	return json.Marshal(body)
}

// An ErrorHandler converts any error arising while parsing r into the error Parse returns.
//
// status is the status code the caller asked for, zero if none;
// headers are the headers the caller asked to add to the response, nil if none.
// An ErrorHandler must always return a non-nil error.
type ErrorHandler func(err error, r *http.Request, status int, headers http.Header) error

// DefaultErrorHandler converts err into an *HTTPError:
//
//   - a *ValidationError responds with status, or the ValidationError's own status,
//     or DefaultValidationStatus, in that order, carrying every field's messages;
//   - ErrInvalidJSON and ErrInvalidForm respond with 400 and a message under "json" or "form";
//   - a *DecodeError responds with 400 and a message under the offending key;
//   - anything else responds with 500.
func DefaultErrorHandler(err error, _ *http.Request, status int, headers http.Header) error {
	var (
		decErr *DecodeError
		valErr *ValidationError
	)

	switch {
	case errors.As(err, &valErr):
		code := status
		if code == 0 {
			code = valErr.Status
		}
		if code == 0 {
			code = DefaultValidationStatus
		}

		return &HTTPError{
			Code:       code,
			Reason:     reasonFor(code),
			LogMessage: valErr.Error(),
			Messages:   valErr.Messages,
			Headers:    headers,
			Err:        err,
		}

	case errors.Is(err, ErrInvalidJSON):
		return &HTTPError{
			Code:       http.StatusBadRequest,
			Reason:     reasonFor(http.StatusBadRequest),
			LogMessage: invalidJSONMsg,
			Messages:   map[string][]string{JSON.String(): {invalidJSONMsg}},
			Headers:    headers,
			Err:        err,
		}

	case errors.Is(err, ErrInvalidForm):
		return &HTTPError{
			Code:       http.StatusBadRequest,
			Reason:     reasonFor(http.StatusBadRequest),
			LogMessage: invalidFormMsg,
			Messages:   map[string][]string{Form.String(): {invalidFormMsg}},
			Headers:    headers,
			Err:        err,
		}

	case errors.As(err, &decErr):
		return &HTTPError{
			Code:       http.StatusBadRequest,
			Reason:     reasonFor(http.StatusBadRequest),
			LogMessage: decErr.Error(),
			Messages:   map[string][]string{decErr.Key: {decErr.Error()}},
			Headers:    headers,
			Err:        err,
		}

	default:
		return &HTTPError{
			Code:       http.StatusInternalServerError,
			Reason:     reasonFor(http.StatusInternalServerError),
			LogMessage: err.Error(),
			Headers:    headers,
			Err:        fmt.Errorf("%w: %w", reqargs.ErrUnexpected, err),
		}
	}
}

// reasonFor returns the status text for code.
func reasonFor(code int) string {
	if code == http.StatusUnprocessableEntity {
		return "Unprocessable Entity"
	}

	return http.StatusText(code)
}
