package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrNoRefreshToken marks a 401 that could not be recovered because no
	// refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrRefreshFailed marks a 401 that could not be recovered because the
	// refresh endpoint did not issue a new access token.
	ErrRefreshFailed = errors.New("refreshing the access token failed")
	// ErrValidation marks input rejected before any request was sent.
	ErrValidation = errors.New("invalid input")
)

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when the server answered with a non-2xx status.
// Body holds the raw response body.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// FieldErrors normalises the response body.
func (e *HTTPStatusError) FieldErrors() []FieldError {
	return ParseErrorBody(e.Body)
}

type AuthReason string

const (
	ReasonNoRefreshToken AuthReason = "no_refresh_token"
	ReasonRefreshFailed  AuthReason = "refresh_failed"
)

// AuthError is returned when a request was rejected with 401 and the access
// token could not be refreshed. Original is the 401 as received; errors.As
// with an *HTTPStatusError target yields it.
type AuthError struct {
	Reason   AuthReason
	Original *HTTPStatusError
	Err      error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString(e.sentinel().Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Original != nil {
		b.WriteString(" (")
		b.WriteString(e.Original.Error())
		b.WriteString(")")
	}

	return b.String()
}

func (e *AuthError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

func (e *AuthError) sentinel() error {
	if e.Reason == ReasonNoRefreshToken {
		return ErrNoRefreshToken
	}

	return ErrRefreshFailed
}

// ValidationError lists the fields rejected by client-side validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, FormatFieldErrors(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StatusCode returns the HTTP status carried by err, or 0 if err does not
// carry one. For an *AuthError this is the status of the original request.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	return 0
}

// IsUnauthorized reports whether err ends in a 401, whether or not a refresh
// was attempted.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// FieldError is one normalised error message. Field is empty for messages
// that do not belong to a specific input field.
type FieldError struct {
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}

	return f.Field + ": " + f.Message
}

func FormatFieldErrors(fields []FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}

	return strings.Join(parts, "; ")
}

// generalKeys hold messages that are not bound to an input field.
var generalKeys = map[string]bool{
	"error":            true,
	"detail":           true,
	"message":          true,
	"non_field_errors": true,
}

// ParseErrorBody normalises an error response body. The backend answers with
// a JSON string, an object with an error/detail message, an object wrapping
// field errors under "details", or an object mapping fields to one or more
// messages. Bodies that are not JSON are returned as a single message.
func ParseErrorBody(body []byte) []FieldError {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return []FieldError{{Message: trimmed}}
	}

	// Authentication failures carry a detail message next to token
	// diagnostics that mean nothing to a user.
	if obj, ok := decoded.(map[string]any); ok {
		if detail, ok := obj["detail"].(string); ok {
			return []FieldError{{Message: detail}}
		}
	}

	var general, fields []FieldError
	collectFieldErrors("", decoded, &general, &fields)

	return append(general, fields...)
}

func collectFieldErrors(field string, v any, general, fields *[]FieldError) {
	add := func(msg string) {
		if field == "" || generalKeys[lastSegment(field)] {
			*general = append(*general, FieldError{Message: msg})
			return
		}
		*fields = append(*fields, FieldError{Field: field, Message: msg})
	}

	switch val := v.(type) {
	case nil:
	case string:
		add(val)
	case []any:
		for _, item := range val {
			collectFieldErrors(field, item, general, fields)
		}
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(val)) {
			child := key
			switch {
			case key == "details" && field == "":
				child = ""
			case field != "" && !generalKeys[lastSegment(field)]:
				child = field + "." + key
			}
			collectFieldErrors(child, val[key], general, fields)
		}
	default:
		add(fmt.Sprint(val))
	}
}

func lastSegment(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		return field[i+1:]
	}

	return field
}

// NormalizeErrors turns any error returned by the client into a list of
// messages suitable for display.
func NormalizeErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if fields := statusErr.FieldErrors(); len(fields) > 0 {
			return fields
		}

		return []FieldError{{Message: http.StatusText(statusErr.StatusCode)}}
	}

	return []FieldError{{Message: err.Error()}}
}
