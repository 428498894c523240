package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one rejected field of a ValidationError.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (f FieldError) String() string {
	if f.Param == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Tag)
	}
	return fmt.Sprintf("%s: %s=%s", f.Field, f.Tag, f.Param)
}

// ValidationError is returned when request params are rejected locally,
// before anything is sent.
type ValidationError struct {
	Operation string
	Fields    []FieldError
	Err       error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("kuflow: %s: invalid params: %v", e.Operation, e.Err)
	}

	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("kuflow: %s: invalid params: %s", e.Operation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// APIError is returned when the server answers with a status the operation
// does not accept. Body holds the raw response body; Payload is set when
// the body decodes as a DefaultError.
type APIError struct {
	Operation  string
	StatusCode int
	Header     http.Header
	Body       []byte
	Payload    *DefaultError
}

func (e *APIError) Error() string {
	if e.Payload != nil && e.Payload.Message != "" {
		return fmt.Sprintf("kuflow: %s: HTTP %d: %s", e.Operation, e.StatusCode, e.Payload.Message)
	}
	return fmt.Sprintf("kuflow: %s: unexpected status: %d", e.Operation, e.StatusCode)
}

// TransportError wraps network, timeout and cancellation failures.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kuflow: %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by an APIError in err's chain,
// or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
