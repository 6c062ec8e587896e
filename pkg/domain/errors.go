package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingURL      = errors.New("url is required")
	ErrMissingHTML     = errors.New("html is required")
	ErrCircuitOpen     = errors.New("upstream circuit is open")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNoStreamFound   = errors.New("no stream url found in embed page")
)

// InvalidInputError reports a caller-supplied value that can never be
// processed, such as a relative or non-http source URL.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func NewInvalidInputError(field, value, reason string) error {
	return &InvalidInputError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

func IsInvalidInputError(err error) bool {
	if err == nil {
		return false
	}
	var invalid *InvalidInputError
	return errors.As(err, &invalid)
}

// UpstreamError is returned when a third-party page answered with a
// non-2xx status.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s responded with status %d", e.URL, e.StatusCode)
}

func NewUpstreamError(url string, status int) error {
	return &UpstreamError{URL: url, StatusCode: status}
}

// UpstreamStatus returns the upstream status code carried by err, or 0.
func UpstreamStatus(err error) int {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}
	return 0
}
