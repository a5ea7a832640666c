package query

import (
	"fmt"
	"strings"
)

// FieldError describes one validation failure at a specific field path.
type FieldError struct {
	// Path is the dotted field path, e.g. "geo.radius_km".
	Path string `json:"path"`

	// Message says what is wrong with the value.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return e.Path + ": " + e.Message
}

// ValidationErrors is the structured list of field-path errors returned by
// the validator. It implements error so callers can propagate it directly,
// while still exposing the individual failures.
//
// Design decision: We collect every failure rather than stopping at the
// first because the caller (typically a human fixing a query file, or a
// pre-pass deciding whether to fall back to defaults) needs the full
// picture in one round trip.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// add appends a field error.
func (v *ValidationErrors) add(path, format string, args ...any) {
	v.Errors = append(v.Errors, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ok reports whether no errors were collected.
func (v *ValidationErrors) ok() bool {
	return len(v.Errors) == 0
}
