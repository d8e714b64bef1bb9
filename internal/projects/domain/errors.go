package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	// ErrNotFound covers both "absent" and "owned by someone else".
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("already exists")
)

// FieldError is a single failed rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// UpstreamError wraps a persistence or blob store failure. The cause is logged,
// never shown to callers.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err unless it already belongs to the domain taxonomy.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthenticated),
		errors.As(err, &ve), errors.As(err, &ue):
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}
