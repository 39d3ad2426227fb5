// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common sentinels for the API client and callers.
var (
	// ErrNetwork indicates the backend was unreachable or the request timed out.
	ErrNetwork = errors.New("network error")

	// ErrAuth indicates expired/invalid credentials unrecoverable by refresh.
	ErrAuth = errors.New("authentication failed")

	// ErrValidation indicates a 4xx response with structured field errors.
	ErrValidation = errors.New("validation failed")

	// ErrServer indicates an unexpected 5xx response.
	ErrServer = errors.New("server error")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// FieldErrors carries per-field messages from a 4xx response body.
// Unwraps to ErrValidation so callers can match with errors.Is.
type FieldErrors struct {
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *FieldErrors) Unwrap() error { return ErrValidation }
