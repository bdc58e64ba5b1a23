package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("username taken")
	ErrNotFound           = errors.New("task not found")
)

// Validation messages.
const (
	MsgMissingRequiredFields = "Missing required fields"
	MsgMissingFields         = "Missing fields"
	MsgInvalidFields         = "Invalid fields"
)

// ValidationError describes rejected input, keyed by JSON field name.
type ValidationError struct {
	Message string
	Errors  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields(), ", "))
}

// Fields reports the offending field names in sorted order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func fieldError(message, field, text string) *ValidationError {
	return &ValidationError{
		Message: message,
		Errors:  map[string][]string{field: {text}},
	}
}
