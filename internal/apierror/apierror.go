// Package apierror holds the JSON envelopes every 4xx/5xx response uses, so
// driver errors and stack traces never reach the till.
package apierror

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// APIError is the canonical error envelope: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries the failing validator tag per request field.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// FromValidator converts validator output into a ValidationError. ok is false
// when err is not a validator.ValidationErrors (e.g. an invalid struct).
func FromValidator(err error) (ve *ValidationError, ok bool) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, false
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}
	return NewValidation(fields), true
}
