// Package apierror holds the JSON envelopes for every 4xx/5xx response.
// Storage errors and stack traces never reach clients: domain errors are
// converted through FromError, which hides internal failures.
package apierror

import "taller/internal/apperror"

// APIError is the canonical error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists the request fields that failed binding rules.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}

// FromError returns the status code and envelope for a service error.
func FromError(err error) (int, *APIError) {
	return apperror.HTTPStatus(err), New(apperror.PublicMessage(err))
}
