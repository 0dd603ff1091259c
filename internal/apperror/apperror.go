// Package apperror defines the error kinds raised by the domain services.
// Services return these values; the HTTP layer maps them to status codes
// through HTTPStatus and never inspects the message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInsufficientStock
	KindOwnership
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindOwnership:
		return "ownership_conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is the single concrete error type of the taxonomy.
// Op and Entity are filled for internal errors so that an external
// notification hook can report where the failure happened.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Entity  string
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindInternal && e.Err != nil {
		if e.Entity != "" {
			return fmt.Sprintf("%s (%s): %v", e.Op, e.Entity, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error sharing the same Kind, so callers can write
// errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrOwnership         = &Error{Kind: KindOwnership}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInternal          = &Error{Kind: KindInternal}
)

func Validation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Validationf(format string, args ...any) error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return NotFound(fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return Conflict(fmt.Sprintf(format, args...))
}

// StockError is returned when a stock decrement would leave a product below zero.
// It is a validation error for the caller (409/400 class), carrying the numbers
// needed to build a precise message.
type StockError struct {
	Producto   string
	Disponible int
	Solicitado int
	Message    string
}

func (e *StockError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Stock insuficiente para %s. Disponible: %d, Solicitado: %d", e.Producto, e.Disponible, e.Solicitado)
}

func (e *StockError) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == ErrInsufficientStock || t == ErrValidation
}

func InsufficientStock(producto string, disponible, solicitado int) *StockError {
	return &StockError{Producto: producto, Disponible: disponible, Solicitado: solicitado}
}

// Ownership builds the error raised when a plate is already bound to another client.
func Ownership(patente, duenio string) error {
	return &Error{
		Kind: KindOwnership,
		Message: fmt.Sprintf("La patente %s ya está registrada para otro cliente (%s). No se puede reasignar.",
			patente, duenio),
	}
}

// Internal wraps an unexpected failure. Wrapping an already classified error
// returns it untouched.
func Internal(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	var se *StockError
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "Error interno del servidor", Op: op, Entity: entity, Err: err}
}

// KindOf classifies any error; unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var se *StockError
	if errors.As(err, &se) {
		return KindInsufficientStock
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInsufficientStock, KindOwnership:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show to API clients.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "Error interno del servidor"
	}
	return err.Error()
}

// Origin returns the operation and entity recorded on an internal error.
func Origin(err error) (op, entity string) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Op, ae.Entity
	}
	return "", ""
}
