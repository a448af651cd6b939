// Package apperr holds the error taxonomy shared by all services.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error kinds, matched with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidationFailed  = errors.New("validation failed")
	ErrReservationFailed = errors.New("reservation failed")
	ErrPublishFailed     = errors.New("publish failed")
	ErrOrderNotCompleted = errors.New("order not completed")
)

// Stable error codes returned to API callers.
const (
	CodeInsufficientStock = "INV-0001"
	CodeInventoryNotFound = "INV-0002"
	CodePublishFailed     = "INV-0003"
	CodeOrderNotCompleted = "ORD-0001"
	CodeOrderNotFound     = "ORD-0002"
	CodeValidationFailed  = "VAL-0001"
	CodeReservationFailed = "RES-0001"
	CodeInternal          = "SYS-0001"
)

// Error carries a code, a kind and an optional cause.
type Error struct {
	Code    string
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func newError(code string, kind error, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func ProductNotFound(productID int64) *Error {
	return newError(CodeInventoryNotFound, ErrNotFound, nil, "product %d not found", productID)
}

func CategoryNotFound(categoryID int64) *Error {
	return newError(CodeInventoryNotFound, ErrNotFound, nil, "category %d not found", categoryID)
}

// ReplicaNotFound reports a miss in the storefront's copy of the inventory.
func ReplicaNotFound(format string, args ...any) *Error {
	return newError(CodeInventoryNotFound, ErrNotFound, nil, format, args...)
}

func OrderNotFound(format string, args ...any) *Error {
	return newError(CodeOrderNotFound, ErrNotFound, nil, format, args...)
}

func InsufficientStock(productID int64, available, requested int) *Error {
	return newError(CodeInsufficientStock, ErrInsufficientStock, nil,
		"insufficient stock for product %d: available %d, requested %d", productID, available, requested)
}

// StockUnavailable is InsufficientStock reported by a remote validation that
// does not disclose the available quantity.
func StockUnavailable(productID int64, requested int) *Error {
	return newError(CodeInsufficientStock, ErrInsufficientStock, nil,
		"insufficient stock for product %d: requested %d", productID, requested)
}

func Validation(format string, args ...any) *Error {
	return newError(CodeValidationFailed, ErrValidationFailed, nil, format, args...)
}

// ReservationFailed names the item whose remote call gave up.
func ReservationFailed(productID int64, quantity int, cause error) *Error {
	return newError(CodeReservationFailed, ErrReservationFailed, cause,
		"reservation of %d x product %d failed", quantity, productID)
}

func PublishFailed(topic string, cause error) *Error {
	return newError(CodePublishFailed, ErrPublishFailed, cause, "publish to %s failed", topic)
}

// OrderNotCompleted wraps any saga failure.
func OrderNotCompleted(cause error, format string, args ...any) *Error {
	return newError(CodeOrderNotCompleted, ErrOrderNotCompleted, cause, format, args...)
}

// Code returns the code of the outermost *Error in the chain, or CodeInternal.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code the API layer returns.
// Saga failures are checked first so a wrapped InsufficientStock still yields 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrOrderNotCompleted):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
