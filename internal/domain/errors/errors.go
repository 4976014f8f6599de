package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches on the error code so that errors carrying details still compare
// equal to their predefined sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Map session errors
	ErrSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SESSION_NOT_FOUND",
		"map session not found or expired",
		"",
	)

	ErrInvalidViewport = NewBaseError(
		http.StatusBadRequest,
		"INVALID_VIEWPORT",
		"invalid viewport bounds or zoom",
		"",
	)

	ErrInvalidBusinessType = NewBaseError(
		http.StatusBadRequest,
		"INVALID_BUSINESS_TYPE",
		"business type must be one of food, store, shipping",
		"",
	)

	ErrMarkerNotFound = NewBaseError(
		http.StatusNotFound,
		"MARKER_NOT_FOUND",
		"marker is not on the map",
		"",
	)

	ErrClusterNotFound = NewBaseError(
		http.StatusNotFound,
		"CLUSTER_NOT_FOUND",
		"cluster does not exist in the current index",
		"",
	)

	// Business directory errors
	ErrBusinessNotFound = NewBaseError(
		http.StatusNotFound,
		"BUSINESS_NOT_FOUND",
		"business not found",
		"",
	)

	ErrBackendUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"BACKEND_UNAVAILABLE",
		"marketplace backend is unavailable",
		"",
	)

	// Cart errors
	ErrCartItemNotFound = NewBaseError(
		http.StatusNotFound,
		"CART_ITEM_NOT_FOUND",
		"product is not in the cart",
		"",
	)

	ErrInvalidQuantity = NewBaseError(
		http.StatusBadRequest,
		"INVALID_QUANTITY",
		"quantity must be a positive multiple of the sale step",
		"",
	)

	ErrCouponInvalid = NewBaseError(
		http.StatusUnprocessableEntity,
		"COUPON_INVALID",
		"coupon is invalid or does not apply to this order",
		"",
	)

	ErrCartEmpty = NewBaseError(
		http.StatusUnprocessableEntity,
		"CART_EMPTY",
		"cart is empty",
		"",
	)

	ErrBelowMinimumOrder = NewBaseError(
		http.StatusUnprocessableEntity,
		"BELOW_MINIMUM_ORDER",
		"order is below the business minimum",
		"",
	)

	ErrMixedBusinesses = NewBaseError(
		http.StatusConflict,
		"CART_MIXED_BUSINESSES",
		"cart already holds products from another business",
		"",
	)

	// Tile errors
	ErrTileNotFound = NewBaseError(
		http.StatusNotFound,
		"TILE_NOT_FOUND",
		"tile not found",
		"",
	)

	ErrTilesDisabled = NewBaseError(
		http.StatusServiceUnavailable,
		"TILES_DISABLED",
		"tile serving is disabled",
		"",
	)

	// Generic errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"request validation failed",
		"",
	)

	ErrInternalServer = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)
