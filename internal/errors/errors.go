// Package errors provides the application error type shared by the ledger
// services and the HTTP layer. Services return *AppError values so callers can
// branch on Code while the handlers translate StatusCode directly.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so a wrapped
// copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrPersistence    = &AppError{Code: "PERSISTENCE_ERROR", Message: "Failed to persist changes", StatusCode: http.StatusInternalServerError}
)

// Validation errors.
var (
	ErrInvalidAmount        = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a non-negative decimal", StatusCode: http.StatusBadRequest}
	ErrMissingCategory      = &AppError{Code: "MISSING_CATEGORY", Message: "A category is required", StatusCode: http.StatusBadRequest}
	ErrFutureTimestamp      = &AppError{Code: "FUTURE_TIMESTAMP", Message: "Log timestamp cannot be in the future", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Subcategory type must match its parent", StatusCode: http.StatusBadRequest}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrAccountExists   = &AppError{Code: "ACCOUNT_EXISTS", Message: "An account has already been set up", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound      = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse         = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing logs", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren   = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has subcategories", StatusCode: http.StatusConflict}
	ErrNestedSubcategory     = &AppError{Code: "NESTED_SUBCATEGORY", Message: "Subcategories cannot have subcategories", StatusCode: http.StatusConflict}
	ErrCategoryNotSelectable = &AppError{Code: "CATEGORY_NOT_SELECTABLE", Message: "Parent categories cannot be selected", StatusCode: http.StatusConflict}
)

// Log errors.
var (
	ErrLogNotFound = &AppError{Code: "LOG_NOT_FOUND", Message: "Log not found", StatusCode: http.StatusNotFound}
)
