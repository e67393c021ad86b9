package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic bad-request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount and quantity must be positive", http.StatusBadRequest)
}

func ErrMissingCounterparty() *AppError {
	return New("VAL_003", "Counterparty name is required", http.StatusBadRequest)
}

func ErrInvalidTrxType() *AppError {
	return New("VAL_004", "Transaction type must be send or receive", http.StatusBadRequest)
}

// ---- Ledger Business Logic (LGR) ----

func ErrNotFound(entity string) *AppError {
	return New("LGR_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyReversed() *AppError {
	return New("LGR_002", "Transaction has already been reversed", http.StatusConflict)
}

func ErrReversalNotReversible() *AppError {
	return New("LGR_003", "A reversal transaction cannot be reversed", http.StatusConflict)
}

func ErrNameTaken(entity string) *AppError {
	return New("LGR_004", fmt.Sprintf("%s name already in use", entity), http.StatusConflict)
}

func ErrInUse(entity string) *AppError {
	return New("LGR_005", fmt.Sprintf("%s is referenced by active transactions", entity), http.StatusConflict)
}

// ---- Request Scoping (SCOPE) ----

func ErrMissingUserScope() *AppError {
	return New("SCOPE_001", "Missing or unknown user", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
