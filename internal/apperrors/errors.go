package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeNotAuthorized      ErrorCode = "NOT_AUTHORIZED"
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	CodeUnavailable        ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// AppError carries everything a handler needs to answer a failed request.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Details  any       `json:"details,omitempty"`
	Err      error     `json:"-"`
	HTTPCode int       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so that copies made by WithDetails still compare equal
// to the package-level sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// WithDetails returns a copy so the shared sentinels are never mutated.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

var (
	ErrValidationFailed   = New(CodeValidationFailed, "Validation failed", http.StatusUnprocessableEntity)
	ErrNotAuthorized      = New(CodeNotAuthorized, "You are not authorized to perform this action.", http.StatusForbidden)
	ErrUnauthenticated    = New(CodeUnauthenticated, "You need to sign in before continuing.", http.StatusUnauthorized)
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password.", http.StatusUnauthorized)
	ErrEmailTaken         = New(CodeEmailTaken, "Email has already been taken", http.StatusConflict)
	ErrFileTooLarge       = New(CodeFileTooLarge, "File too large", http.StatusRequestEntityTooLarge)
	ErrLLMUnavailable     = New(CodeUnavailable, "Job extraction is not configured", http.StatusServiceUnavailable)
)

// ValidationError wraps a field -> message map in ErrValidationFailed.
func ValidationError(fields map[string]string) *AppError {
	return ErrValidationFailed.WithDetails(fields)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}
