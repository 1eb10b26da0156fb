package domain

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies a domain failure kind. The set is closed: only the
// constants below are valid.
type ErrorCode string

const (
	CodeUnauthorized  ErrorCode = "ERR_UNAUTHORIZED"
	CodeNotFound      ErrorCode = "ERR_NOT_FOUND"
	CodeAlreadyExists ErrorCode = "ERR_DATA_ALREADY_EXIST"
	CodeMissingParam  ErrorCode = "ERR_MISSING_PARAMETER"
	CodeValidation    ErrorCode = "ERR_VALIDATION_ERROR"
	CodeInternal      ErrorCode = "ERR_INTERNAL_SERVER_ERROR"
)

var codeStatus = map[ErrorCode]int{
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeMissingParam:  http.StatusBadRequest,
	CodeValidation:    http.StatusBadRequest,
	CodeInternal:      http.StatusInternalServerError,
}

// Codes returns every member of the closed code set.
func Codes() []ErrorCode {
	return []ErrorCode{
		CodeUnauthorized,
		CodeNotFound,
		CodeAlreadyExists,
		CodeMissingParam,
		CodeValidation,
		CodeInternal,
	}
}

// Valid reports whether c belongs to the closed code set.
func (c ErrorCode) Valid() bool {
	_, ok := codeStatus[c]
	return ok
}

// StatusFor returns the HTTP status for code. It panics on a code outside
// the closed set.
func StatusFor(code ErrorCode) int {
	status, ok := codeStatus[code]
	if !ok {
		panic(fmt.Sprintf("domain: unknown error code %q", code))
	}
	return status
}

// AppError is a typed application failure. It is created where the failure
// is detected and converted to a response by the handler layer.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]any

	status int
	cause  error
}

// ErrorOption customizes an AppError at construction.
type ErrorOption func(*AppError)

// WithDetails attaches structured context. Never put secrets here: details
// are sent to the client.
func WithDetails(details map[string]any) ErrorOption {
	return func(e *AppError) {
		e.Details = details
	}
}

// WithStatus overrides the status derived from the code.
func WithStatus(status int) ErrorOption {
	return func(e *AppError) {
		e.status = status
	}
}

// WithCause records the underlying error. The cause is only ever logged.
func WithCause(err error) ErrorOption {
	return func(e *AppError) {
		e.cause = err
	}
}

// NewAppError builds an AppError. Validation errors come from the validate
// package only, so CodeValidation is rejected here along with unknown codes.
func NewAppError(code ErrorCode, message string, opts ...ErrorOption) *AppError {
	if !code.Valid() {
		panic(fmt.Sprintf("domain: unknown error code %q", code))
	}
	if code == CodeValidation {
		panic("domain: validation errors must be produced by the validator")
	}

	e := &AppError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Forbidden reports an authenticated caller that may not perform the action.
func Forbidden(message string) *AppError {
	return NewAppError(CodeUnauthorized, message, WithStatus(http.StatusForbidden))
}

// NotFound is a shorthand for a CodeNotFound error about a named resource.
func NotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, resource+" not found")
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError carrying the same code, so sentinel comparisons
// with errors.Is work on errors built elsewhere. A target with a status
// override also requires the status to match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.status == 0 || t.status == e.HTTPStatus()
}

// HTTPStatus returns the override when set, otherwise the table status.
func (e *AppError) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	return StatusFor(e.Code)
}

var (
	ErrNotFound         = &AppError{Code: CodeNotFound, Message: "resource not found"}
	ErrUnauthorized     = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden        = &AppError{Code: CodeUnauthorized, Message: "forbidden", status: http.StatusForbidden}
	ErrAlreadyExists    = &AppError{Code: CodeAlreadyExists, Message: "resource already exists"}
	ErrMissingParameter = &AppError{Code: CodeMissingParam, Message: "missing parameter"}
)
