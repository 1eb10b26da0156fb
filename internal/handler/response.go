package handler

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/service"
	"github.com/sumire/charity/internal/validate"
)

const (
	causeValidation = "Validation failed"
	causeUnknown    = "Unknown error"
)

// Envelope is the standard API response wrapper. A success envelope always
// carries Details and never Error; a failure envelope is the reverse.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Details   any             `json:"details,omitempty"`
	Meta      *PaginationMeta `json:"meta,omitempty"`
	Error     *APIError       `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// PaginationMeta holds page-based pagination info.
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func metaFromPage(p service.Page) PaginationMeta {
	return PaginationMeta{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}

// APIError represents an error in the API response.
type APIError struct {
	Code      domain.ErrorCode `json:"code"`
	Cause     string           `json:"cause"`
	CreatedAt time.Time        `json:"createdAt"`
	Details   any              `json:"details,omitempty"`
}

// BuildSuccess wraps payload in a success envelope. A nil payload, typed
// or not, becomes an empty object so details is always present.
func BuildSuccess(message string, payload any) Envelope {
	if isNil(payload) {
		payload = struct{}{}
	}
	return Envelope{
		Success:   true,
		Message:   message,
		Details:   payload,
		Timestamp: time.Now().UTC(),
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// BuildFailure wraps a formatted error in a failure envelope.
func BuildFailure(apiErr APIError) Envelope {
	return Envelope{
		Success:   false,
		Message:   apiErr.Cause,
		Error:     &apiErr,
		Timestamp: time.Now().UTC(),
	}
}

// FormatError resolves the status and body for err together so the two can
// never disagree. Errors outside the known kinds are reported as a generic
// internal error and their text is never included.
func FormatError(err error) (int, APIError) {
	now := time.Now().UTC()

	var (
		appErr   *domain.AppError
		validErr *validate.Errors
		echoErr  *echo.HTTPError
	)
	switch {
	case errors.As(err, &appErr):
		apiErr := APIError{Code: appErr.Code, Cause: appErr.Message, CreatedAt: now}
		if len(appErr.Details) > 0 {
			apiErr.Details = appErr.Details
		}
		return appErr.HTTPStatus(), apiErr

	case errors.As(err, &validErr):
		return domain.StatusFor(domain.CodeValidation), APIError{
			Code:      domain.CodeValidation,
			Cause:     causeValidation,
			CreatedAt: now,
			Details:   validErr.Fields,
		}

	case errors.As(err, &echoErr):
		code, status := classifyHTTPError(echoErr.Code)
		return status, APIError{Code: code, Cause: http.StatusText(echoErr.Code), CreatedAt: now}

	default:
		return domain.StatusFor(domain.CodeInternal), APIError{
			Code:      domain.CodeInternal,
			Cause:     causeUnknown,
			CreatedAt: now,
		}
	}
}

// classifyHTTPError folds router and middleware statuses into the closed
// code set.
func classifyHTTPError(status int) (domain.ErrorCode, int) {
	switch {
	case status == http.StatusUnauthorized:
		return domain.CodeUnauthorized, http.StatusUnauthorized
	case status == http.StatusForbidden:
		return domain.CodeUnauthorized, http.StatusForbidden
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return domain.CodeNotFound, http.StatusNotFound
	case status == http.StatusConflict:
		return domain.CodeAlreadyExists, http.StatusConflict
	case status >= 400 && status < 500:
		return domain.CodeMissingParam, http.StatusBadRequest
	default:
		return domain.CodeInternal, http.StatusInternalServerError
	}
}

// JSON writes a success envelope.
func JSON(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, BuildSuccess(message, data))
}

// Created writes a 201 success envelope.
func Created(c echo.Context, message string, data any) error {
	return JSON(c, http.StatusCreated, message, data)
}

// JSONList writes a paginated success envelope.
func JSONList(c echo.Context, message string, data any, meta PaginationMeta) error {
	env := BuildSuccess(message, data)
	env.Meta = &meta
	return c.JSON(http.StatusOK, env)
}
