package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sumire/charity/internal/metrics"
)

const contextKeyWrapped = "charity.wrapped"

// ErrorWrapper turns handler failures into failure envelopes. It is the
// only place that converts an error into an HTTP response.
type ErrorWrapper struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewErrorWrapper creates an ErrorWrapper. m may be nil.
func NewErrorWrapper(logger *zap.Logger, m *metrics.Metrics) *ErrorWrapper {
	return &ErrorWrapper{logger: logger, metrics: m}
}

// Wrap runs next and answers any error or panic it produces. Successful
// handlers write their own response. Wrapping twice is a no-op: only the
// outermost wrapper handles the failure.
func (w *ErrorWrapper) Wrap(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		if wrapped, _ := c.Get(contextKeyWrapped).(bool); wrapped {
			return next(c)
		}
		c.Set(contextKeyWrapped, true)

		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			w.metrics.ObservePanic()
			w.logger.Error("handler panic",
				zap.Any("panic", r),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Stack("stack"),
			)
			w.respond(c, fmt.Errorf("panic: %v", r))
			err = nil
		}()

		if err := next(c); err != nil {
			w.respond(c, err)
		}
		return nil
	}
}

// HTTPErrorHandler answers errors raised outside a wrapped handler, such as
// unmatched routes and middleware failures. Install it as
// echo.HTTPErrorHandler.
func (w *ErrorWrapper) HTTPErrorHandler(err error, c echo.Context) {
	w.respond(c, err)
}

func (w *ErrorWrapper) respond(c echo.Context, err error) {
	status, apiErr := FormatError(err)
	w.metrics.ObserveError(string(apiErr.Code))

	fields := []zap.Field{
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)),
		zap.String("code", string(apiErr.Code)),
		zap.Int("status", status),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
	}
	switch {
	case errors.Is(err, context.Canceled):
		w.logger.Debug("request canceled", fields...)
	case status >= http.StatusInternalServerError:
		w.logger.Error("request failed", fields...)
	default:
		w.logger.Info("request rejected", fields...)
	}

	if c.Response().Committed {
		w.logger.Warn("error after response was committed", fields...)
		return
	}

	if writeErr := c.JSON(status, BuildFailure(apiErr)); writeErr != nil {
		w.logger.Debug("failed to send error response", zap.Error(writeErr))
	}
}
