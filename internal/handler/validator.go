package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/validate"
)

const contextKeyBody = "charity.body"

// AppValidator adapts a SchemaValidator to echo's Validator so c.Validate
// reports the same field errors as body validation.
type AppValidator struct {
	schemas validate.SchemaValidator
}

// NewAppValidator creates a new AppValidator.
func NewAppValidator(schemas validate.SchemaValidator) *AppValidator {
	return &AppValidator{schemas: schemas}
}

// Validate normalizes and checks a bound struct pointer.
func (v *AppValidator) Validate(i any) error {
	if errs := v.schemas.Check(context.Background(), i); errs != nil {
		return errs
	}
	return nil
}

// ValidateBody decodes the JSON body into T and rejects the request with a
// validation error when it does not conform. Handlers read the value with
// Body.
func ValidateBody[T any](schemas validate.SchemaValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := validate.DecodeBody(c.Request().Body)
			if err != nil {
				return err
			}

			res := validate.Parse[T](c.Request().Context(), schemas, raw)
			if !res.OK() {
				return res.Err
			}

			c.Set(contextKeyBody, res.Value)
			return next(c)
		}
	}
}

// Body returns the value stored by ValidateBody.
func Body[T any](c echo.Context) *T {
	v, _ := c.Get(contextKeyBody).(*T)
	return v
}

// bindQuery binds query parameters into q and validates it.
func bindQuery(c echo.Context, q any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, q); err != nil {
		return err
	}
	return c.Validate(q)
}
