package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

type playground struct {
	validate *validator.Validate
	conform  *mold.Transformer
}

func newPlayground() *playground {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	if err := v.RegisterValidation("any_complete", anyComplete); err != nil {
		panic(fmt.Sprintf("validate: register any_complete: %v", err))
	}

	return &playground{validate: v, conform: modifiers.New()}
}

func (p *playground) Validate(ctx context.Context, raw map[string]any, out any) *Errors {
	if raw == nil {
		raw = map[string]any{}
	}

	errs := &Errors{}
	if err := decodeFields(raw, out, errs); err != nil {
		errs.Add("body", "could not be decoded")
		return errs
	}

	p.check(ctx, out, errs)
	if errs.empty() {
		return nil
	}
	return errs
}

func (p *playground) Check(ctx context.Context, out any) *Errors {
	errs := &Errors{}
	p.check(ctx, out, errs)
	if errs.empty() {
		return nil
	}
	return errs
}

func (p *playground) check(ctx context.Context, out any, errs *Errors) {
	if err := p.conform.Struct(ctx, out); err != nil {
		errs.Add("body", "could not be normalized")
		return
	}

	err := p.validate.StructCtx(ctx, out)
	if err == nil {
		return
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs.Add("body", "is invalid")
		return
	}

	for _, fe := range validationErrors {
		errs.Add(fieldPath(fe.Namespace()), message(fe))
	}
}

// decodeFields decodes each top-level field on its own so a coercion
// failure can be reported against the field that caused it.
func decodeFields(raw map[string]any, out any, errs *Errors) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("schema must be a pointer to a struct, got %T", out)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		value, ok := raw[name]
		if !ok || value == nil {
			continue
		}

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			TagName:          "json",
			Result:           rv.Field(i).Addr().Interface(),
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				jsonNumberHook,
				mapstructure.StringToTimeHookFunc(time.RFC3339),
				mapstructure.StringToTimeDurationHookFunc(),
			),
		})
		if err != nil {
			return fmt.Errorf("build decoder for %s: %w", name, err)
		}
		if err := dec.Decode(value); err != nil {
			errs.Add(name, "has an invalid type")
		}
	}
	return nil
}

// jsonNumberHook hands json.Number to numeric fields untouched and as a
// plain string to everything else.
func jsonNumberHook(f, t reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Interface:
		return data, nil
	}
	return n.String(), nil
}

func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	collection := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if collection {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if kind == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if collection {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		if kind == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "iso4217":
		return "must be a valid ISO 4217 currency code"
	case "uuid", "uuid4", "uuid7":
		return "must be a valid UUID"
	case "any_complete":
		return "at least one item must have name, description and content"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
