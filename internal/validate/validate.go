// Package validate runs request input against schema structs and reports
// field-level failures without panicking or returning raw engine errors.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// EnginePlayground is the go-playground/validator backed engine.
const EnginePlayground = "playground"

// Errors is a flattened map of JSON field path to message.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+e.Fields[p])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for path unless the path already has a message.
func (e *Errors) Add(path, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[path]; ok {
		return
	}
	e.Fields[path] = msg
}

func (e *Errors) empty() bool {
	return e == nil || len(e.Fields) == 0
}

// SchemaValidator is the boundary between handlers and a validation engine.
// A schema is a pointer to a struct carrying json, validate and mod tags.
type SchemaValidator interface {
	// Validate decodes raw into out with coercion, then checks it.
	Validate(ctx context.Context, raw map[string]any, out any) *Errors
	// Check normalizes and checks an already populated struct.
	Check(ctx context.Context, out any) *Errors
}

// New returns the validator registered under engine.
func New(engine string) (SchemaValidator, error) {
	switch engine {
	case EnginePlayground, "":
		return newPlayground(), nil
	default:
		return nil, fmt.Errorf("validate: unknown engine %q", engine)
	}
}

// Result holds either the parsed value or the validation errors.
type Result[T any] struct {
	Value *T
	Err   *Errors
}

// OK reports whether validation passed.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Parse validates raw against the schema T.
func Parse[T any](ctx context.Context, v SchemaValidator, raw map[string]any) Result[T] {
	var out T
	if errs := v.Validate(ctx, raw, &out); !errs.empty() {
		return Result[T]{Err: errs}
	}
	return Result[T]{Value: &out}
}

// DecodeBody reads a JSON object. An empty body decodes to an empty object.
// Anything that is not a JSON object is reported as a validation error on
// the "body" path.
func DecodeBody(r io.Reader) (map[string]any, error) {
	if r == nil {
		return map[string]any{}, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	// Numbers stay json.Number so integers above 2^53 keep every digit.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		msg := "must be valid JSON"
		if errors.As(err, &typeErr) {
			msg = "must be a JSON object"
		}
		return nil, &Errors{Fields: map[string]string{"body": msg}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &Errors{Fields: map[string]string{"body": "must be valid JSON"}}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
