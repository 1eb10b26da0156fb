package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	want := map[ErrorCode]int{
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeNotFound:      http.StatusNotFound,
		CodeAlreadyExists: http.StatusConflict,
		CodeMissingParam:  http.StatusBadRequest,
		CodeValidation:    http.StatusBadRequest,
		CodeInternal:      http.StatusInternalServerError,
	}

	if len(Codes()) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(Codes()))
	}

	for _, code := range Codes() {
		for i := 0; i < 3; i++ {
			if got := StatusFor(code); got != want[code] {
				t.Fatalf("StatusFor(%s) call %d: expected %d, got %d", code, i, want[code], got)
			}
		}
	}
}

func TestStatusForUnknownCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown code")
		}
	}()
	StatusFor(ErrorCode("ERR_TEAPOT"))
}

func TestNewAppErrorRejectsInvalidCodes(t *testing.T) {
	for _, code := range []ErrorCode{"ERR_TEAPOT", CodeValidation} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for %q", code)
				}
			}()
			NewAppError(code, "nope")
		}()
	}
}

func TestAppErrorStatus(t *testing.T) {
	err := NewAppError(CodeNotFound, "project not found")
	if got := err.HTTPStatus(); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}

	overridden := NewAppError(CodeInternal, "upstream failed", WithStatus(http.StatusServiceUnavailable))
	if got := overridden.HTTPStatus(); got != http.StatusServiceUnavailable {
		t.Fatalf("expected override 503, got %d", got)
	}

	if got := Forbidden("admins only").HTTPStatus(); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}
}

func TestAppErrorIs(t *testing.T) {
	err := fmt.Errorf("load project: %w", NotFound("project"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected wrapped not-found error to match ErrNotFound")
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Fatal("did not expect match against ErrAlreadyExists")
	}

	if !errors.Is(Forbidden("no"), ErrUnauthorized) {
		t.Fatal("expected forbidden to match the unauthorized code")
	}
	if errors.Is(ErrUnauthorized, ErrForbidden) {
		t.Fatal("did not expect 401 error to match ErrForbidden")
	}
}

func TestAppErrorCause(t *testing.T) {
	root := errors.New("dial tcp: connection refused")
	err := NewAppError(CodeInternal, "load failed", WithCause(root), WithDetails(map[string]any{"id": "p1"}))

	if !errors.Is(err, root) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
	if err.Details["id"] != "p1" {
		t.Fatalf("unexpected details: %#v", err.Details)
	}
	if got := err.Error(); got != "ERR_INTERNAL_SERVER_ERROR: load failed: dial tcp: connection refused" {
		t.Fatalf("unexpected error string: %q", got)
	}
}
