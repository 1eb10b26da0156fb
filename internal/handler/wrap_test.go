package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/metrics"
)

func newTestWrapper() (*ErrorWrapper, *metrics.Metrics, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	m := metrics.New(prometheus.NewRegistry())
	return NewErrorWrapper(zap.New(core), m), m, logs
}

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		t.Fatalf("wrapped handler returned %v", err)
	}

	var env Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestWrapLeavesSuccessAlone(t *testing.T) {
	w, m, _ := newTestWrapper()

	rec, env := serve(t, w.Wrap(func(c echo.Context) error {
		return c.String(http.StatusAccepted, `{"raw":true}`)
	}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected handler status, got %d", rec.Code)
	}
	if env.Error != nil {
		t.Fatalf("unexpected error body: %+v", env.Error)
	}
	if got := testutil.CollectAndCount(m.ErrorsTotal); got != 0 {
		t.Fatalf("expected no error metrics, got %d", got)
	}
}

func TestWrapConvertsError(t *testing.T) {
	w, m, logs := newTestWrapper()

	rec, env := serve(t, w.Wrap(func(c echo.Context) error {
		return domain.NotFound("thing")
	}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.Success || env.Error == nil || env.Error.Code != domain.CodeNotFound {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(string(domain.CodeNotFound))); got != 1 {
		t.Fatalf("expected one error metric, got %v", got)
	}
	if logs.FilterMessage("request rejected").Len() != 1 {
		t.Fatalf("expected one rejection log, got %v", logs.All())
	}
}

func TestWrapRecoversPanic(t *testing.T) {
	w, m, logs := newTestWrapper()

	rec, env := serve(t, w.Wrap(func(c echo.Context) error {
		var items map[string]int
		items["boom"]++
		return nil
	}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != domain.CodeInternal || env.Error.Cause != "Unknown error" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if got := testutil.ToFloat64(m.PanicsTotal); got != 1 {
		t.Fatalf("expected one panic, got %v", got)
	}
	if logs.FilterMessage("handler panic").Len() != 1 {
		t.Fatal("expected panic to be logged")
	}
}

func TestWrapTwiceHandlesOnce(t *testing.T) {
	w, m, logs := newTestWrapper()

	h := w.Wrap(w.Wrap(func(c echo.Context) error {
		return errors.New("database is on fire")
	}))
	rec, env := serve(t, h)

	if rec.Code != http.StatusInternalServerError || env.Error == nil {
		t.Fatalf("unexpected response: %d %+v", rec.Code, env)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(string(domain.CodeInternal))); got != 1 {
		t.Fatalf("expected error counted once, got %v", got)
	}
	if n := logs.FilterMessage("request failed").Len(); n != 1 {
		t.Fatalf("expected one failure log, got %d", n)
	}
}

func TestWrapCommittedResponseIsNotRewritten(t *testing.T) {
	w, _, logs := newTestWrapper()

	rec, env := serve(t, w.Wrap(func(c echo.Context) error {
		if err := JSON(c, http.StatusOK, "partial", map[string]int{"n": 1}); err != nil {
			return err
		}
		return errors.New("stream broke")
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected original status, got %d", rec.Code)
	}
	if !env.Success || env.Error != nil {
		t.Fatalf("expected the original success body only, got %+v", env)
	}
	if logs.FilterMessage("error after response was committed").Len() != 1 {
		t.Fatal("expected committed-response warning")
	}
}
