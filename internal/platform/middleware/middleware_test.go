package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestIDGenerated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("request_id not set on context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})
	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
	if msg, _ := he.Message.(string); msg != "internal server error" {
		t.Errorf("response message = %q, panic details must stay server-side", he.Message)
	}
}

func TestLoggerSeverityFollowsOutcome(t *testing.T) {
	e := echo.New()

	run := func(handler echo.HandlerFunc) string {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		req := httptest.NewRequest(http.MethodGet, "/reindex", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("request_id", "req-42")
		_ = Logger(logger)(handler)(c)
		return buf.String()
	}

	ok := run(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if !strings.Contains(ok, `"level":"info"`) {
		t.Errorf("successful request should log at info: %s", ok)
	}
	if !strings.Contains(ok, `"request_id":"req-42"`) || !strings.Contains(ok, `"path":"/reindex"`) {
		t.Errorf("missing request fields: %s", ok)
	}

	failed := run(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})
	if !strings.Contains(failed, `"level":"error"`) {
		t.Errorf("failed request should log at error: %s", failed)
	}
}
