package ingest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	repo := &mockRepo{}
	h := NewHandler(NewService(repo, zerolog.Nop()))
	return h, repo, echo.New()
}

func TestHandler_Reindex(t *testing.T) {
	h, repo, e := newTestHandler()
	body := `{"resourceType": "Bundle", "type": "collection", "entry": [{"resource": ` + patientJSON + `}]}`
	req := httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Reindex(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected 1 patient row, got %d", len(repo.patients))
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("status = %q, want success", resp["status"])
	}
}

func TestHandler_Reindex_UnrecognizedKind(t *testing.T) {
	h, repo, e := newTestHandler()
	body := `{"resourceType": "Bundle", "type": "collection", "entry": [{"resource": {"resourceType": "Claim", "id": "x1"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Reindex(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if repo.total() != 0 {
		t.Errorf("expected no rows, got %d", repo.total())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message in the response body")
	}
}

func TestHandler_Reindex_BadPayload(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Reindex(c)
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}
