package chart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestHandler(repo *mockRepo) (*Handler, *echo.Echo) {
	h := NewHandler(NewService(repo, zerolog.Nop()))
	return h, echo.New()
}

func TestHandler_GetAllergies(t *testing.T) {
	id := uuid.NewString()
	repo := &mockRepo{
		demographics: &Demographics{ID: id},
		allergies: []Allergy{
			{AssertedDate: time.Now(), ClinicalStatus: "active", Category: "food", Criticality: "high", Display: "Allergy to peanuts"},
		},
	}
	h, e := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.GetAllergies(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var summary map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(summary["food"]) != 1 || summary["food"][0] != "Peanuts (severe)" {
		t.Errorf("food = %v", summary["food"])
	}
}

func TestHandler_GetAllergies_InvalidID(t *testing.T) {
	h, e := newTestHandler(&mockRepo{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetAllergies(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_GetAllergies_NotFound(t *testing.T) {
	h, e := newTestHandler(&mockRepo{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetAllergies(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}
