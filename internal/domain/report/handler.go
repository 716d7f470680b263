package report

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kulpsin/healthAssistant/internal/domain/chart"
)

type Handler struct {
	builder *Builder
}

func NewHandler(builder *Builder) *Handler {
	return &Handler{builder: builder}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/patient/:id/report", h.GetReport)
}

// GetReport returns the patient's narrative report as plain markdown text.
func (h *Handler) GetReport(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	text, err := h.builder.PatientReport(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, chart.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.String(http.StatusOK, text)
}
