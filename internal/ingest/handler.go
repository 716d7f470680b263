package ingest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/reindex", h.Reindex)
}

// Reindex accepts a decoded bundle and forwards it verbatim to the
// projection dispatcher. Taxonomy errors describe a problem with the
// submitted bundle and come back as a structured 422; anything else is an
// internal fault.
func (h *Handler) Reindex(c echo.Context) error {
	var bundle Bundle
	if err := c.Bind(&bundle); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.IndexBundle(c.Request().Context(), bundle.Entry); err != nil {
		if Recognized(err) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
