package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /api/admin/stats
func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		h.log.Error(c.Request().Context(), "stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute stats"})
	}
	return c.JSON(http.StatusOK, st)
}
