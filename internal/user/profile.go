package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

type Handler struct {
	svc *ledger.Service
	log logging.Logger
}

func NewHandler(svc *ledger.Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// GET /api/user/:id
func (h *Handler) GetUser(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		h.log.Error(c.Request().Context(), "get user failed", "user_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, NewSummary(u))
}
