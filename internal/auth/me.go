package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/middleware"
	"github.com/sudo-init-do/ledgerhub/internal/user"
)

// Me returns the currently authenticated user's summary. Must run behind
// middleware.JWTMiddleware.
// GET /api/me
func (h *Handler) Me(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token claims"})
	}

	u, err := h.svc.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		h.log.Error(c.Request().Context(), "load current user failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, user.NewSummary(u))
}
