package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /api/transactions/:userId
func (h *Handler) ListTransactions(c echo.Context) error {
	userID := c.Param("userId")
	txs, err := h.svc.ListTransactions(c.Request().Context(), userID)
	if err != nil {
		h.log.Error(c.Request().Context(), "list transactions failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	return c.JSON(http.StatusOK, txs)
}
