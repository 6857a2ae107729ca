package wallet

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

// POST /api/deposit
func (h *Handler) Deposit(c echo.Context) error {
	req := new(DepositRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}

	ctx := c.Request().Context()
	res, err := h.svc.Deposit(ctx, req.UserID, req.Method, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrUnknownMethod):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
		case errors.Is(err, ledger.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		default:
			h.log.Error(ctx, "deposit failed", "user_id", req.UserID, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error saving transaction"})
		}
	}

	return c.JSON(http.StatusOK, DepositResponse{
		Message: res.Message,
		Address: res.Address,
		TxID:    res.Transaction.Reference,
		Status:  res.Transaction.Status,
	})
}
