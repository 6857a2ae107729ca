package wallet

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

// POST /api/approve-deposit
func (h *Handler) ApproveDeposit(c echo.Context) error {
	req := new(TxRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "txId required"})
	}

	ctx := c.Request().Context()
	approval, err := h.svc.ApproveDeposit(ctx, req.TxID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "txId required"})
		case errors.Is(err, ledger.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Transaction not found"})
		default:
			h.log.Error(ctx, "approve deposit failed", "tx_id", req.TxID, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error approving deposit"})
		}
	}

	msg := "Deposit approved!"
	if approval.AlreadySettled {
		msg = "Deposit already approved."
	}
	return c.JSON(http.StatusOK, ApproveResponse{
		Message: msg,
		TxID:    approval.Transaction.Reference,
		Balance: approval.Balance,
	})
}

// POST /api/reject-deposit
func (h *Handler) RejectDeposit(c echo.Context) error {
	req := new(TxRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "txId required"})
	}

	ctx := c.Request().Context()
	tx, err := h.svc.RejectDeposit(ctx, req.TxID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "txId required"})
		case errors.Is(err, ledger.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Transaction not found"})
		case errors.Is(err, ledger.ErrAlreadySettled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Deposit already approved"})
		default:
			h.log.Error(ctx, "reject deposit failed", "tx_id", req.TxID, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error rejecting deposit"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deposit rejected.", "txId": tx.Reference})
}

// GET /api/admin/deposits/pending
func (h *Handler) ListPending(c echo.Context) error {
	txs, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		h.log.Error(c.Request().Context(), "list pending deposits failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch pending deposits"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

// GET /api/admin/transactions
func (h *Handler) ListAll(c echo.Context) error {
	txs, err := h.svc.ListAllTransactions(c.Request().Context())
	if err != nil {
		h.log.Error(c.Request().Context(), "list transactions failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch transactions"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}
