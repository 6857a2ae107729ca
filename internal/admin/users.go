// Package admin serves account administration: freezing, listing and
// aggregate stats.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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

type AccountRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type AdminUser struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	VerifiedEmail bool            `json:"verified_email"`
	IsAdmin       bool            `json:"is_admin"`
	CreatedAt     time.Time       `json:"created_at"`
}

// GET /api/admin/users
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		h.log.Error(c.Request().Context(), "list users failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
	}

	out := make([]AdminUser, 0, len(users))
	for _, u := range users {
		out = append(out, AdminUser{
			ID:            u.ID,
			Email:         u.Email,
			Username:      u.Username,
			Balance:       u.Balance,
			IsActive:      u.IsActive,
			VerifiedEmail: u.VerifiedEmail,
			IsAdmin:       u.IsAdmin,
			CreatedAt:     u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// POST /api/freeze-account
func (h *Handler) FreezeAccount(c echo.Context) error {
	return h.setActive(c, false)
}

// POST /api/unfreeze-account
func (h *Handler) UnfreezeAccount(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *Handler) setActive(c echo.Context, active bool) error {
	req := new(AccountRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}

	ctx := c.Request().Context()
	var err error
	if active {
		err = h.svc.Unfreeze(ctx, req.UserID)
	} else {
		err = h.svc.Freeze(ctx, req.UserID)
	}
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		h.log.Error(ctx, "account status change failed", "user_id", req.UserID, "active", active, "error", err)
		if active {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error unfreezing account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error freezing account"})
	}

	if active {
		return c.JSON(http.StatusOK, echo.Map{"message": "Account unfrozen."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account frozen."})
}
