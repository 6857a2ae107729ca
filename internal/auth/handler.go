// Package auth serves registration, login and the current-user endpoint.
package auth

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

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/register
func (h *Handler) Register(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields required"})
	}

	ctx := c.Request().Context()
	if _, err := h.svc.Register(ctx, req.Email, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, ledger.ErrPasswordTooLong):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password too long"})
		case errors.Is(err, ledger.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields required"})
		case errors.Is(err, ledger.ErrDuplicateEmail):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
		default:
			h.log.Error(ctx, "register failed", "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error saving user"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Registration successful. Please login."})
}
