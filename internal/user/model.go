// Package user serves account summaries.
package user

import (
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

// Summary is the public view of an account. The password hash and admin
// flag never leave the service.
type Summary struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	VerifiedEmail bool            `json:"verified_email"`
}

func NewSummary(u *ledger.User) Summary {
	return Summary{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Balance:       u.Balance,
		IsActive:      u.IsActive,
		VerifiedEmail: u.VerifiedEmail,
	}
}

// LoginSummary is the login response's view of the account. It spells the
// activity flag isActive.
type LoginSummary struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	VerifiedEmail bool            `json:"verified_email"`
}

func NewLoginSummary(u *ledger.User) LoginSummary {
	return LoginSummary{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Balance:       u.Balance,
		IsActive:      u.IsActive,
		VerifiedEmail: u.VerifiedEmail,
	}
}
