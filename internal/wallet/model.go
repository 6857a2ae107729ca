// Package wallet serves deposits and transaction history.
package wallet

import (
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

type DepositRequest struct {
	UserID string          `json:"userId"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type DepositResponse struct {
	Message string        `json:"message"`
	Address string        `json:"address,omitempty"`
	TxID    string        `json:"txId"`
	Status  ledger.Status `json:"status"`
}

type TxRequest struct {
	TxID string `json:"txId" validate:"required"`
}

type ApproveResponse struct {
	Message string          `json:"message"`
	TxID    string          `json:"txId"`
	Balance decimal.Decimal `json:"balance"`
}
