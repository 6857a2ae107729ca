// Package ledger holds the bookkeeping core: users, deposit transactions,
// the public message feed and the rules tying balances to transaction
// history. Handlers talk to a *Service; persistence sits behind Store.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
)

const TypeDeposit = "deposit"

type User struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	PasswordHash  string          `json:"-"` // never return
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	VerifiedEmail bool            `json:"verified_email"`
	IsAdmin       bool            `json:"is_admin"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	Reference string          `json:"tx_id"`
	CreatedAt time.Time       `json:"created_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedMessage is a Message joined with its author's username.
type FeedMessage struct {
	Message
	Username string `json:"username"`
}

// Settlement is the outcome of moving a transaction to successful.
// Credited is false when the transaction was already successful.
type Settlement struct {
	Transaction Transaction
	Balance     decimal.Decimal
	Credited    bool
}

type Stats struct {
	Users        int             `json:"users"`
	Messages     int             `json:"messages"`
	Transactions map[Status]int  `json:"transactions"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}
