package ledger

import (
	"context"
	"time"
)

// Store persists ledger state. Every method is atomic on its own: the
// balance credit that accompanies a successful transaction is applied in
// the same critical section or SQL transaction as the status change.
type Store interface {
	// CreateUser inserts u. Emails are unique (ErrDuplicateEmail).
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context) ([]User, error)

	// CreateTransaction inserts tx; when credit is set the owner's balance
	// grows by tx.Amount in the same step. Fails with ErrNotFound for an
	// unknown owner and ErrDuplicateReference for a reused reference.
	CreateTransaction(ctx context.Context, tx *Transaction, credit bool) error
	// SettleTransaction marks the transaction with reference ref successful
	// and credits its owner, unless it already was successful.
	SettleTransaction(ctx context.Context, ref string, at time.Time) (*Settlement, error)
	// RejectTransaction moves a pending transaction to failed. Successful
	// ones yield ErrAlreadySettled.
	RejectTransaction(ctx context.Context, ref string, at time.Time) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	ListTransactionsByStatus(ctx context.Context, status Status) ([]Transaction, error)
	ListAllTransactions(ctx context.Context) ([]Transaction, error)

	// CreateMessage appends m to the feed; ErrNotFound for an unknown author.
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context) ([]FeedMessage, error)

	Stats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
}
