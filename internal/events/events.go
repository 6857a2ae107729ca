// Package events defines the ledger events published after state changes
// and the Publisher contract sinks implement.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicDepositCreated  = "deposit.created"
	TopicDepositSettled  = "deposit.settled"
	TopicDepositRejected = "deposit.rejected"
	TopicAccountStatus   = "account.status"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

type DepositCreated struct {
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"tx_id"`
	UserID        string          `json:"user_id"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type DepositSettled struct {
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"tx_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type AccountStatusChanged struct {
	UserID     string    `json:"user_id"`
	Active     bool      `json:"active"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Recorder keeps published events in memory, for tests and local runs.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Topic string
	Event any
}

func (r *Recorder) Publish(_ context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Topic: topic, Event: event})
	return nil
}

// Topics lists the topics recorded so far, in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Topic)
	}
	return out
}
