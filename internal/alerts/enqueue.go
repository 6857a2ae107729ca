package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier implements ledger.Notifier by queueing email tasks.
type Notifier struct {
	client Enqueuer
	now    func() time.Time
}

func NewNotifier(client Enqueuer) *Notifier {
	return &Notifier{client: client, now: time.Now}
}

func NewWelcomeTask(u *ledger.User, at time.Time) (*asynq.Task, error) {
	payload := WelcomeEmailPayload{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Envelope: EmailEnvelope{
			To:      u.Email,
			Subject: fmt.Sprintf("Welcome, %s!", u.Username),
			Body:    fmt.Sprintf("Hi %s, your account is registered. Please login to get started.", u.Username),
		},
		SentAt: at,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWelcomeEmail, b), nil
}

func NewDepositSettledTask(u *ledger.User, tx *ledger.Transaction, at time.Time) (*asynq.Task, error) {
	payload := DepositSettledPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Reference: tx.Reference,
		Amount:    tx.Amount.String(),
		Method:    tx.Method,
		Envelope: EmailEnvelope{
			To:      u.Email,
			Subject: "Your deposit has been approved",
			Body:    fmt.Sprintf("Deposit %s of $%s via %s has been credited to your balance.", tx.Reference, tx.Amount.String(), tx.Method),
		},
		SentAt: at,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDepositSettled, b), nil
}

func (n *Notifier) Welcome(ctx context.Context, u *ledger.User) error {
	task, err := NewWelcomeTask(u, n.now())
	if err != nil {
		return err
	}
	return n.enqueue(ctx, task)
}

func (n *Notifier) DepositSettled(ctx context.Context, u *ledger.User, tx *ledger.Transaction) error {
	task, err := NewDepositSettledTask(u, tx, n.now())
	if err != nil {
		return err
	}
	return n.enqueue(ctx, task)
}

func (n *Notifier) enqueue(ctx context.Context, task *asynq.Task) error {
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue(queueEmails), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

var _ ledger.Notifier = (*Notifier)(nil)
