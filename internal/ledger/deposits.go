package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/events"
)

const maxReferenceAttempts = 5

// AmountScale and MaxAmount match the NUMERIC(24, 8) amount columns.
const AmountScale = 8

var MaxAmount = decimal.New(1, 24-AmountScale)

func checkAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	case !amount.Equal(amount.Truncate(AmountScale)):
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrValidation, AmountScale)
	case amount.GreaterThanOrEqual(MaxAmount):
		return fmt.Errorf("%w: amount must be below %s", ErrValidation, MaxAmount)
	}
	return nil
}

// DepositResult is what the depositor needs to settle the payment.
type DepositResult struct {
	Transaction Transaction
	Address     string
	Message     string
}

// Approval is the outcome of ApproveDeposit. AlreadySettled is set when
// the transaction was successful before the call and nothing was credited.
type Approval struct {
	Transaction    Transaction
	Balance        decimal.Decimal
	AlreadySettled bool
}

// Deposit records a deposit request. Validation runs before anything is
// written; the initial status comes from the configured Resolver and a
// successful status credits the balance together with the insert.
func (s *Service) Deposit(ctx context.Context, userID, method string, amount decimal.Decimal) (*DepositResult, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	m, ok := s.methods.Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	status := s.resolver.Resolve(ctx, m, amount)
	tx := &Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      TypeDeposit,
		Method:    m.Code,
		Amount:    amount,
		Status:    status,
		CreatedAt: s.timestamp(),
	}
	if status != StatusPending {
		at := tx.CreatedAt
		tx.SettledAt = &at
	}

	if err := s.insertWithReference(ctx, tx, status == StatusSuccessful); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "deposit created", "user_id", userID, "tx_id", tx.Reference, "method", m.Code, "status", status)
	s.publish(ctx, events.TopicDepositCreated, events.DepositCreated{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		UserID:        tx.UserID,
		Method:        tx.Method,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		OccurredAt:    tx.CreatedAt,
	})

	res := &DepositResult{Transaction: *tx, Address: m.Address}
	if m.Address != "" {
		res.Message = fmt.Sprintf("Send $%s to this address: %s\nTX ID: %s", amount.String(), m.Address, tx.Reference)
	} else {
		res.Message = fmt.Sprintf("Deposit of $%s via %s is being reviewed.", amount.String(), m.Code)
	}
	return res, nil
}

func (s *Service) insertWithReference(ctx context.Context, tx *Transaction, credit bool) error {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.newRef()
		if err != nil {
			return fmt.Errorf("generate reference: %w", err)
		}
		tx.Reference = ref
		err = s.store.CreateTransaction(ctx, tx, credit)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateReference) {
			return fmt.Errorf("create transaction: %w", err)
		}
	}
	return fmt.Errorf("create transaction: %w after %d attempts", ErrDuplicateReference, maxReferenceAttempts)
}

// ApproveDeposit marks the deposit successful and credits its owner once.
// Approving an already successful deposit changes nothing.
func (s *Service) ApproveDeposit(ctx context.Context, ref string) (*Approval, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: tx id is required", ErrValidation)
	}
	st, err := s.store.SettleTransaction(ctx, ref, s.timestamp())
	if err != nil {
		return nil, err
	}
	out := &Approval{Transaction: st.Transaction, Balance: st.Balance, AlreadySettled: !st.Credited}
	if !st.Credited {
		s.log.Info(ctx, "deposit already approved", "tx_id", ref)
		return out, nil
	}

	tx := st.Transaction
	s.log.Info(ctx, "deposit approved", "tx_id", ref, "user_id", tx.UserID, "amount", tx.Amount.String())
	s.publish(ctx, events.TopicDepositSettled, events.DepositSettled{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Balance:       st.Balance,
		OccurredAt:    s.timestamp(),
	})
	if s.notifier != nil {
		u, err := s.store.GetUser(ctx, tx.UserID)
		if err == nil {
			err = s.notifier.DepositSettled(ctx, u, &tx)
		}
		if err != nil {
			s.log.Warn(ctx, "deposit notification failed", "tx_id", ref, "error", err)
		}
	}
	return out, nil
}

// RejectDeposit marks a pending deposit failed.
func (s *Service) RejectDeposit(ctx context.Context, ref string) (*Transaction, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: tx id is required", ErrValidation)
	}
	tx, err := s.store.RejectTransaction(ctx, ref, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "deposit rejected", "tx_id", ref, "user_id", tx.UserID)
	s.publish(ctx, events.TopicDepositRejected, events.DepositSettled{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		OccurredAt:    s.timestamp(),
	})
	return tx, nil
}

// ListTransactions returns a user's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// ListPending returns deposits awaiting a decision, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Transaction, error) {
	return s.store.ListTransactionsByStatus(ctx, StatusPending)
}

func (s *Service) ListAllTransactions(ctx context.Context) ([]Transaction, error) {
	return s.store.ListAllTransactions(ctx)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}
