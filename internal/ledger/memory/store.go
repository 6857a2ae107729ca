// Package memory is the in-process ledger.Store. State lives only as long
// as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

// Store is a thread-safe in-memory implementation of ledger.Store. A single
// RWMutex makes every mutating call atomic.
type Store struct {
	mu sync.RWMutex

	users      map[string]*ledger.User
	emailIndex map[string]string // email -> user id

	transactions []*ledger.Transaction // insertion order
	refIndex     map[string]*ledger.Transaction

	messages []*ledger.Message // insertion order
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*ledger.User),
		emailIndex: make(map[string]string),
		refIndex:   make(map[string]*ledger.Transaction),
	}
}

func (s *Store) CreateUser(_ context.Context, u *ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[u.Email]; exists {
		return ledger.ErrDuplicateEmail
	}
	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("user id %s already taken", u.ID)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.emailIndex[u.Email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ledger.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *ledger.Transaction, credit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.users[tx.UserID]
	if !ok {
		return ledger.ErrNotFound
	}
	if _, exists := s.refIndex[tx.Reference]; exists {
		return ledger.ErrDuplicateReference
	}
	cp := *tx
	s.transactions = append(s.transactions, &cp)
	s.refIndex[cp.Reference] = &cp
	if credit {
		owner.Balance = owner.Balance.Add(tx.Amount)
	}
	return nil
}

func (s *Store) SettleTransaction(_ context.Context, ref string, at time.Time) (*ledger.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.refIndex[ref]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	owner, ok := s.users[tx.UserID]
	if !ok {
		return nil, fmt.Errorf("owner of %s: %w", ref, ledger.ErrNotFound)
	}
	if tx.Status == ledger.StatusSuccessful {
		return &ledger.Settlement{Transaction: *tx, Balance: owner.Balance}, nil
	}

	tx.Status = ledger.StatusSuccessful
	settled := at
	tx.SettledAt = &settled
	owner.Balance = owner.Balance.Add(tx.Amount)
	return &ledger.Settlement{Transaction: *tx, Balance: owner.Balance, Credited: true}, nil
}

func (s *Store) RejectTransaction(_ context.Context, ref string, at time.Time) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.refIndex[ref]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	if tx.Status == ledger.StatusSuccessful {
		return nil, ledger.ErrAlreadySettled
	}
	tx.Status = ledger.StatusFailed
	settled := at
	tx.SettledAt = &settled
	cp := *tx
	return &cp, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]ledger.Transaction, error) {
	return s.filterTransactions(func(tx *ledger.Transaction) bool { return tx.UserID == userID }), nil
}

func (s *Store) ListTransactionsByStatus(_ context.Context, status ledger.Status) ([]ledger.Transaction, error) {
	return s.filterTransactions(func(tx *ledger.Transaction) bool { return tx.Status == status }), nil
}

func (s *Store) ListAllTransactions(_ context.Context) ([]ledger.Transaction, error) {
	return s.filterTransactions(func(*ledger.Transaction) bool { return true }), nil
}

// filterTransactions returns matching transactions newest first; equal
// timestamps keep reverse insertion order.
func (s *Store) filterTransactions(keep func(*ledger.Transaction) bool) []ledger.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if tx := s.transactions[i]; keep(tx) {
			out = append(out, *tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) CreateMessage(_ context.Context, m *ledger.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[m.UserID]; !ok {
		return ledger.ErrNotFound
	}
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *Store) ListMessages(_ context.Context) ([]ledger.FeedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.FeedMessage, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		author, ok := s.users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, ledger.FeedMessage{Message: *m, Username: author.Username})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Stats(_ context.Context) (*ledger.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &ledger.Stats{
		Users:        len(s.users),
		Messages:     len(s.messages),
		Transactions: make(map[ledger.Status]int),
		TotalBalance: decimal.Zero,
	}
	for _, tx := range s.transactions {
		st.Transactions[tx.Status]++
	}
	for _, u := range s.users {
		st.TotalBalance = st.TotalBalance.Add(u.Balance)
	}
	return st, nil
}

func (s *Store) Ping(context.Context) error { return nil }

var _ ledger.Store = (*Store)(nil)
