// Package postgres is the pgx-backed ledger.Store. Every mutating call runs
// inside one SQL transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// validID reports whether id can name a row. Malformed ids never match.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const userColumns = `id, email, username, password, balance, is_active, verified_email, is_admin, created_at`

func scanUser(row pgx.Row) (*ledger.User, error) {
	u := &ledger.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Balance,
		&u.IsActive, &u.VerifiedEmail, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *ledger.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, username, password, balance, is_active, verified_email, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Balance, u.IsActive, u.VerifiedEmail, u.IsAdmin, u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return ledger.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*ledger.User, error) {
	if !validID(id) {
		return nil, ledger.ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*ledger.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	if !validID(id) {
		return ledger.ErrNotFound
	}
	ct, err := s.pool.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]ledger.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction, credit bool) error {
	if !validID(tx.UserID) {
		return ledger.ErrNotFound
	}
	return pgx.BeginFunc(ctx, s.pool, func(dbTx pgx.Tx) error {
		_, err := dbTx.Exec(ctx, `
			INSERT INTO transactions (id, user_id, type, method, amount, status, tx_id, created_at, settled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			tx.ID, tx.UserID, tx.Type, tx.Method, tx.Amount, string(tx.Status), tx.Reference, tx.CreatedAt, tx.SettledAt,
		)
		if err != nil {
			return translateInsertError(err)
		}
		if !credit {
			return nil
		}
		_, err = dbTx.Exec(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, tx.Amount, tx.UserID)
		if err != nil {
			return translateInsertError(err)
		}
		return nil
	})
}

func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if pgErr.ConstraintName == "transactions_tx_id_key" {
				return ledger.ErrDuplicateReference
			}
		case codeForeignKeyViolation:
			return ledger.ErrNotFound
		case codeCheckViolation, codeNumericOutOfRange:
			return fmt.Errorf("%w: %s", ledger.ErrValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

const txColumns = `id, user_id, type, method, amount, status, tx_id, created_at, settled_at`

func scanTransaction(row pgx.Row) (*ledger.Transaction, error) {
	tx := &ledger.Transaction{}
	var status string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Method, &tx.Amount, &status, &tx.Reference, &tx.CreatedAt, &tx.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	tx.Status = ledger.Status(status)
	return tx, nil
}

func (s *Store) SettleTransaction(ctx context.Context, ref string, at time.Time) (*ledger.Settlement, error) {
	var out *ledger.Settlement
	err := pgx.BeginFunc(ctx, s.pool, func(dbTx pgx.Tx) error {
		tx, err := scanTransaction(dbTx.QueryRow(ctx,
			`SELECT `+txColumns+` FROM transactions WHERE tx_id = $1 FOR UPDATE`, ref))
		if err != nil {
			return err
		}

		if tx.Status == ledger.StatusSuccessful {
			var balance decimal.Decimal
			if err := dbTx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, tx.UserID).Scan(&balance); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			out = &ledger.Settlement{Transaction: *tx, Balance: balance}
			return nil
		}

		if _, err := dbTx.Exec(ctx,
			`UPDATE transactions SET status = 'successful', settled_at = $1 WHERE id = $2`, at, tx.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		var balance decimal.Decimal
		if err := dbTx.QueryRow(ctx,
			`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`, tx.Amount, tx.UserID,
		).Scan(&balance); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		tx.Status = ledger.StatusSuccessful
		settled := at
		tx.SettledAt = &settled
		out = &ledger.Settlement{Transaction: *tx, Balance: balance, Credited: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) RejectTransaction(ctx context.Context, ref string, at time.Time) (*ledger.Transaction, error) {
	var out *ledger.Transaction
	err := pgx.BeginFunc(ctx, s.pool, func(dbTx pgx.Tx) error {
		tx, err := scanTransaction(dbTx.QueryRow(ctx,
			`SELECT `+txColumns+` FROM transactions WHERE tx_id = $1 FOR UPDATE`, ref))
		if err != nil {
			return err
		}
		if tx.Status == ledger.StatusSuccessful {
			return ledger.ErrAlreadySettled
		}
		if _, err := dbTx.Exec(ctx,
			`UPDATE transactions SET status = 'failed', settled_at = $1 WHERE id = $2`, at, tx.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		tx.Status = ledger.StatusFailed
		settled := at
		tx.SettledAt = &settled
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) queryTransactions(ctx context.Context, where string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions `+where+` ORDER BY created_at DESC, seq DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	txs := make([]ledger.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]ledger.Transaction, error) {
	if !validID(userID) {
		return []ledger.Transaction{}, nil
	}
	return s.queryTransactions(ctx, `WHERE user_id = $1`, userID)
}

func (s *Store) ListTransactionsByStatus(ctx context.Context, status ledger.Status) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx, `WHERE status = $1`, string(status))
}

func (s *Store) ListAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx, ``)
}

func (s *Store) CreateMessage(ctx context.Context, m *ledger.Message) error {
	if !validID(m.UserID) {
		return ledger.ErrNotFound
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, user_id, message, created_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.UserID, m.Text, m.CreatedAt,
	)
	if err != nil {
		return translateInsertError(err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context) ([]ledger.FeedMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.user_id, m.message, m.created_at, u.username
		FROM messages m JOIN users u ON m.user_id = u.id
		ORDER BY m.created_at DESC, m.seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	feed := make([]ledger.FeedMessage, 0)
	for rows.Next() {
		var fm ledger.FeedMessage
		if err := rows.Scan(&fm.ID, &fm.UserID, &fm.Text, &fm.CreatedAt, &fm.Username); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		feed = append(feed, fm)
	}
	return feed, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*ledger.Stats, error) {
	st := &ledger.Stats{Transactions: make(map[ledger.Status]int)}
	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM messages),
		       (SELECT COALESCE(SUM(balance), 0) FROM users)`,
	).Scan(&st.Users, &st.Messages, &st.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		st.Transactions[ledger.Status(status)] = n
	}
	return st, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ ledger.Store = (*Store)(nil)
