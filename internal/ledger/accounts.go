package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/ledgerhub/internal/events"
)

// Session is the result of a successful login.
type Session struct {
	Token string
	User  *User
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

func checkPassword(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive, unverified account with zero balance.
func (s *Service) Register(ctx context.Context, email, username, password string) (*User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", ErrValidation)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
		Balance:      decimal.Zero,
		CreatedAt:    s.timestamp(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	if s.notifier != nil {
		if err := s.notifier.Welcome(ctx, u); err != nil {
			s.log.Warn(ctx, "welcome notification failed", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

// Authenticate checks credentials and issues a session token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// burn the same bcrypt work as a real comparison
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: u}, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// Freeze disables the account's activity flag.
func (s *Service) Freeze(ctx context.Context, userID string) error {
	return s.setActive(ctx, userID, false)
}

// Unfreeze re-enables the account's activity flag.
func (s *Service) Unfreeze(ctx context.Context, userID string) error {
	return s.setActive(ctx, userID, true)
}

func (s *Service) setActive(ctx context.Context, userID string, active bool) error {
	if err := s.store.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.log.Info(ctx, "account status changed", "user_id", userID, "active", active)
	s.publish(ctx, events.TopicAccountStatus, events.AccountStatusChanged{
		UserID:     userID,
		Active:     active,
		OccurredAt: s.timestamp(),
	})
	return nil
}

// SeedAdmin provisions the administrator account if the email is free.
// It reports whether an account was created.
func (s *Service) SeedAdmin(ctx context.Context, email, password string, balance decimal.Decimal) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, fmt.Errorf("%w: admin email and password are required", ErrValidation)
	}
	if err := checkPassword(password); err != nil {
		return false, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:            uuid.New().String(),
		Email:         email,
		Username:      "Admin",
		PasswordHash:  string(hashed),
		Balance:       balance,
		IsActive:      true,
		VerifiedEmail: true,
		IsAdmin:       true,
		CreatedAt:     s.timestamp(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
