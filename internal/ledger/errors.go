package ledger

import (
	"errors"
	"fmt"
)

// Callers match these with errors.Is; stores and the service wrap them.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateReference = errors.New("duplicate transaction reference")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrAlreadySettled     = errors.New("transaction already settled")
)

// ErrPasswordTooLong is an ErrValidation for passwords bcrypt cannot hash.
var ErrPasswordTooLong = fmt.Errorf("%w: password longer than %d bytes", ErrValidation, maxPasswordBytes)
