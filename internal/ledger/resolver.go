package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Resolver decides the initial status of a new deposit.
type Resolver interface {
	Resolve(ctx context.Context, method Method, amount decimal.Decimal) Status
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, method Method, amount decimal.Decimal) Status

func (f ResolverFunc) Resolve(ctx context.Context, method Method, amount decimal.Decimal) Status {
	return f(ctx, method, amount)
}

// AwaitConfirmation leaves every deposit pending until an administrator
// (or another confirmation source) approves it.
type AwaitConfirmation struct{}

func (AwaitConfirmation) Resolve(context.Context, Method, decimal.Decimal) Status {
	return StatusPending
}
