package ledger

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/ledgerhub/internal/events"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, admin bool) (string, error)
}

// Notifier delivers user-facing notifications. Failures are logged and
// never fail the ledger operation that triggered them.
type Notifier interface {
	Welcome(ctx context.Context, u *User) error
	DepositSettled(ctx context.Context, u *User, tx *Transaction) error
}

// Options wires a Service. Store, Tokens and Logger are required; the
// rest fall back to defaults.
type Options struct {
	Store      Store
	Tokens     TokenIssuer
	Logger     logging.Logger
	Resolver   Resolver
	Methods    *Methods
	Publisher  events.Publisher
	Notifier   Notifier
	BcryptCost int
	Now        func() time.Time
}

// Service implements the ledger operations on top of a Store.
type Service struct {
	store      Store
	tokens     TokenIssuer
	log        logging.Logger
	resolver   Resolver
	methods    *Methods
	publisher  events.Publisher
	notifier   Notifier
	bcryptCost int
	now        func() time.Time
	newRef     func() (string, error)

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		tokens:     opts.Tokens,
		log:        opts.Logger,
		resolver:   opts.Resolver,
		methods:    opts.Methods,
		publisher:  opts.Publisher,
		notifier:   opts.Notifier,
		bcryptCost: opts.BcryptCost,
		now:        opts.Now,
		newRef:     NewReference,
	}
	if s.resolver == nil {
		s.resolver = AwaitConfirmation{}
	}
	if s.methods == nil {
		s.methods = DefaultMethods()
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Methods exposes the payment method registry.
func (s *Service) Methods() *Methods {
	return s.methods
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.log.Warn(ctx, "event publish failed", "topic", topic, "error", err)
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}
