package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

// Processor runs the asynq worker that delivers queued notifications.
type Processor struct {
	server *asynq.Server
	sender Sender
	log    logging.Logger
}

func NewProcessor(redis asynq.RedisConnOpt, sender Sender, log logging.Logger) *Processor {
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{queueEmails: 10},
	})
	return &Processor{server: server, sender: sender, log: log}
}

// Mux routes task types to their handlers.
func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, p.handleWelcomeEmail)
	mux.HandleFunc(TaskDepositSettled, p.handleDepositSettled)
	return mux
}

// Start begins processing in background goroutines.
func (p *Processor) Start() error {
	if err := p.server.Start(p.Mux()); err != nil {
		return fmt.Errorf("start alerts processor: %w", err)
	}
	return nil
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

func (p *Processor) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := p.sender.Send(ctx, payload.Envelope); err != nil {
		p.log.Error(ctx, "welcome email send failed", "user_id", payload.UserID, "error", err)
		return err
	}
	p.log.Info(ctx, "welcome email sent", "user_id", payload.UserID, "to", payload.Email)
	return nil
}

func (p *Processor) handleDepositSettled(ctx context.Context, t *asynq.Task) error {
	var payload DepositSettledPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := p.sender.Send(ctx, payload.Envelope); err != nil {
		p.log.Error(ctx, "deposit email send failed", "tx_id", payload.Reference, "error", err)
		return err
	}
	p.log.Info(ctx, "deposit email sent", "tx_id", payload.Reference, "to", payload.Email)
	return nil
}
