package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/alerts"
	"github.com/sudo-init-do/ledgerhub/internal/auth"
	"github.com/sudo-init-do/ledgerhub/internal/config"
	"github.com/sudo-init-do/ledgerhub/internal/db"
	"github.com/sudo-init-do/ledgerhub/internal/events"
	"github.com/sudo-init-do/ledgerhub/internal/events/kafka"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/memory"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/postgres"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
	"github.com/sudo-init-do/ledgerhub/internal/messaging"
	"github.com/sudo-init-do/ledgerhub/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log.Slog())
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := p.Close(); err != nil {
				log.Warn(context.Background(), "kafka publisher close", "error", err)
			}
		}()
		publisher = p
		log.Info(ctx, "kafka events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var notifier ledger.Notifier
	if cfg.RedisAddr != "" {
		redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		client := asynq.NewClient(redis)
		defer client.Close()
		notifier = alerts.NewNotifier(client)

		alertLog := log.With("component", "alerts")
		sender, err := alerts.NewSender(cfg.Mail, alertLog)
		if err != nil {
			return fmt.Errorf("configure mail: %w", err)
		}
		proc := alerts.NewProcessor(redis, sender, alertLog)
		if err := proc.Start(); err != nil {
			return err
		}
		defer proc.Shutdown()
		log.Info(ctx, "alerts enabled", "redis", cfg.RedisAddr, "mail", fmt.Sprintf("%T", sender))
	}

	tokens := utils.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	svc := ledger.NewService(ledger.Options{
		Store:      store,
		Tokens:     tokens,
		Logger:     log.With("component", "ledger"),
		Methods:    ledger.DefaultMethods().WithAddresses(cfg.Addresses),
		Publisher:  publisher,
		Notifier:   notifier,
		BcryptCost: cfg.BcryptCost,
	})

	for _, m := range svc.Methods().All() {
		log.Debug(ctx, "payment method", "code", m.Code, "address", m.Address)
	}

	if err := auth.BootstrapAdmin(ctx, svc, log, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	hub := messaging.NewHub(log)
	e := newRouter(cfg, svc, tokens, hub, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.Addr, "admin_token_required", cfg.RequireAdminToken)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log logging.Logger) (ledger.Store, func(), error) {
	if cfg.DatabaseDSN == "" {
		log.Info(ctx, "using in-memory store")
		return memory.NewStore(), func() {}, nil
	}
	pool, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	log.Info(ctx, "using postgres store")
	return postgres.NewStore(pool), pool.Close, nil
}
