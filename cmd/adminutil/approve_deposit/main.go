package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sudo-init-do/ledgerhub/internal/config"
	"github.com/sudo-init-do/ledgerhub/internal/db"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/postgres"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

func main() {
	txID := flag.String("tx", "", "TX ID of the deposit to approve")
	reject := flag.Bool("reject", false, "reject the deposit instead of approving it")
	flag.Parse()

	if *txID == "" {
		log.Fatalf("usage: go run ./cmd/adminutil/approve_deposit -tx <tx_id> [-reject]")
	}

	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseDSN == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer pool.Close()

	svc := ledger.NewService(ledger.Options{
		Store:  postgres.NewStore(pool),
		Logger: logging.New(os.Stderr, cfg.LogLevel),
	})

	if *reject {
		tx, err := svc.RejectDeposit(ctx, *txID)
		if err != nil {
			log.Fatalf("reject %s: %v", *txID, describe(err))
		}
		fmt.Printf("Deposit %s rejected (user %s).\n", tx.Reference, tx.UserID)
		return
	}

	approval, err := svc.ApproveDeposit(ctx, *txID)
	if err != nil {
		log.Fatalf("approve %s: %v", *txID, describe(err))
	}
	if approval.AlreadySettled {
		fmt.Printf("Deposit %s was already approved; balance %s.\n", *txID, approval.Balance)
		return
	}
	fmt.Printf("Deposit %s approved; user %s balance %s.\n", *txID, approval.Transaction.UserID, approval.Balance)
}

func describe(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return errors.New("no deposit with that tx id")
	case errors.Is(err, ledger.ErrAlreadySettled):
		return errors.New("deposit already approved")
	}
	return err
}
