package auth

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

// AdminSeedBalance is the starting balance of the provisioned admin.
var AdminSeedBalance = decimal.NewFromInt(1000000)

// BootstrapAdmin provisions the administrator account at startup. It is a
// no-op when no password is configured or the email is already taken.
func BootstrapAdmin(ctx context.Context, svc *ledger.Service, log logging.Logger, email, password string) error {
	if password == "" {
		log.Info(ctx, "admin bootstrap disabled", "reason", "ADMIN_PASSWORD not set")
		return nil
	}
	created, err := svc.SeedAdmin(ctx, email, password, AdminSeedBalance)
	if err != nil {
		return err
	}
	if created {
		log.Info(ctx, "admin account provisioned", "email", email)
	} else {
		log.Debug(ctx, "admin account already present", "email", email)
	}
	return nil
}
