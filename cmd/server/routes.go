package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/sudo-init-do/ledgerhub/internal/admin"
	"github.com/sudo-init-do/ledgerhub/internal/auth"
	"github.com/sudo-init-do/ledgerhub/internal/config"
	"github.com/sudo-init-do/ledgerhub/internal/httpx"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
	"github.com/sudo-init-do/ledgerhub/internal/messaging"
	mware "github.com/sudo-init-do/ledgerhub/internal/middleware"
	"github.com/sudo-init-do/ledgerhub/internal/user"
	"github.com/sudo-init-do/ledgerhub/internal/utils"
	"github.com/sudo-init-do/ledgerhub/internal/wallet"
)

func newRouter(cfg *config.Config, svc *ledger.Service, tokens *utils.JWT, hub *messaging.Hub, log logging.Logger) *echo.Echo {
	e := httpx.New(log)

	e.GET("/health", httpx.Health)
	e.GET("/ready", httpx.Ready(svc))

	authH := auth.NewHandler(svc, log)
	userH := user.NewHandler(svc, log)
	walletH := wallet.NewHandler(svc, log)
	adminH := admin.NewHandler(svc, log)
	msgH := messaging.NewHandler(svc, hub, log)

	api := e.Group("/api")

	// per-IP rate limiting on signup/login; a non-positive limit disables it
	var limiter []echo.MiddlewareFunc
	if cfg.AuthRateLimit > 0 {
		limiter = append(limiter, middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.AuthRateLimit))))
	}
	api.POST("/register", authH.Register, limiter...)
	api.POST("/login", authH.Login, limiter...)
	api.GET("/me", authH.Me, mware.JWTMiddleware(tokens))

	api.GET("/user/:id", userH.GetUser)
	api.GET("/transactions/:userId", walletH.ListTransactions)
	api.POST("/deposit", walletH.Deposit)

	api.GET("/messages", msgH.ListMessages)
	api.GET("/messages/ws", msgH.FeedWS)
	api.POST("/send-message", msgH.SendMessage)

	// Admin routes
	guard := mware.AdminOnly(tokens, cfg.RequireAdminToken)
	api.POST("/approve-deposit", walletH.ApproveDeposit, guard...)
	api.POST("/reject-deposit", walletH.RejectDeposit, guard...)
	api.POST("/freeze-account", adminH.FreezeAccount, guard...)
	api.POST("/unfreeze-account", adminH.UnfreezeAccount, guard...)

	adm := api.Group("/admin", guard...)
	adm.GET("/deposits/pending", walletH.ListPending)
	adm.GET("/transactions", walletH.ListAll)
	adm.GET("/users", adminH.ListUsers)
	adm.GET("/stats", adminH.Stats)

	return e
}
