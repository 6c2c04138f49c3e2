package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vale-pay/vale_pay/internal/account"
	"github.com/vale-pay/vale_pay/internal/authorizer"
	"github.com/vale-pay/vale_pay/internal/card"
	"github.com/vale-pay/vale_pay/internal/category"
	"github.com/vale-pay/vale_pay/internal/config"
	"github.com/vale-pay/vale_pay/internal/funds"
	"github.com/vale-pay/vale_pay/internal/merchant"
	"github.com/vale-pay/vale_pay/internal/middleware"
	"github.com/vale-pay/vale_pay/internal/notification"
	"github.com/vale-pay/vale_pay/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Collaborators: Postgres when available, in-memory otherwise.
	var (
		accounts  account.Store
		cards     card.Directory
		merchants merchant.Directory
		txLog     transaction.Log
		committer authorizer.Committer
	)
	if d.DB != nil {
		accounts = account.NewPostgresStore(d.DB)
		cards = card.NewPostgresDirectory(d.DB)
		merchants = merchant.NewPostgresDirectory(d.DB)
		txLog = transaction.NewPostgresLog(d.DB)
		committer = authorizer.NewPostgresCommitter(d.DB)
	} else {
		memAccounts := account.NewMemoryStore()
		memLog := transaction.NewMemoryLog()
		accounts = memAccounts
		cards = card.NewMemoryDirectory()
		merchants = merchant.NewMemoryDirectory()
		txLog = memLog
		committer = authorizer.NewStoreCommitter(memAccounts, memLog)
	}

	guard := account.NewGuard()
	notifier := notification.NewLoggerNotifier(d.Logger)
	resolver := category.NewResolver(merchants)

	authSvc := authorizer.NewService(resolver, cards, accounts, committer, guard, notifier, d.Logger).
		WithLookupTimeout(d.Cfg.LookupTimeout)
	fundsSvc := funds.NewService(accounts, guard, notifier, d.Logger)

	authHandler := authorizer.NewHandler(authSvc)
	fundsHandler := funds.NewHandler(fundsSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthorizationRoutes(api, authHandler)
	RegisterAccountRoutes(api, fundsHandler)
	RegisterTransactionRoutes(api, txLog)

	return nil
}
