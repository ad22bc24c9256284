package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tipslap/tipslap/internal/auth"
	"github.com/tipslap/tipslap/internal/config"
	"github.com/tipslap/tipslap/internal/identity"
	"github.com/tipslap/tipslap/internal/metrics"
	"github.com/tipslap/tipslap/internal/middleware"
	"github.com/tipslap/tipslap/internal/otp"
	"github.com/tipslap/tipslap/internal/wallet"
)

const idempotencyTTL = 24 * time.Hour

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// CodeSender delivers codes; nil logs them.
	CodeSender otp.Sender
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !config.IsDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.CodeSender == nil {
		d.CodeSender = otp.LoggerSender{Logger: d.Logger}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	var codeStore otp.Store
	if d.Cache != nil {
		codeStore = otp.NewRedisStore(d.Cache)
	} else {
		codeStore = otp.NewMemoryStore()
	}
	codes := otp.NewService(codeStore, d.CodeSender, otp.Options{
		TTL:      d.Cfg.OTPTTL,
		MockCode: d.Cfg.OTPMockCode,
		Logger:   d.Logger,
	})

	var identityRepo identity.Repository
	if d.DB != nil {
		pg := identity.NewPostgresRepository(d.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure users schema: %w", err)
		}
		identityRepo = pg
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo, wallet.DefaultOpeningBalance)
	tokens := auth.NewTokenService(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL)

	authHandler := auth.NewHandler(codes, identitySvc, tokens, d.Metrics, d.Logger)
	identityHandler := identity.NewHandler(identitySvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, authHandler, middleware.CodeRateLimit(d.Cache, d.Cfg.CodeRequestsPerMinute, d.Logger))

	users := api.Group("/users", middleware.Bearer(tokens))
	RegisterUserRoutes(users, identityHandler, middleware.Idempotency(d.Cache, idempotencyTTL, d.Logger))
	return nil
}

// ErrorHandler renders every error as {"message": ...}. Unexpected errors
// are hidden behind a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
