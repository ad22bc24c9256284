package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/config"
	"github.com/tipslap/tipslap/internal/infra"
	"github.com/tipslap/tipslap/internal/metrics"
	"github.com/tipslap/tipslap/internal/routes"
)

// Server wraps the Fiber application of the development backend.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New builds the HTTP server over the opened backends.
func New(cfg config.Config, backends infra.Backends, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          routes.ErrorHandler,
		DisableStartupMessage: !config.IsDev(cfg.AppEnv),
	})

	err := routes.Setup(app, routes.Deps{
		Cfg:     cfg,
		DB:      backends.DB,
		Cache:   backends.Cache,
		Logger:  logger,
		Metrics: metrics.New(),
	})
	if err != nil {
		return nil, err
	}
	return &Server{app: app, cfg: cfg}, nil
}

// App exposes the underlying Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
