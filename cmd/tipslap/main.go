package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tipslap/tipslap/internal/api"
	"github.com/tipslap/tipslap/internal/config"
	"github.com/tipslap/tipslap/internal/console"
	"github.com/tipslap/tipslap/internal/directory"
	"github.com/tipslap/tipslap/internal/funding"
	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/logging"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/payments"
	"github.com/tipslap/tipslap/internal/profile"
	"github.com/tipslap/tipslap/internal/session"
	"github.com/tipslap/tipslap/internal/verify"
	"github.com/tipslap/tipslap/internal/wallet"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remote := api.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
	store := session.NewMemoryStore()
	notifier := notification.Fanout{
		notification.NewWriterNotifier(os.Stdout),
		notification.NewLoggerNotifier(logger),
	}

	purse := wallet.New(cfg.OpeningBalanceCents)
	book := history.NewBook()
	if cfg.Demo {
		book.SeedDemo()
	}

	fundingSvc, err := funding.NewService(purse, book, funding.DemoAcquirer{}, notifier, logger)
	if err != nil {
		logger.Error("build funding", "error", err)
		os.Exit(1)
	}

	app := console.New(console.Deps{
		Store:     store,
		Flow:      verify.New(remote, store, notifier, logger),
		Profiles:  profile.NewService(remote, store, notifier, logger),
		Payments:  payments.NewService(purse, book, notifier, logger),
		Funding:   fundingSvc,
		Directory: directory.NewService(remote, store, notifier, logger),
		Wallet:    purse,
		History:   book,
		Notifier:  notifier,
		Logger:    logger,
	}, os.Stdin, os.Stdout)

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("console stopped", "error", err)
		os.Exit(1)
	}
}
