package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/wallet"
)

// Presets are the quick-pick top-up amounts in cents.
var Presets = []int64{500, 1_000, 2_000, 5_000, 10_000}

const (
	fundsName     = "Funds Added"
	fundsUsername = "@tipslap"
	currencyUSD   = "usd"
	msgFailed     = "Payment failed"

	msgInvalidAmount = "Please select or enter a valid amount"
	msgDeclined      = "Payment declined"
)

var (
	// ErrInvalidAmount indicates a missing or non-positive top-up.
	ErrInvalidAmount = errors.New("top-up amount must be positive")
	// ErrDeclined indicates the acquirer did not approve the top-up.
	ErrDeclined = errors.New("payment declined")
)

// Service coordinates top-ups through the acquirer connector.
type Service struct {
	wallet   *wallet.Wallet
	history  *history.Book
	acquirer Acquirer
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService prepares a funding service. A nil acquirer falls back to DemoAcquirer.
func NewService(w *wallet.Wallet, book *history.Book, acquirer Acquirer, notifier notification.Notifier, logger *slog.Logger) (*Service, error) {
	if w == nil {
		return nil, fmt.Errorf("wallet is required")
	}
	if book == nil {
		return nil, fmt.Errorf("history is required")
	}
	if acquirer == nil {
		acquirer = DemoAcquirer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{wallet: w, history: book, acquirer: acquirer, notifier: notifier, logger: logger}, nil
}

// FundingResult represents the outcome of a top-up.
type FundingResult struct {
	TransactionID     string
	WalletBalance     int64
	AcquirerReference string
	CompletedAt       time.Time
}

// AddFunds authorizes amount cents and credits it to the wallet.
func (s *Service) AddFunds(ctx context.Context, amount int64) (FundingResult, error) {
	if amount <= 0 {
		s.notify(ctx, notification.Error(msgInvalidAmount))
		return FundingResult{}, ErrInvalidAmount
	}

	decision, err := s.acquirer.Authorize(ctx, Authorization{
		Amount:      amount,
		Currency:    currencyUSD,
		Description: "TipSlap balance top-up",
	})
	if err != nil {
		s.logger.Warn("authorization failed", slog.Int64("amount", amount), slog.Any("error", err))
		s.notify(ctx, notification.Error(msgFailed))
		return FundingResult{}, fmt.Errorf("authorize: %w", err)
	}
	if decision.Status != StatusApproved {
		s.logger.Warn("authorization declined", slog.String("reference", decision.Reference), slog.String("status", decision.Status))
		s.notify(ctx, notification.Error(msgDeclined))
		return FundingResult{AcquirerReference: decision.Reference}, ErrDeclined
	}

	balance, err := s.wallet.Add(amount)
	if err != nil {
		s.logger.Error("credit failed", slog.String("reference", decision.Reference), slog.Int64("amount", amount), slog.Any("error", err))
		s.notify(ctx, notification.Error(msgFailed))
		return FundingResult{AcquirerReference: decision.Reference}, fmt.Errorf("credit wallet: %w", err)
	}
	tx := s.history.Add(history.Entry{
		Name:     fundsName,
		Username: fundsUsername,
		Amount:   amount,
		Kind:     history.KindFund,
	})

	s.logger.Info("funds added",
		slog.String("transaction_id", tx.ID),
		slog.String("reference", decision.Reference),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance),
	)
	s.notify(ctx, notification.Success("%s added to your balance!", wallet.FormatUSD(amount)))

	return FundingResult{
		TransactionID:     tx.ID,
		WalletBalance:     balance,
		AcquirerReference: decision.Reference,
		CompletedAt:       tx.Date,
	}, nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.Any("error", err))
	}
}
