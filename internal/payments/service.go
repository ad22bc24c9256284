package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/wallet"
)

// TipPresets are the quick-pick tip amounts in cents.
var TipPresets = []int64{100, 200, 500, 1_000, 2_000}

// ErrInvalidTipAmount indicates a missing or non-positive tip.
var ErrInvalidTipAmount = errors.New("tip amount must be positive")

const (
	msgInvalidTipAmount  = "Please enter a valid tip amount"
	msgInsufficientFunds = "Insufficient balance"
)

// Service debits the wallet for tips and records them in history.
type Service struct {
	wallet   *wallet.Wallet
	history  *history.Book
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a payment service.
func NewService(w *wallet.Wallet, book *history.Book, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{wallet: w, history: book, notifier: notifier, logger: logger}
}

// Recipient is the worker receiving a tip.
type Recipient struct {
	Name     string
	Username string
	Avatar   string
}

// TipInput captures a tip request.
type TipInput struct {
	To     Recipient
	Amount int64
}

// TipResult describes a completed tip.
type TipResult struct {
	TransactionID string
	Balance       int64
	CompletedAt   time.Time
}

// Tip sends amount cents to the recipient.
func (s *Service) Tip(ctx context.Context, input TipInput) (TipResult, error) {
	if input.Amount <= 0 {
		s.notify(ctx, notification.Error(msgInvalidTipAmount))
		return TipResult{}, ErrInvalidTipAmount
	}

	balance, err := s.wallet.Spend(input.Amount)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			s.notify(ctx, notification.Error(msgInsufficientFunds))
			return TipResult{}, err
		}
		s.notify(ctx, notification.Error(msgInvalidTipAmount))
		return TipResult{}, err
	}

	tx := s.history.Add(history.Entry{
		Name:     input.To.Name,
		Username: input.To.Username,
		Amount:   -input.Amount,
		Avatar:   input.To.Avatar,
		Kind:     history.KindTip,
	})

	s.logger.Info("tip sent",
		slog.String("transaction_id", tx.ID),
		slog.String("to", input.To.Username),
		slog.Int64("amount", input.Amount),
		slog.Int64("balance", balance),
	)
	s.notify(ctx, notification.Success("%s tip sent to %s!", wallet.FormatUSD(input.Amount), recipientName(input.To)))

	return TipResult{TransactionID: tx.ID, Balance: balance, CompletedAt: tx.Date}, nil
}

func recipientName(r Recipient) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Username
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.Any("error", err))
	}
}
