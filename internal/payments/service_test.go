package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/logging"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/wallet"
)

type testNotifier struct {
	last notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

func TestTipSuccess(t *testing.T) {
	w := wallet.New(wallet.DefaultOpeningBalance)
	book := history.NewBook()
	notifier := &testNotifier{}
	svc := NewService(w, book, notifier, logging.Discard())

	res, err := svc.Tip(context.Background(), TipInput{
		To:     Recipient{Name: "Jane Doe", Username: "@jane"},
		Amount: 500,
	})
	if err != nil {
		t.Fatalf("tip failed: %v", err)
	}
	if res.Balance != 4_900 || w.Balance() != 4_900 {
		t.Fatalf("unexpected balance: %+v", res)
	}

	list := book.List()
	if len(list) != 1 || list[0].Amount != -500 || list[0].Kind != history.KindTip || list[0].Username != "@jane" {
		t.Fatalf("unexpected history %+v", list)
	}
	if notifier.last.Kind != notification.KindSuccess || notifier.last.Body != "$5.00 tip sent to Jane Doe!" {
		t.Fatalf("unexpected notification %+v", notifier.last)
	}
}

func TestTipInsufficientBalance(t *testing.T) {
	w := wallet.New(100)
	book := history.NewBook()
	notifier := &testNotifier{}
	svc := NewService(w, book, notifier, logging.Discard())

	_, err := svc.Tip(context.Background(), TipInput{To: Recipient{Username: "@jane"}, Amount: 2_000})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if w.Balance() != 100 || book.Len() != 0 {
		t.Fatal("failed tip must not change balance or history")
	}
	if notifier.last.Body != "Insufficient balance" {
		t.Fatalf("unexpected notification %+v", notifier.last)
	}
}

func TestTipRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(wallet.New(1_000), history.NewBook(), nil, logging.Discard())

	if _, err := svc.Tip(context.Background(), TipInput{Amount: 0}); !errors.Is(err, ErrInvalidTipAmount) {
		t.Fatalf("expected ErrInvalidTipAmount, got %v", err)
	}
}

func TestTipUsesUsernameWhenNameMissing(t *testing.T) {
	notifier := &testNotifier{}
	svc := NewService(wallet.New(1_000), history.NewBook(), notifier, logging.Discard())

	if _, err := svc.Tip(context.Background(), TipInput{To: Recipient{Username: "@dknoern"}, Amount: 100}); err != nil {
		t.Fatalf("tip failed: %v", err)
	}
	if notifier.last.Body != "$1.00 tip sent to @dknoern!" {
		t.Fatalf("unexpected notification %+v", notifier.last)
	}
}
