package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/tipslap/tipslap/internal/directory"
	"github.com/tipslap/tipslap/internal/funding"
	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/payments"
	"github.com/tipslap/tipslap/internal/session"
	"github.com/tipslap/tipslap/internal/wallet"
)

func (a *App) completeProfileScreen(ctx context.Context) error {
	a.printf("\nComplete your profile ('/logout' to sign out)\n")
	name, err := a.ask("Full name")
	if err != nil {
		return err
	}
	if name == "/logout" {
		a.logout()
		return nil
	}
	alias, err := a.ask("Alias (@name)")
	if err != nil {
		return err
	}
	_, _ = a.deps.Profiles.Complete(ctx, name, alias)
	return nil
}

func (a *App) mainScreen(ctx context.Context) error {
	s, _ := a.deps.Store.Get()
	a.printf("\n%s (%s)   Balance: %s\n", s.DisplayName, s.Alias, wallet.FormatUSD(a.deps.Wallet.Balance()))
	a.printf("  1) Tip a worker\n  2) Add funds\n  3) History\n  4) Edit profile\n  5) My tip code\n  6) Log out\n  q) Quit\n")
	choice, err := a.ask(">")
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "1":
		return a.tipScreen(ctx)
	case "2":
		return a.fundScreen(ctx)
	case "3":
		a.historyScreen()
	case "4":
		return a.editProfileScreen(ctx, s)
	case "5":
		a.printf("Your tip code: %s\n", directory.TipURL(s.Alias))
	case "6":
		a.logout()
	case "q", "quit":
		return errQuit
	}
	return nil
}

func (a *App) tipScreen(ctx context.Context) error {
	query, err := a.ask("Search name or alias, or paste a tipslap:// link")
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	var to payments.Recipient
	if strings.HasPrefix(query, "tipslap:") {
		alias, err := directory.ParseTipURL(query)
		if err != nil {
			a.notify(ctx, notification.Error("Invalid QR code"))
			return nil
		}
		to = payments.Recipient{Username: alias}
	} else {
		workers, err := a.deps.Directory.Search(ctx, query)
		if err != nil {
			return nil
		}
		if len(workers) == 0 {
			a.printf("No users found\n")
			return nil
		}
		for i, w := range workers {
			a.printf("  %d) %s %s\n", i+1, w.Name, w.Username)
		}
		pick, err := a.ask("Choose")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(pick)
		if convErr != nil || n < 1 || n > len(workers) {
			return nil
		}
		w := workers[n-1]
		to = payments.Recipient{Name: w.Name, Username: w.Username, Avatar: w.Avatar}
	}

	amount, err := a.askAmount(payments.TipPresets)
	if err != nil {
		return err
	}
	_, _ = a.deps.Payments.Tip(ctx, payments.TipInput{To: to, Amount: amount})
	return nil
}

func (a *App) fundScreen(ctx context.Context) error {
	amount, err := a.askAmount(funding.Presets)
	if err != nil {
		return err
	}
	_, _ = a.deps.Funding.AddFunds(ctx, amount)
	return nil
}

// askAmount returns 0 for unparseable input so the service reports it.
func (a *App) askAmount(presets []int64) (int64, error) {
	labels := make([]string, len(presets))
	for i, p := range presets {
		labels[i] = strings.TrimSuffix(wallet.FormatUSD(p), ".00")
	}
	raw, err := a.ask("Amount (" + strings.Join(labels, " ") + " or custom)")
	if err != nil {
		return 0, err
	}
	cents, parseErr := wallet.ParseUSD(raw)
	if parseErr != nil {
		return 0, nil
	}
	return cents, nil
}

func (a *App) historyScreen() {
	list := a.deps.History.List()
	if len(list) == 0 {
		a.printf("No transactions yet\n")
		return
	}
	for _, tx := range list {
		amount := wallet.FormatUSD(tx.Amount)
		if tx.Kind == history.KindFund {
			amount = "+" + amount
		}
		a.printf("  %-10s %-18s %-14s %s\n", tx.Date.Format(history.DateLayout), tx.Name, tx.Username, amount)
	}
}

func (a *App) editProfileScreen(ctx context.Context, current session.Session) error {
	name, err := a.ask("Full name [" + current.DisplayName + "]")
	if err != nil {
		return err
	}
	if name == "" {
		name = current.DisplayName
	}
	alias, err := a.ask("Alias [" + current.Alias + "]")
	if err != nil {
		return err
	}
	if alias == "" {
		alias = current.Alias
	}
	_, _ = a.deps.Profiles.Edit(ctx, name, alias)
	return nil
}
