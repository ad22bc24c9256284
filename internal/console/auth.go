package console

import (
	"context"
	"errors"
	"strings"

	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/phone"
	"github.com/tipslap/tipslap/internal/verify"
)

func (a *App) authScreen(ctx context.Context) error {
	a.deps.Flow.Reset()
	a.printf("\nTipSlap\n  1) Log in\n  2) Sign up\n  q) Quit\n")
	choice, err := a.ask(">")
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "1", "login":
		return a.login(ctx)
	case "2", "signup":
		return a.signup(ctx)
	case "q", "quit":
		return errQuit
	default:
		return nil
	}
}

func (a *App) login(ctx context.Context) error {
	raw, err := a.ask("Phone number")
	if err != nil {
		return err
	}
	if err := a.deps.Flow.RequestCode(ctx, raw); err != nil {
		return nil
	}
	return a.codeScreen(ctx)
}

func (a *App) signup(ctx context.Context) error {
	name, err := a.ask("Full name")
	if err != nil {
		return err
	}
	alias, err := a.ask("Alias (@name)")
	if err != nil {
		return err
	}
	raw, err := a.ask("Phone number")
	if err != nil {
		return err
	}
	if err := a.deps.Flow.RequestSignupCode(ctx, raw, name, alias); err != nil {
		return nil
	}
	return a.codeScreen(ctx)
}

// codeScreen collects the code. A full six-digit line is pasted and submitted;
// a single digit fills the next slot and the last one submits automatically.
func (a *App) codeScreen(ctx context.Context) error {
	flow := a.deps.Flow
	for {
		entry, ok := flow.Dismiss().(verify.CodeEntryInProgress)
		if !ok {
			return nil
		}
		a.printf("\nEnter the code sent to %s\n  %s\n  (digit, full code, '-' to erase, 'r' to resend, 'b' to go back)\n",
			phone.FormatDisplay(entry.PhoneNumber), renderDigits(entry))

		input, err := a.ask("Code")
		if err != nil {
			return err
		}

		var st verify.State
		switch {
		case input == "b":
			flow.Reset()
			return nil
		case input == "r":
			_ = flow.Resend(ctx)
			continue
		case input == "-":
			_, err = flow.Backspace(lastFilled(entry))
		case len(input) == verify.CodeLength:
			if _, err = flow.Fill(input); err == nil {
				st, err = flow.Submit(ctx)
			} else {
				a.notify(ctx, notification.Error(err.Error()))
			}
		case len(input) == 1:
			st, err = flow.EnterDigit(ctx, nextEmpty(entry), input)
		default:
			a.notify(ctx, notification.Error("Please enter the complete 6-digit code"))
			continue
		}

		var vErr *verify.ValidationError
		if err != nil && !errors.As(err, &vErr) && !isFlowFailure(st) {
			a.notify(ctx, notification.Error(err.Error()))
		}
		if verify.Terminal(st) {
			return nil
		}
	}
}

func isFlowFailure(st verify.State) bool {
	_, ok := st.(verify.Failed)
	return ok
}

func renderDigits(entry verify.CodeEntryInProgress) string {
	cells := make([]string, verify.CodeLength)
	for i, d := range entry.Digits {
		if d == "" {
			d = "_"
		}
		cells[i] = d
	}
	return strings.Join(cells, " ")
}

func nextEmpty(entry verify.CodeEntryInProgress) int {
	for i, d := range entry.Digits {
		if d == "" {
			return i
		}
	}
	return verify.CodeLength - 1
}

func lastFilled(entry verify.CodeEntryInProgress) int {
	for i := verify.CodeLength - 1; i >= 0; i-- {
		if entry.Digits[i] != "" {
			return i
		}
	}
	return 0
}
