// Package console is the interactive terminal front-end. Each pass of the
// loop asks the routing guard which region to show, so a login, profile
// completion or logout takes effect on the very next prompt.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tipslap/tipslap/internal/directory"
	"github.com/tipslap/tipslap/internal/funding"
	"github.com/tipslap/tipslap/internal/guard"
	"github.com/tipslap/tipslap/internal/history"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/payments"
	"github.com/tipslap/tipslap/internal/profile"
	"github.com/tipslap/tipslap/internal/session"
	"github.com/tipslap/tipslap/internal/verify"
	"github.com/tipslap/tipslap/internal/wallet"
)

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// Deps are the collaborators the console drives.
type Deps struct {
	Store     session.Store
	Flow      *verify.Flow
	Profiles  *profile.Service
	Payments  *payments.Service
	Funding   *funding.Service
	Directory *directory.Service
	Wallet    *wallet.Wallet
	History   *history.Book
	Notifier  notification.Notifier
	Logger    *slog.Logger
}

// App reads commands from in and writes screens to out.
type App struct {
	deps Deps
	in   *bufio.Scanner
	out  io.Writer
}

// New builds an App.
func New(deps Deps, in io.Reader, out io.Writer) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &App{deps: deps, in: bufio.NewScanner(in), out: out}
}

// Run loops until the input ends, the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	last := guard.Route(-1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		route := guard.Decide(a.deps.Store)
		if route != last {
			a.deps.Logger.Debug("route changed", slog.String("route", route.String()))
			last = route
		}

		var err error
		switch route {
		case guard.RouteAuth:
			err = a.authScreen(ctx)
		case guard.RouteCompleteProfile:
			err = a.completeProfileScreen(ctx)
		default:
			err = a.mainScreen(ctx)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, errQuit):
			fmt.Fprintln(a.out, "Bye!")
			return nil
		default:
			return err
		}
	}
}

func (a *App) ask(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) notify(ctx context.Context, msg notification.Message) {
	if a.deps.Notifier == nil {
		return
	}
	if err := a.deps.Notifier.Send(ctx, msg); err != nil {
		a.deps.Logger.Warn("notification failed", slog.Any("error", err))
	}
}

func (a *App) logout() {
	a.deps.Store.Clear()
	a.deps.Flow.Reset()
	a.printf("Signed out.\n")
}
