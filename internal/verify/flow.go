// Package verify drives the SMS one-time-code login: phone number entry,
// code request, code entry with auto-submit on the last digit, verification,
// and the dependent profile fetch that decides whether the new session has a
// complete profile.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tipslap/tipslap/internal/api"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/phone"
	"github.com/tipslap/tipslap/internal/profile"
	"github.com/tipslap/tipslap/internal/session"
)

var (
	// ErrBusy is returned for input received while a verification is in flight.
	ErrBusy = errors.New("verification in progress")
	// ErrFinished is returned for input received after the flow reached a terminal state.
	ErrFinished = errors.New("verification already completed")
	// ErrNoCodeRequested is returned when code input arrives before a code was requested.
	ErrNoCodeRequested = errors.New("request a code first")
)

// ValidationError is a locally detected input problem. No remote call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const (
	msgIncompleteCode = "Please enter the complete 6-digit code"
	msgDigitsOnly     = "The code contains digits only"
	msgSendFailed     = "Failed to send verification code. Please try again."
	msgResendFailed   = "Failed to resend code. Please try again."
	msgVerifyFailed   = "Invalid verification code. Please try again."
	msgResent         = "Verification code resent!"
	msgInvalidPhone   = "Please enter a valid 10-digit phone number"
)

// Remote is the subset of the API client the flow needs.
type Remote interface {
	RequestCode(ctx context.Context, e164 string) error
	VerifyCode(ctx context.Context, req api.VerifyCodeRequest) (api.VerifyCodeResponse, error)
	GetProfile(ctx context.Context, token string) (api.Profile, error)
	CreateUser(ctx context.Context, token string, in api.ProfileInput) (api.Profile, error)
}

// Flow is one run of the verification state machine.
type Flow struct {
	remote   Remote
	store    session.Store
	notifier notification.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	signup *api.ProfileInput
}

// New creates a flow in AwaitingPhoneNumber.
func New(remote Remote, store session.Store, notifier notification.Notifier, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{remote: remote, store: store, notifier: notifier, logger: logger, state: AwaitingPhoneNumber{}}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Dismiss leaves the Failed pseudostate for the state it resumes to.
func (f *Flow) Dismiss() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissLocked()
	return f.state
}

// Reset abandons the flow and returns to AwaitingPhoneNumber.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = AwaitingPhoneNumber{}
	f.signup = nil
}

// RequestCode validates a ten-digit US number, converts it to E.164 and asks
// the remote to send a code.
func (f *Flow) RequestCode(ctx context.Context, raw string) error {
	return f.requestCode(ctx, raw, nil)
}

// RequestSignupCode is RequestCode for a new account. The name and alias are
// held until verification and used to create the account when the remote
// reports a new user.
func (f *Flow) RequestSignupCode(ctx context.Context, raw, fullName, alias string) error {
	if _, err := phone.ValidateUS(raw); err != nil {
		return f.invalid(ctx, msgInvalidPhone)
	}
	in, err := profile.NewProfileInput(fullName, alias)
	if err != nil {
		return f.invalid(ctx, profile.Message(err))
	}
	return f.requestCode(ctx, raw, &in)
}

func (f *Flow) requestCode(ctx context.Context, raw string, signup *api.ProfileInput) error {
	digits, err := phone.ValidateUS(raw)
	if err != nil {
		return f.invalid(ctx, msgInvalidPhone)
	}
	e164 := phone.ToE164(digits)

	f.mu.Lock()
	f.dismissLocked()
	switch f.state.(type) {
	case Verifying, CodeRequested:
		f.mu.Unlock()
		return ErrBusy
	case ProfileIncomplete, SessionEstablished:
		f.mu.Unlock()
		return ErrFinished
	}
	f.state = CodeRequested{PhoneNumber: e164}
	f.signup = signup
	f.mu.Unlock()

	err = f.remote.RequestCode(ctx, e164)
	if err != nil {
		msg := api.UserMessage(err, msgSendFailed)
		f.logger.Warn("request code failed", slog.String("phone", phone.Mask(e164)), slog.Any("error", err))
		f.mu.Lock()
		f.state = Failed{Message: msg, Resume: AwaitingPhoneNumber{}}
		f.signup = nil
		f.mu.Unlock()
		f.notify(ctx, notification.Error(msg))
		return err
	}

	f.logger.Info("verification code requested", slog.String("phone", phone.Mask(e164)))
	f.mu.Lock()
	f.state = CodeEntryInProgress{PhoneNumber: e164}
	f.mu.Unlock()
	return nil
}

// Resend asks for a new code for the number already held. Entered digits are kept.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	f.dismissLocked()
	entry, err := f.entryLocked()
	f.mu.Unlock()
	if err != nil {
		return err
	}

	err = f.remote.RequestCode(ctx, entry.PhoneNumber)
	if err != nil {
		msg := api.UserMessage(err, msgResendFailed)
		f.logger.Warn("resend code failed", slog.String("phone", phone.Mask(entry.PhoneNumber)), slog.Any("error", err))
		f.mu.Lock()
		if current, ok := f.state.(CodeEntryInProgress); ok {
			f.state = Failed{Message: msg, Resume: current}
		}
		f.mu.Unlock()
		f.notify(ctx, notification.Error(msg))
		return err
	}
	f.notify(ctx, notification.Success(msgResent))
	return nil
}

// EnterDigit writes text into slot index. Only the last character of text is
// kept; empty text clears the slot. Filling the last slot while every other
// slot is filled submits the code.
func (f *Flow) EnterDigit(ctx context.Context, index int, text string) (State, error) {
	if index < 0 || index >= CodeLength {
		return f.State(), &ValidationError{Message: msgIncompleteCode}
	}
	if len(text) > 1 {
		text = text[len(text)-1:]
	}
	if text != "" && (text[0] < '0' || text[0] > '9') {
		return f.State(), f.invalid(ctx, msgDigitsOnly)
	}

	f.mu.Lock()
	f.dismissLocked()
	entry, err := f.entryLocked()
	if err != nil {
		f.mu.Unlock()
		return f.State(), err
	}
	entry.Digits[index] = text
	f.state = entry
	auto := text != "" && index == CodeLength-1 && entry.Filled()
	f.mu.Unlock()

	if auto {
		return f.Submit(ctx)
	}
	return entry, nil
}

// Backspace clears slot index.
func (f *Flow) Backspace(index int) (State, error) {
	if index < 0 || index >= CodeLength {
		return f.State(), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissLocked()
	entry, err := f.entryLocked()
	if err != nil {
		return f.state, err
	}
	entry.Digits[index] = ""
	f.state = entry
	return entry, nil
}

// Fill writes a whole code into the slots without submitting, as a paste would.
func (f *Flow) Fill(code string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissLocked()
	entry, err := f.entryLocked()
	if err != nil {
		return f.state, err
	}
	var digits [CodeLength]string
	for i := 0; i < CodeLength && i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return f.state, &ValidationError{Message: msgDigitsOnly}
		}
		digits[i] = code[i : i+1]
	}
	entry.Digits = digits
	f.state = entry
	return entry, nil
}

// Submit verifies the entered code. On acceptance it fetches (or, for a new
// signup, creates) the profile and only then stores the session. On rejection
// the session stays unset and the digits are cleared.
func (f *Flow) Submit(ctx context.Context) (State, error) {
	f.mu.Lock()
	f.dismissLocked()
	entry, err := f.entryLocked()
	if err != nil {
		f.mu.Unlock()
		return f.State(), err
	}
	if !entry.Filled() {
		f.mu.Unlock()
		return f.State(), f.invalid(ctx, msgIncompleteCode)
	}
	f.state = Verifying{PhoneNumber: entry.PhoneNumber}
	signup := f.signup
	f.mu.Unlock()

	sess, err := f.verify(ctx, entry, signup)
	if err != nil {
		msg := api.UserMessage(err, msgVerifyFailed)
		f.logger.Warn("verification failed", slog.String("phone", phone.Mask(entry.PhoneNumber)), slog.Any("error", err))
		failed := Failed{Message: msg, Resume: CodeEntryInProgress{PhoneNumber: entry.PhoneNumber}}
		f.mu.Lock()
		f.state = failed
		f.mu.Unlock()
		f.notify(ctx, notification.Error(msg))
		return failed, err
	}

	var next State = ProfileIncomplete{Session: sess}
	if sess.Complete() {
		next = SessionEstablished{Session: sess}
	}
	f.store.Set(sess)
	f.mu.Lock()
	f.state = next
	f.signup = nil
	f.mu.Unlock()

	f.logger.Info("session established",
		slog.String("user_id", sess.ID),
		slog.Bool("profile_complete", sess.Complete()),
	)
	return next, nil
}

// verify runs the chained remote calls and builds the session without
// touching the store.
func (f *Flow) verify(ctx context.Context, entry CodeEntryInProgress, signup *api.ProfileInput) (session.Session, error) {
	res, err := f.remote.VerifyCode(ctx, api.VerifyCodeRequest{MobileNumber: entry.PhoneNumber, Code: entry.Code()})
	if err != nil {
		return session.Session{}, err
	}

	var p api.Profile
	switch {
	case signup != nil && res.IsNewUser:
		p, err = f.remote.CreateUser(ctx, res.Token, *signup)
		if err != nil {
			return session.Session{}, err
		}
	default:
		p, err = f.remote.GetProfile(ctx, res.Token)
		if err != nil {
			if !errors.Is(err, api.ErrNoProfile) {
				f.logger.Warn("profile fetch failed", slog.Any("error", err))
			}
			p = api.Profile{}
			if res.User != nil {
				p.ID = res.User.ID
			}
		}
	}
	if p.ID == "" && res.User != nil {
		p.ID = res.User.ID
	}

	sess := session.Session{
		ID:          p.ID,
		PhoneNumber: entry.PhoneNumber,
		DisplayName: p.FullName,
		Alias:       session.DisplayAlias(p.Alias),
		AvatarURL:   p.AvatarURL,
		Credential:  res.Token,
	}
	return sess.WithProfileComplete(p.Complete()), nil
}

func (f *Flow) entryLocked() (CodeEntryInProgress, error) {
	switch st := f.state.(type) {
	case CodeEntryInProgress:
		return st, nil
	case Verifying, CodeRequested:
		return CodeEntryInProgress{}, ErrBusy
	case ProfileIncomplete, SessionEstablished:
		return CodeEntryInProgress{}, ErrFinished
	default:
		return CodeEntryInProgress{}, ErrNoCodeRequested
	}
}

func (f *Flow) dismissLocked() {
	if failed, ok := f.state.(Failed); ok {
		f.state = failed.Resume
	}
}

func (f *Flow) invalid(ctx context.Context, msg string) error {
	f.notify(ctx, notification.Error(msg))
	return &ValidationError{Message: msg}
}

func (f *Flow) notify(ctx context.Context, msg notification.Message) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.Send(ctx, msg); err != nil {
		f.logger.Warn("notification failed", slog.Any("error", err))
	}
}
