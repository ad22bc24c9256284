// Package otp issues and checks the six-digit sign-in codes sent by SMS.
// Only bcrypt hashes of codes are stored.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of digits in a code.
	CodeLength = 6
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 5 * time.Minute
	// MaxAttempts is the number of wrong guesses after which a code is burned.
	MaxAttempts = 5
)

var (
	// ErrInvalidCode covers wrong, expired and never-issued codes alike.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrTooManyAttempts indicates the code was burned after repeated failures.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Sender delivers a code to a phone.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LoggerSender writes codes to the log instead of sending an SMS.
type LoggerSender struct {
	Logger *slog.Logger
}

// SendCode logs the code at info level.
func (s LoggerSender) SendCode(_ context.Context, phone, code string) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.Info("verification code issued", slog.String("phone", phone), slog.String("code", code))
	return nil
}

// Options tune a Service.
type Options struct {
	TTL time.Duration
	// MockCode, when set, is issued instead of a random code.
	MockCode   string
	BcryptCost int
	Logger     *slog.Logger
}

// Service issues and verifies codes.
type Service struct {
	store    Store
	sender   Sender
	ttl      time.Duration
	mockCode string
	cost     int
	logger   *slog.Logger
}

// NewService constructs a code service.
func NewService(store Store, sender Sender, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		store:    store,
		sender:   sender,
		ttl:      opts.TTL,
		mockCode: opts.MockCode,
		cost:     opts.BcryptCost,
		logger:   opts.Logger,
	}
}

// Issue generates a code for phone, stores its hash and hands it to the sender.
// A new code replaces any earlier one.
func (s *Service) Issue(ctx context.Context, phone string) error {
	code := s.mockCode
	if code == "" {
		var err error
		if code, err = randomCode(); err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := s.store.Save(ctx, phone, hash, s.ttl); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		_ = s.store.Delete(ctx, phone)
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Verify checks code for phone and consumes it on success.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	hash, err := s.store.Load(ctx, phone)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	attempts, err := s.store.Attempt(ctx, phone, s.ttl)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("count attempt: %w", err)
	}
	if attempts > MaxAttempts {
		_ = s.store.Delete(ctx, phone)
		s.logger.Warn("verification code burned", slog.String("phone", phone), slog.Int64("attempts", attempts))
		return ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
		return ErrInvalidCode
	}
	if err := s.store.Delete(ctx, phone); err != nil {
		s.logger.Warn("consume code failed", slog.String("phone", phone), slog.Any("error", err))
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
