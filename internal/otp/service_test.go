package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/tipslap/tipslap/internal/logging"
)

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *captureSender) SendCode(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[phone] = code
	return nil
}

func (s *captureSender) code(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestIssueAndVerifyWithRedis(t *testing.T) {
	mr, client := setupRedis(t)
	sender := &captureSender{}
	svc := NewService(NewRedisStore(client), sender, Options{BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()
	phone := "+15551234567"

	if err := svc.Issue(ctx, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := sender.code(phone)
	if len(code) != CodeLength {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	stored, err := mr.Get(codePrefix + phone)
	if err != nil {
		t.Fatalf("code not stored: %v", err)
	}
	if stored == code {
		t.Fatal("code must be stored hashed")
	}
	if ttl := mr.TTL(codePrefix + phone); ttl != DefaultTTL {
		t.Fatalf("expected ttl %v, got %v", DefaultTTL, ttl)
	}

	if err := svc.Verify(ctx, phone, code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if mr.Exists(codePrefix + phone) {
		t.Fatal("code must be consumed")
	}
	if err := svc.Verify(ctx, phone, code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected reuse to fail, got %v", err)
	}
}

func TestVerifyExpiredCodeWithRedis(t *testing.T) {
	mr, client := setupRedis(t)
	svc := NewService(NewRedisStore(client), &captureSender{}, Options{MockCode: "123456", BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()

	if err := svc.Issue(ctx, "+15551234567"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.FastForward(DefaultTTL + time.Second)

	if err := svc.Verify(ctx, "+15551234567", "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected expired code to fail, got %v", err)
	}
}

func TestWrongGuessesBurnCode(t *testing.T) {
	_, client := setupRedis(t)
	svc := NewService(NewRedisStore(client), &captureSender{}, Options{MockCode: "123456", BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()
	phone := "+15551234567"

	if err := svc.Issue(ctx, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	for i := 0; i < MaxAttempts; i++ {
		if err := svc.Verify(ctx, phone, "000000"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}
	if err := svc.Verify(ctx, phone, "123456"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if err := svc.Verify(ctx, phone, "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("burned code must be gone, got %v", err)
	}
}

func TestReissueResetsAttempts(t *testing.T) {
	_, client := setupRedis(t)
	svc := NewService(NewRedisStore(client), &captureSender{}, Options{MockCode: "123456", BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()
	phone := "+15551234567"

	_ = svc.Issue(ctx, phone)
	for i := 0; i < MaxAttempts; i++ {
		_ = svc.Verify(ctx, phone, "000000")
	}
	if err := svc.Issue(ctx, phone); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if err := svc.Verify(ctx, phone, "123456"); err != nil {
		t.Fatalf("expected fresh code to verify, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	svc := NewService(store, &captureSender{}, Options{MockCode: "654321", TTL: time.Minute, BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()

	if err := svc.Issue(ctx, "+15550000000"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := svc.Verify(ctx, "+15550000000", "654321"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStoreVerify(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(NewMemoryStore(), sender, Options{BcryptCost: bcrypt.MinCost, Logger: logging.Discard()})
	ctx := context.Background()

	if err := svc.Issue(ctx, "+15550000000"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Verify(ctx, "+15550000000", "not-it"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := svc.Verify(ctx, "+15550000000", sender.code("+15550000000")); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
