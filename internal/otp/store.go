package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates no live code exists for the number.
var ErrNotFound = errors.New("no active code")

// Store keeps hashed codes keyed by E.164 number.
type Store interface {
	Save(ctx context.Context, phone string, hash []byte, ttl time.Duration) error
	Load(ctx context.Context, phone string) ([]byte, error)
	Delete(ctx context.Context, phone string) error
	// Attempt counts a verification attempt and returns the running total.
	Attempt(ctx context.Context, phone string, ttl time.Duration) (int64, error)
}

const (
	codePrefix    = "otp:v1:code:"
	attemptPrefix = "otp:v1:attempts:"
)

const redisAttemptScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RedisStore stores codes in Redis with native expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save replaces any earlier code and resets the attempt counter.
func (s *RedisStore) Save(ctx context.Context, phone string, hash []byte, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, codePrefix+phone, hash, ttl)
		p.Del(ctx, attemptPrefix+phone)
		return nil
	})
	return err
}

// Load returns the stored hash.
func (s *RedisStore) Load(ctx context.Context, phone string) ([]byte, error) {
	hash, err := s.client.Get(ctx, codePrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return hash, err
}

// Delete removes the code and its attempt counter.
func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, codePrefix+phone, attemptPrefix+phone).Err()
}

// Attempt increments the attempt counter, starting its expiry on first use.
func (s *RedisStore) Attempt(ctx context.Context, phone string, ttl time.Duration) (int64, error) {
	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		seconds = int(DefaultTTL.Seconds())
	}
	return s.client.Eval(ctx, redisAttemptScript, []string{attemptPrefix + phone}, seconds).Int64()
}

type memoryEntry struct {
	hash      []byte
	attempts  int64
	expiresAt time.Time
}

// MemoryStore is the development fallback when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, phone string, hash []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = memoryEntry{hash: append([]byte(nil), hash...), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, phone string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return nil, ErrNotFound
	}
	return e.hash, nil
}

func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}

func (s *MemoryStore) Attempt(_ context.Context, phone string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return 0, ErrNotFound
	}
	e.attempts++
	s.entries[phone] = e
	return e.attempts, nil
}

// live must be called with mu held.
func (s *MemoryStore) live(phone string) (memoryEntry, bool) {
	e, ok := s.entries[phone]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, phone)
		return memoryEntry{}, false
	}
	return e, true
}
