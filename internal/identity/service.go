package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxAliasLength = 30
	// DefaultSearchLimit applies when the caller gives no limit.
	DefaultSearchLimit = 20
	// MaxSearchLimit caps the number of search results.
	MaxSearchLimit = 50
)

// Service manages the identity lifecycle.
type Service struct {
	repo           Repository
	openingBalance int64
}

// NewService creates a new identity service. New accounts start with openingBalance cents.
func NewService(repo Repository, openingBalance int64) *Service {
	return &Service{repo: repo, openingBalance: openingBalance}
}

// EnsureByPhone returns the user for phone, creating a bare account on first
// sight. isNew reports whether the account was just created.
func (s *Service) EnsureByPhone(ctx context.Context, phone string) (user User, isNew bool, err error) {
	user, err = s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	user = User{
		ID:             uuid.New().String(),
		Phone:          phone,
		BalanceCents:   s.openingBalance,
		CanGiveTips:    true,
		CanReceiveTips: true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrPhoneTaken) {
			// Lost a race with a concurrent verification for the same number.
			existing, findErr := s.repo.FindByPhone(ctx, phone)
			return existing, false, findErr
		}
		return User{}, false, err
	}
	return user, true, nil
}

// Get returns the user with id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProfile sets the first profile of an account that has none.
func (s *Service) CreateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if current.HasProfile() {
		return User{}, ErrProfileExists
	}
	return s.UpdateProfile(ctx, id, in)
}

// UpdateProfile validates and saves a profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	clean, err := normalizeProfile(in)
	if err != nil {
		return User{}, err
	}
	return s.repo.UpdateProfile(ctx, id, clean)
}

// Search returns users matching query on behalf of requesterID.
func (s *Service) Search(ctx context.Context, requesterID, query string, limit int) ([]User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []User{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return s.repo.Search(ctx, strings.TrimPrefix(query, "@"), requesterID, limit)
}

func normalizeProfile(in ProfileInput) (ProfileInput, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return ProfileInput{}, ErrNameRequired
	}
	var b strings.Builder
	for _, r := range in.Alias {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	in.Alias = b.String()
	if in.Alias == "" || len(in.Alias) > maxAliasLength {
		return ProfileInput{}, ErrAliasInvalid
	}
	return in, nil
}
