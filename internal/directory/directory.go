// Package directory finds workers to tip, either by search or from a scanned
// account QR payload.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tipslap/tipslap/internal/api"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/profile"
	"github.com/tipslap/tipslap/internal/session"
)

const (
	tipURLPrefix    = "tipslap://tip/"
	msgSearchFailed = "Failed to search users"
)

// ErrInvalidQR is returned for payloads that are not account tip URLs.
var ErrInvalidQR = errors.New("not a tip link")

var tipURLPattern = regexp.MustCompile(`^tipslap://tip/(@\w+)$`)

// Worker is a tippable user as shown in search results.
type Worker struct {
	ID       string
	Name     string
	Username string
	Avatar   string
}

// Searcher is the remote user search.
type Searcher interface {
	SearchUsers(ctx context.Context, token, query string, limit int) ([]api.Profile, error)
}

// Service runs user searches on behalf of the signed-in user.
type Service struct {
	remote   Searcher
	store    session.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a directory service.
func NewService(remote Searcher, store session.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, store: store, notifier: notifier, logger: logger}
}

// Search returns workers matching query. A blank query returns nothing
// without contacting the remote.
func (s *Service) Search(ctx context.Context, query string) ([]Worker, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	current, ok := s.store.Get()
	if !ok || current.Credential == "" {
		return nil, profile.ErrNotAuthenticated
	}

	found, err := s.remote.SearchUsers(ctx, current.Credential, query, api.DefaultSearchSize)
	if err != nil {
		s.logger.Warn("user search failed", slog.String("query", query), slog.Any("error", err))
		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Error(msgSearchFailed))
		}
		return nil, err
	}

	workers := make([]Worker, 0, len(found))
	for _, p := range found {
		workers = append(workers, Worker{
			ID:       p.ID,
			Name:     p.FullName,
			Username: session.DisplayAlias(p.Alias),
			Avatar:   p.AvatarURL,
		})
	}
	return workers, nil
}

// ParseTipURL extracts the "@alias" from a scanned "tipslap://tip/@alias"
// payload. Anything around the link other than whitespace is rejected.
func ParseTipURL(data string) (string, error) {
	m := tipURLPattern.FindStringSubmatch(strings.TrimSpace(data))
	if m == nil {
		return "", ErrInvalidQR
	}
	return m[1], nil
}

// TipURL builds the payload encoded in an account's QR code.
func TipURL(alias string) string {
	return tipURLPrefix + session.DisplayAlias(alias)
}
