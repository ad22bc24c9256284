// Package profile completes and edits the signed-in user's public profile.
package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tipslap/tipslap/internal/api"
	"github.com/tipslap/tipslap/internal/notification"
	"github.com/tipslap/tipslap/internal/session"
)

const (
	msgCompleteFailed = "Failed to complete profile. Please try again."
	msgUpdateFailed   = "Failed to update profile"
	msgUpdated        = "Profile updated successfully"

	placeholderAvatarHost = "pravatar.cc"
)

// Updater is the remote call used to save a profile.
type Updater interface {
	UpdateProfile(ctx context.Context, token string, in api.ProfileInput) (api.Profile, error)
}

// Service saves profile changes and keeps the session in step with them.
type Service struct {
	remote   Updater
	store    session.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a profile service.
func NewService(remote Updater, store session.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, store: store, notifier: notifier, logger: logger}
}

// Complete saves the first full name and alias of a freshly verified account.
func (s *Service) Complete(ctx context.Context, fullName, alias string) (session.Session, error) {
	in, err := NewProfileInput(fullName, alias)
	if err != nil {
		s.notify(ctx, notification.Error(Message(err)))
		return session.Session{}, err
	}
	current, saved, err := s.save(ctx, in, msgCompleteFailed)
	if err != nil {
		return session.Session{}, err
	}

	avatar := saved.AvatarURL
	if avatar == "" {
		avatar = current.AvatarURL
	}
	return s.apply(current, saved, avatar), nil
}

// Edit saves a changed full name and alias. Generated placeholder avatars are
// not carried into the updated session.
func (s *Service) Edit(ctx context.Context, fullName, alias string) (session.Session, error) {
	in, err := EditProfileInput(fullName, alias)
	if err != nil {
		s.notify(ctx, notification.Error(Message(err)))
		return session.Session{}, err
	}
	current, saved, err := s.save(ctx, in, msgUpdateFailed)
	if err != nil {
		return session.Session{}, err
	}

	avatar := current.AvatarURL
	if strings.Contains(avatar, placeholderAvatarHost) {
		avatar = ""
	}
	updated := s.apply(current, saved, avatar)
	s.notify(ctx, notification.Success(msgUpdated))
	return updated, nil
}

func (s *Service) save(ctx context.Context, in api.ProfileInput, fallback string) (session.Session, api.Profile, error) {
	current, ok := s.store.Get()
	if !ok || current.Credential == "" {
		s.notify(ctx, notification.Error(Message(ErrNotAuthenticated)))
		return session.Session{}, api.Profile{}, ErrNotAuthenticated
	}

	saved, err := s.remote.UpdateProfile(ctx, current.Credential, in)
	if err != nil {
		s.logger.Warn("profile update failed", slog.String("user_id", current.ID), slog.Any("error", err))
		s.notify(ctx, notification.Error(api.UserMessage(err, fallback)))
		return session.Session{}, api.Profile{}, err
	}
	return current, saved, nil
}

func (s *Service) apply(current session.Session, saved api.Profile, avatar string) session.Session {
	updated := current
	if saved.ID != "" {
		updated.ID = saved.ID
	}
	updated.DisplayName = saved.FullName
	updated.Alias = session.DisplayAlias(saved.Alias)
	updated.AvatarURL = avatar
	updated = updated.WithProfileComplete(true)
	s.store.Set(updated)

	s.logger.Info("profile saved", slog.String("user_id", updated.ID), slog.String("alias", updated.Alias))
	return updated
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.Any("error", err))
	}
}
