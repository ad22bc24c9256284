package profile

import (
	"errors"
	"strings"

	"github.com/tipslap/tipslap/internal/api"
)

var (
	// ErrNameRequired is returned when the full name is blank.
	ErrNameRequired = errors.New("full name is required")
	// ErrAliasInvalid is returned when no alias characters remain after sanitising.
	ErrAliasInvalid = errors.New("alias has no valid characters")
	// ErrAliasTooShort is returned by Edit for aliases under three characters.
	ErrAliasTooShort = errors.New("alias is shorter than 3 characters")
	// ErrNotAuthenticated is returned when no session credential is available.
	ErrNotAuthenticated = errors.New("no session credential")
)

var userMessages = map[error]string{
	ErrNameRequired:     "Please enter your full name",
	ErrAliasInvalid:     "Please enter a valid alias",
	ErrAliasTooShort:    "Alias must be at least 3 characters",
	ErrNotAuthenticated: "No authentication token found. Please log in again.",
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}

const editAliasMin = 3

// SanitizeAlias strips "@" and every character outside [A-Za-z0-9_].
func SanitizeAlias(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewProfileInput validates a name and alias for account creation or
// first-time completion and returns the request body.
func NewProfileInput(fullName, alias string) (api.ProfileInput, error) {
	return buildInput(fullName, alias, 1)
}

// EditProfileInput validates a name and alias for a later edit.
func EditProfileInput(fullName, alias string) (api.ProfileInput, error) {
	return buildInput(fullName, alias, editAliasMin)
}

func buildInput(fullName, alias string, minAlias int) (api.ProfileInput, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return api.ProfileInput{}, ErrNameRequired
	}
	clean := SanitizeAlias(alias)
	if clean == "" {
		return api.ProfileInput{}, ErrAliasInvalid
	}
	if len(clean) < minAlias {
		return api.ProfileInput{}, ErrAliasTooShort
	}
	return api.ProfileInput{FullName: name, Alias: clean, CanGiveTips: true, CanReceiveTips: true}, nil
}
