// Package session holds the single authenticated identity of a running client.
//
// A Session is created only after the verification exchange has fully
// resolved and is removed only by an explicit logout. Nothing in this package
// persists: a restarted client starts logged out.
package session

import "strings"

// Session is the in-memory record of the authenticated user and their credential.
type Session struct {
	ID          string
	PhoneNumber string
	DisplayName string
	// Alias is stored with its leading "@".
	Alias      string
	AvatarURL  string
	Credential string
	// ProfileComplete, when set, overrides the value derived from Alias and DisplayName.
	ProfileComplete *bool
}

// Complete reports whether the profile is complete. An explicit flag takes
// precedence; otherwise alias and display name must both hold non-placeholder values.
func (s Session) Complete() bool {
	if s.ProfileComplete != nil {
		return *s.ProfileComplete
	}
	return !IsPlaceholderAlias(s.Alias) && !IsPlaceholderName(s.DisplayName)
}

// WithProfileComplete returns a copy of s carrying an explicit completion flag.
func (s Session) WithProfileComplete(complete bool) Session {
	s.ProfileComplete = &complete
	return s
}

// IsPlaceholderAlias reports whether alias is empty or one of the stand-ins
// the front-end shows before a real alias exists.
func IsPlaceholderAlias(alias string) bool {
	a := strings.TrimSpace(alias)
	switch strings.ToLower(a) {
	case "", "@", "@user":
		return true
	}
	return false
}

// IsPlaceholderName reports whether name is empty or the generic "User" stand-in.
func IsPlaceholderName(name string) bool {
	n := strings.TrimSpace(name)
	return n == "" || strings.EqualFold(n, "user")
}

// DisplayAlias prefixes alias with "@" unless it already has one.
func DisplayAlias(alias string) string {
	alias = strings.TrimSpace(alias)
	if alias == "" || strings.HasPrefix(alias, "@") {
		return alias
	}
	return "@" + alias
}

// Store is the narrow repository through which every layer reads and writes the session.
type Store interface {
	Get() (Session, bool)
	Set(Session)
	Clear()
}

// IsAuthenticated reports whether store currently holds a session.
func IsAuthenticated(store Store) bool {
	_, ok := store.Get()
	return ok
}

// IsProfileComplete reports whether store holds a session with a complete profile.
func IsProfileComplete(store Store) bool {
	s, ok := store.Get()
	return ok && s.Complete()
}
