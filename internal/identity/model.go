package identity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneTaken indicates a user already exists for the phone number.
	ErrPhoneTaken = errors.New("user exists")
	// ErrAliasTaken indicates another user holds the alias.
	ErrAliasTaken = errors.New("alias already taken")
	// ErrProfileExists indicates the account already has a profile.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNameRequired indicates a blank full name.
	ErrNameRequired = errors.New("full name is required")
	// ErrAliasInvalid indicates an alias with no usable characters or too long.
	ErrAliasInvalid = errors.New("alias is empty or too long")
)

// User is a TipSlap account keyed by phone number.
type User struct {
	ID             string
	Phone          string
	Alias          string
	FullName       string
	AvatarURL      string
	BalanceCents   int64
	CanGiveTips    bool
	CanReceiveTips bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasProfile reports whether the user has chosen an alias and name.
func (u User) HasProfile() bool {
	return u.Alias != "" && u.FullName != ""
}

// ProfileInput is the editable part of a user.
type ProfileInput struct {
	FullName       string
	Alias          string
	CanGiveTips    bool
	CanReceiveTips bool
}
