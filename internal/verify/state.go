package verify

import (
	"strings"

	"github.com/tipslap/tipslap/internal/session"
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

// State is one node of the verification state machine. The concrete types
// below are the only implementations.
type State interface {
	Name() string
	isState()
}

// AwaitingPhoneNumber is the initial state.
type AwaitingPhoneNumber struct{}

// CodeRequested is held while the request-code call is in flight.
type CodeRequested struct {
	PhoneNumber string
}

// CodeEntryInProgress collects the digits of the code sent to PhoneNumber.
type CodeEntryInProgress struct {
	PhoneNumber string
	Digits      [CodeLength]string
}

// Verifying is held while verify-code and its follow-up calls are in flight.
type Verifying struct {
	PhoneNumber string
}

// ProfileIncomplete is terminal: a session exists but lacks alias or name.
type ProfileIncomplete struct {
	Session session.Session
}

// SessionEstablished is terminal: a session with a complete profile exists.
type SessionEstablished struct {
	Session session.Session
}

// Failed is the error pseudostate. Message is user-facing; the next input
// resumes from Resume.
type Failed struct {
	Message string
	Resume  State
}

func (AwaitingPhoneNumber) Name() string { return "awaiting_phone_number" }
func (CodeRequested) Name() string       { return "code_requested" }
func (CodeEntryInProgress) Name() string { return "code_entry_in_progress" }
func (Verifying) Name() string           { return "verifying" }
func (ProfileIncomplete) Name() string   { return "profile_incomplete" }
func (SessionEstablished) Name() string  { return "session_established" }
func (Failed) Name() string              { return "failed" }

func (AwaitingPhoneNumber) isState() {}
func (CodeRequested) isState()       {}
func (CodeEntryInProgress) isState() {}
func (Verifying) isState()           {}
func (ProfileIncomplete) isState()   {}
func (SessionEstablished) isState()  {}
func (Failed) isState()              {}

// Code joins the entered digits.
func (s CodeEntryInProgress) Code() string {
	return strings.Join(s.Digits[:], "")
}

// Filled reports whether every slot holds a digit.
func (s CodeEntryInProgress) Filled() bool {
	for _, d := range s.Digits {
		if d == "" {
			return false
		}
	}
	return true
}

// Terminal reports whether st ends the flow.
func Terminal(st State) bool {
	switch st.(type) {
	case ProfileIncomplete, SessionEstablished:
		return true
	default:
		return false
	}
}
