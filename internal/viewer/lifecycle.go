package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current lifecycle status.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrLoadCancelled is the failure recorded when the caller cancels a
	// load or a password prompt.
	ErrLoadCancelled = errors.New("load cancelled")

	// ErrNotMounted is returned by Unmount before Mount.
	ErrNotMounted = errors.New("viewer not mounted")
)

// Status is the document lifecycle state.
type Status int

const (
	StatusLoading Status = iota
	StatusAskingPassword
	StatusVerifyingPassword
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading"
	case StatusAskingPassword:
		return "AskingPassword"
	case StatusVerifyingPassword:
		return "VerifyingPassword"
	case StatusLoaded:
		return "Loaded"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusLoaded || s == StatusFailed
}

// PasswordReason tells why a password is being asked for.
type PasswordReason int

const (
	NoPasswordReason PasswordReason = iota
	// RequirePassword means the document is encrypted and no password was
	// given yet.
	RequirePassword
	// WrongPassword means the last submitted password was rejected.
	WrongPassword
)

func (r PasswordReason) String() string {
	switch r {
	case RequirePassword:
		return "RequirePassword"
	case WrongPassword:
		return "WrongPassword"
	default:
		return "None"
	}
}

// transitions lists the allowed lifecycle edges.
var transitions = map[Status][]Status{
	StatusLoading:           {StatusAskingPassword, StatusLoaded, StatusFailed},
	StatusAskingPassword:    {StatusVerifyingPassword, StatusFailed},
	StatusVerifyingPassword: {StatusAskingPassword, StatusLoaded, StatusFailed},
}

// canTransition reports whether from -> to is an allowed edge.
func canTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
