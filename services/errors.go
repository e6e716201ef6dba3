package services

import "errors"

// Error taxonomy surfaced to controllers. All of these are expected
// control-flow signals, not faults; controllers map them to 4xx bodies.
var (
	ErrNotFound            = errors.New("not_found")
	ErrCapacityUnavailable = errors.New("capacity_unavailable")
	ErrWaitlistNotEligible = errors.New("waitlist_not_eligible")
	ErrWaitlistFull        = errors.New("waitlist_full")
	ErrDuplicateOpenEntry  = errors.New("duplicate_open_entry")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrEntryNotOpen        = errors.New("entry_not_open")
	ErrMembershipLocked    = errors.New("membership_locked")
	ErrTokenInvalid        = errors.New("token_invalid")
	ErrTokenExpired        = errors.New("token_expired")
	ErrTokenConsumed       = errors.New("token_consumed")
)
