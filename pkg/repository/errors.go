package repository

import "errors"

// Domain error taxonomy shared by repositories, services, and handlers.
// Handlers map these to HTTP statuses: NotFound -> 404, InvalidTransition
// and NotRespondable -> 422, Conflict/BriefResolved/DuplicateInvite -> 409.
var (
	// ErrNotFound means the referenced brief, invite, or account is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means the invite is not in a state that allows
	// the requested transition (e.g. selecting from a non-accepted invite).
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotRespondable means the invite is expired or already resolved.
	ErrNotRespondable = errors.New("invite not respondable")

	// ErrDuplicateInvite means an invite already exists for the
	// (brief, expert) pair.
	ErrDuplicateInvite = errors.New("invite already exists")

	// ErrBriefResolved means a winner has already been finalized for the
	// brief; the caller lost the selection race.
	ErrBriefResolved = errors.New("brief already resolved")
)
