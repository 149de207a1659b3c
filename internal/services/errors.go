package services

import (
	"errors"

	"vibe-social-backend/internal/repository"
)

// Service-level sentinels. Handlers classify failures with errors.Is
// and translate them into HTTP status codes; everything else is an
// opaque internal error.
var (
	// ErrNotFound propagates the store sentinel so repository
	// not-found results classify without re-wrapping.
	ErrNotFound = repository.ErrNotFound

	// ErrUnauthenticated means no valid session token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrStoreUnavailable means the token was valid but the backing
	// store could not materialize a user for it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrForbidden means the caller lacks rights over the target.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid means malformed input or an invalid state transition.
	ErrInvalid = errors.New("invalid request")

	// ErrSelf means the caller targeted themselves where that is not
	// allowed (self friend request, self invite redemption).
	ErrSelf = errors.New("cannot target yourself")

	// ErrAlreadyExists means a conflicting row already exists
	// (duplicate friend request in either direction).
	ErrAlreadyExists = errors.New("already exists")

	// ErrGone means the resource exists but is expired or inactive.
	ErrGone = errors.New("no longer active")
)
