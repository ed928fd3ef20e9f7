package food

import "errors"

var (
	// ErrNotFound means no listing exists with the requested id.
	ErrNotFound = errors.New("listing not found")
	// ErrForbidden means the caller is not the owner of the listing.
	ErrForbidden = errors.New("caller does not own listing")
	// ErrConflict means the listing already left the Available state.
	ErrConflict = errors.New("listing already requested")
	// ErrIdentityMismatch means a claim payload names someone other than
	// the authenticated caller.
	ErrIdentityMismatch = errors.New("claim identity does not match caller")
	// ErrInvalid means the payload is missing required fields.
	ErrInvalid = errors.New("invalid payload")
)
