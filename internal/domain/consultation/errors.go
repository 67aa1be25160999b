package consultation

import "errors"

// Lifecycle error taxonomy. Every operation classifies failures into one of
// these sentinels; the handler maps them to HTTP status codes.
var (
	// ErrUnauthenticated means the caller's identity could not be resolved
	// to a directory account.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is known but not permitted to act on
	// the target, for example approving a request that never named them.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced entry, doctor, or room does not
	// exist from the caller's point of view.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRequest means the patient already has an open request
	// for this doctor.
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrStoreUnavailable wraps unexpected storage faults.
	ErrStoreUnavailable = errors.New("store unavailable")
)
