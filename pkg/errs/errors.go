package errs

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; repository and provider errors are wrapped into one of
// them before leaving a service boundary.
var (
	// ErrNotFound means the referenced listing, verification or offer
	// does not exist. Not retryable without a new request.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the actor is not the listing owner or not an
	// admin.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTerminalState means the record is in a terminal status and the
	// requested transition is not allowed.
	ErrTerminalState = errors.New("record is in a terminal state")

	// ErrTransientProvider means an external provider (DNS resolver,
	// email service) was unreachable or rate-limited. Retryable.
	ErrTransientProvider = errors.New("transient provider error")

	// ErrPartialMutation means a multi-step operation failed after some
	// writes succeeded. The whole operation should be retried.
	ErrPartialMutation = errors.New("partial mutation failure")
)

// IsRetryable reports whether the error class is safe to retry as a whole
// operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientProvider) || errors.Is(err, ErrPartialMutation)
}
