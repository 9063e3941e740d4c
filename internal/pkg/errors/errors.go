package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller has no principal.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is known but lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks transport or storage failures. Callers may retry.
	ErrUnavailable = errors.New("unavailable")
	// ErrCorpusUnavailable means the base corpus never loaded; no content can be derived.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// IsAuthorization reports whether err is an authorization failure of either kind.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsRetryable reports whether err is a transient failure worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
