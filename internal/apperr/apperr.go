// Package apperr defines the failure kinds surfaced across the service.
// Callers classify errors with errors.Is; layers add detail with %w wrapping.
package apperr

import "errors"

var (
	// ErrNotAuthenticated means there is no usable session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnauthorized means the session is valid but the resource is forbidden.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers both a missing row and a row owned by someone else;
	// the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrValidation rejects malformed input before it reaches the store.
	ErrValidation = errors.New("invalid input")

	// ErrStoreUnavailable wraps backend transport failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInternal masks upstream failures whose detail must not leak.
	ErrInternal = errors.New("internal error")
)
