package apperrors

import "errors"

// Failure taxonomy for the order core. Callers classify with errors.Is and
// wrap with fmt.Errorf("%w: ...") to attach detail.
var (
	// ErrInvalidCart is returned for an empty cart or a cart whose every
	// line failed to resolve against the catalog.
	ErrInvalidCart = errors.New("invalid cart")

	// ErrNotFound is returned when an order or menu item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned on a role or vendor-ownership mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIllegalTransition is returned when a status update would skip a
	// step or move backwards.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrTokenExhausted is returned when intake cannot find a free token
	// within its bounded retries.
	ErrTokenExhausted = errors.New("token space exhausted")

	// ErrConcurrencyConflict is returned when a write was applied against
	// a stale version of an order and rejected by the store.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")

	// ErrStoreUnavailable is returned when the store stays unreachable
	// after the boundary retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
