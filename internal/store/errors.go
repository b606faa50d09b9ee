package store

import "errors"

// Sentinel errors returned by store implementations. Callers match these with
// errors.Is instead of inspecting driver-specific error values.
var (
	// ErrLeadNotFound is returned when a lead lookup matches no row.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDrinkNotFound is returned when no drink_menu row matches the
	// requested name.
	ErrDrinkNotFound = errors.New("drink not found")

	// ErrFortuneNotFound is returned when no fortunes row matches the
	// requested mood.
	ErrFortuneNotFound = errors.New("fortune not found")

	// ErrInvalidEntity is returned when a write is rejected by a database
	// constraint rather than by domain validation.
	ErrInvalidEntity = errors.New("invalid entity")
)
