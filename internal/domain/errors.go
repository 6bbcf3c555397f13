package domain

import "errors"

var (
	// ErrLockContention marks a transient failure to acquire the store's
	// file lock. The reader retries it; the writer drops the record.
	ErrLockContention = errors.New("store lock contention")

	// ErrVenueUnavailable marks a transport-level fetch failure.
	ErrVenueUnavailable = errors.New("venue unavailable")

	// ErrUnknownVenue is returned when no client is registered for a
	// configured venue identifier.
	ErrUnknownVenue = errors.New("unknown venue")
)
