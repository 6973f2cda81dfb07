package vector

import "errors"

var (
	// ErrNotFound is returned when no record exists for the requested id.
	// Callers branch on it; it is not a failure.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the dimensionality the store was provisioned with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBackendRejected is returned when a native search backend refuses a
	// query, typically because it enforces exact dimensionality.
	ErrBackendRejected = errors.New("backend rejected query")
)
