package embeddings

import "errors"

var (
	// ErrUnavailable is returned when the model endpoint is unreachable or
	// answers with a non-success status. Retry policy belongs to the caller.
	ErrUnavailable = errors.New("model endpoint unavailable")

	// ErrMalformedResponse is returned when the endpoint's response cannot be
	// parsed into a vector or string. Callers treat it like ErrUnavailable:
	// either way this call's result is unusable.
	ErrMalformedResponse = errors.New("malformed model response")
)
