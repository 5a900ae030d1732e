package domain

import "errors"

var (
	// ErrUnauthorized is returned for 401 responses. Any authenticated call
	// observing it must invalidate the actor's identity slice.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned for 403 responses.
	ErrForbidden = errors.New("access forbidden")
	// ErrNotFound is returned for 404 responses. For profile-loading calls it
	// is treated the same as ErrUnauthorized.
	ErrNotFound = errors.New("not found")
	// ErrRejected wraps a structured 4xx/5xx error payload from the server.
	// The server's message is carried by the wrapping error.
	ErrRejected = errors.New("request rejected")
	// ErrValidation marks client-side pre-validation failures. The network is
	// never touched when it is returned.
	ErrValidation = errors.New("validation failed")

	ErrMissingToken       = errors.New("missing session token")
	ErrStorageUnavailable = errors.New("durable storage unavailable")
)
