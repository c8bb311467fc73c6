package domain

import "errors"

// Gateway failure taxonomy. Adapters wrap one of these so callers can
// branch with errors.Is.
var (
	// ErrMissingCredential is returned when no API key is configured.
	ErrMissingCredential = errors.New("data gateway credential missing")

	// ErrRateLimited is returned when the upstream throttles the caller.
	ErrRateLimited = errors.New("data gateway rate limit exceeded")

	// ErrUpstreamStatus is returned for any other non-2xx upstream response.
	ErrUpstreamStatus = errors.New("data gateway returned an error status")

	// ErrMalformedPayload is returned when the upstream body cannot be used.
	ErrMalformedPayload = errors.New("data gateway returned a malformed payload")

	// ErrInvalidAddress is returned for strings that are not 0x-prefixed 20 byte hex addresses.
	ErrInvalidAddress = errors.New("invalid address")
)

// ErrCacheMiss indicates the key was not found in cache
var ErrCacheMiss = errors.New("cache miss")

// ErrInvalidInput is returned when a request value fails validation
var ErrInvalidInput = errors.New("invalid input")
