// Package common defines shared constants and sentinel errors used across
// gallerist packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Backend/service errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorUnavailable  = errors.New("server unavailable")
	ErrorValidation   = errors.New("validation error")

	// Credential errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload transfer causes.
	ErrUploadCancelled = errors.New("upload cancelled")
	ErrUploadStalled   = errors.New("upload stalled")
)
