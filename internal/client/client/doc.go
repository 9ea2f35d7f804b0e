// Package client talks to the gallery backend over HTTP + JSON.
//
// # Overview
//
// Client is the transport-agnostic contract the rest of the app depends on:
// auth (Me, Login, Logout, ForgotPassword, ResetPassword), profile updates,
// multipart uploads with progress, and artwork/gallery CRUD. HTTPClient is
// the concrete implementation. It attaches the session credential from a
// TokenSource as a bearer token on every request.
//
// # Error Handling
//
// HTTP status codes are mapped to the sentinels in internal/common so
// callers can use errors.Is:
//
//   - 400, 422 -> common.ErrorValidation
//   - 401      -> common.ErrorUnauthorized
//   - 403      -> common.ErrorForbidden
//   - 404      -> common.ErrorNotFound
//   - 5xx and network failures -> common.ErrorUnavailable
//
// The server's message, when present, is kept in the error text.
package client
