// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Renkei.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Session taxonomy: Dedicated constructors for each credential rejection reason.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Renkei API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries or
// upstream provider payloads).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CSRF_MISMATCH").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Context entry") // Returns "Context entry not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Session & Credential Taxonomy
//
// Every way a presented credential can be rejected gets its own machine code.
// They all collapse to 401/403 for the client, but audit logging treats
// INSUFFICIENT_ROLE as the only true permission violation — the rest merely
// indicate absence of a login.

// NoCredential creates a 401 for a request that presented nothing.
func NoCredential() *AppError {
	return &AppError{
		Code:       "NO_CREDENTIAL",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ExpiredCredential creates a 401 for a structurally valid but stale credential.
func ExpiredCredential() *AppError {
	return &AppError{
		Code:       "EXPIRED_CREDENTIAL",
		Message:    "Credential expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// MalformedCredential creates a 401 for a credential that failed parsing or
// signature verification.
func MalformedCredential() *AppError {
	return &AppError{
		Code:       "MALFORMED_CREDENTIAL",
		Message:    "Invalid credential",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InsufficientRole creates a 403 for an authenticated identity whose role is
// outside the operation's allowed set.
func InsufficientRole() *AppError {
	return &AppError{
		Code:       "INSUFFICIENT_ROLE",
		Message:    "Insufficient permissions",
		HTTPStatus: http.StatusForbidden,
	}
}

// CsrfMismatch creates a 403 for a refresh attempt whose presented CSRF value
// does not match the cookie.
func CsrfMismatch() *AppError {
	return &AppError{
		Code:       "CSRF_MISMATCH",
		Message:    "CSRF token mismatch",
		HTTPStatus: http.StatusForbidden,
	}
}

// InvalidRefresh creates a 401 for a refresh secret with no live record.
func InvalidRefresh() *AppError {
	return &AppError{
		Code:       "INVALID_REFRESH",
		Message:    "Invalid or expired refresh token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NoRoleAssigned creates a 403 for a login whose identity resolves to guest.
func NoRoleAssigned() *AppError {
	return &AppError{
		Code:       "NO_ROLE_ASSIGNED",
		Message:    "No role assigned to user",
		HTTPStatus: http.StatusForbidden,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// UpstreamAuth creates a 502 [AppError] for identity-provider failures.
// The client sees a generic login failure; the cause stays server-side.
func UpstreamAuth(cause error) *AppError {
	return &AppError{
		Code:       "UPSTREAM_AUTH_ERROR",
		Message:    "Login failed",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// StoreUnavailable creates a 500 [AppError] for row-store outages on paths
// that have no safe fallback.
func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Storage temporarily unavailable",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns the machine code of err, or "INTERNAL_ERROR" for plain errors.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return "INTERNAL_ERROR"
}
