// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package apperr defines the centralized error handling framework for Vaultgate.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Uniformity: Authentication failures become a single UNAUTHENTICATED shape so the
    response never reveals whether a token was unknown, expired, or revoked.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the canonical error type for the Vaultgate API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "RATE_LIMITED", "INCIDENT_CLOSED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RateLimit carries the numeric quota context for RATE_LIMITED responses.
	RateLimit *RateLimit `json:"rate_limit,omitempty"`
}

// RateLimit is the machine-readable quota context attached to a
// RATE_LIMITED error, so clients can back off precisely instead of
// parsing prose.
type RateLimit struct {
	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`
	// ResetAt is when the current window expires and the quota refills.
	ResetAt time.Time `json:"reset_at"`
	// RetryAfterSeconds is the whole-second wait until ResetAt, never
	// below 1. Mirrored into the Retry-After response header.
	RetryAfterSeconds int `json:"retry_after_seconds"`
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
//	apperr.NotFound("Incident") // Returns "Incident not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthenticated creates the uniform 401 [AppError] for any failed token
// validation. Missing, expired, and revoked tokens all resolve to this single
// shape to prevent session enumeration.
func Unauthenticated() *AppError {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a 401 [AppError] with a custom message.
// Use [Unauthenticated] for token validation failures.
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

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
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

// PrincipalInvalid creates a 422 [AppError] for session creation requested
// against a non-existent or inactive principal. Not retryable.
func PrincipalInvalid() *AppError {
	return &AppError{
		Code:       "PRINCIPAL_INVALID",
		Message:    "Principal does not resolve to an active user",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// RateLimited creates a 429 [AppError] telling the caller when the current
// window resets. Safe to retry after resetAt. The numeric quota context
// travels alongside the prose so clients never have to parse it.
func RateLimited(remaining int, resetAt, now time.Time) *AppError {
	retryAfter := int(resetAt.Sub(now).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfter),
		HTTPStatus: http.StatusTooManyRequests,
		RateLimit: &RateLimit{
			Remaining:         remaining,
			ResetAt:           resetAt,
			RetryAfterSeconds: retryAfter,
		},
	}
}

// # Workflow Errors (incident state machine)

// InvalidTransition creates a 409 [AppError] for a status change the incident
// state machine does not permit. The record is left unchanged.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       "INVALID_TRANSITION",
		Message:    fmt.Sprintf("Incident status cannot change from %q to %q", from, to),
		HTTPStatus: http.StatusConflict,
	}
}

// IncidentClosed creates a 409 [AppError] for any mutation attempted on a
// closed incident. Closed is the only terminal state.
func IncidentClosed() *AppError {
	return &AppError{
		Code:       "INCIDENT_CLOSED",
		Message:    "Incident is closed and can no longer be modified",
		HTTPStatus: http.StatusConflict,
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

// StoreUnavailable creates a 503 [AppError] for durable-store I/O failures.
// Audit and incident writers report it to the operational channel instead of
// surfacing it to the caller; the authorization decision still stands.
func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Durable store is temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
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
