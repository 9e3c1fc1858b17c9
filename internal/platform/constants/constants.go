// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Flood Guard: Burst capacities and IP tracking TTLs for the outer limiter.
  - Security: Token issuers, lengths, and Redis key taxonomy.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "vaultgate-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Flood Guard (outer per-IP limiter, distinct from the endpoint quota limiter)

const (
	// FloodGuardRPS is the requests per second allowed per IP.
	FloodGuardRPS = 100.0

	// FloodGuardBurst is the maximum burst allowed per IP.
	FloodGuardBurst = 150

	// FloodGuardCleanupInterval is how often idle IP entries are removed from memory.
	FloodGuardCleanupInterval = 1 * time.Minute

	// FloodGuardClientTTL is how long a client must be idle before its entry is deleted.
	FloodGuardClientTTL = 3 * time.Minute
)

// # Rate Limiter (fixed-window endpoint quotas)

const (
	// RateLimitReclaimInterval is how often expired windows are purged.
	RateLimitReclaimInterval = 1 * time.Minute

	// RateLimitReclaimGrace is the multiple of an endpoint's window duration a
	// counter may sit expired before the reclaimer removes it.
	RateLimitReclaimGrace = 3
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in access tokens.
	AuthIssuer = "vaultgate.app"

	// SessionTokenLength is the byte length of the opaque session token
	// (32 bytes = 256 bits of entropy, well above the 128-bit floor).
	SessionTokenLength = 32

	// AccessTokenTTL is the duration a supplementary JWT access token remains
	// valid. Short-lived so a leaked token has a small blast radius.
	AccessTokenTTL = 15 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaSystem = "system"
)

// # Redis Prefixes (Key Taxonomy)

const (
	RedisPrefixAuthFailures  = "gateway:auth_failures:"
	RedisPrefixEscalationMux = "gateway:escalated:"
)
