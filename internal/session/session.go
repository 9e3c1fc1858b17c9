// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package session implements the opaque-token session store.

It owns the full session lifecycle: creation on a successful credential
check, validation against the activity and expiry invariants, and
idempotent revocation. Tokens are cryptographically random, presented
opaque to clients, and stored only as SHA-256 digests.

# Architecture

  - Session: The durable entity. Mutated only to flip IsActive to false;
    never physically deleted (retained for audit correlation).
  - Repository: Abstracted storage contract (Postgres in production,
    in-memory in tests).
  - Service: Lifecycle orchestration with an injected [clock.Clock] so
    expiry math is deterministic under test.

The store performs no audit writes of its own; the gateway composition
logs around it, keeping this package free of cross-component dependencies.
*/
package session

import (
	"time"
)

// # Domain Entities

// Session represents one issued opaque session token.
//
// A session is valid iff IsActive && now < ExpiresAt. Expired and revoked
// sessions stay in storage for forensic correlation.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"` // SHA-256 of the opaque token. Omitted for security.
	IsActive  bool       `json:"is_active"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Created pairs a freshly minted session with the one-time plain token.
//
// The plain token exists only in this return value; it is never stored.
type Created struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
}
