// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Limiter) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Vaultgate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis): escalation counters and dedup keys
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret signs the supplementary HS256 access tokens.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// SessionTTL is how long an opaque session token remains valid.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Rate limiting: the default rule applied to endpoints absent from RateLimitRules.
	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW"       envDefault:"1m"`
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"60"`

	// RateLimitRules is an optional JSON map of endpoint name to
	// {"window_ms": int, "max_requests": int}. An entry named "default"
	// overrides the RateLimitWindow/RateLimitMaxRequests pair above.
	RateLimitRules string `env:"RATE_LIMIT_RULES"`

	// Repeated-auth-failure escalation policy.
	EscalationFailureCount int           `env:"ESCALATION_FAILURE_COUNT" envDefault:"5"`
	EscalationWindow       time.Duration `env:"ESCALATION_WINDOW"        envDefault:"15m"`

	// IncidentAllowDirectResolve permits the open -> resolved shortcut in the
	// incident workflow. Off by default: passing through investigating is the
	// auditable path.
	IncidentAllowDirectResolve bool `env:"INCIDENT_ALLOW_DIRECT_RESOLVE" envDefault:"false"`

	// BlobPath is the directory backing the disk blob store.
	BlobPath string `env:"BLOB_PATH" envDefault:"./data/blobs"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// EndpointRule is one parsed entry of the RATE_LIMIT_RULES map.
type EndpointRule struct {
	WindowMs    int `json:"window_ms"`
	MaxRequests int `json:"max_requests"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Surface malformed rate-limit JSON at boot, not on the first request.
	if _, err := cfg.ParseRateLimitRules(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseRateLimitRules decodes RATE_LIMIT_RULES into a per-endpoint map.
// An empty env value yields an empty (non-nil) map.
func (c *Config) ParseRateLimitRules() (map[string]EndpointRule, error) {
	rules := make(map[string]EndpointRule)
	if c.RateLimitRules == "" {
		return rules, nil
	}
	if err := json.Unmarshal([]byte(c.RateLimitRules), &rules); err != nil {
		return nil, fmt.Errorf("config: invalid RATE_LIMIT_RULES JSON: %w", err)
	}
	return rules, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
