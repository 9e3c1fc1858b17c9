// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package gateway composes the authentication decision for every guarded
request.

One [Service.Authorize] call runs the full pipeline: resolve the caller's
rate-limit identifier, consult the quota, validate the session token, and
emit the audit trail and any escalation incident as side effects. The
decision itself is synchronous and comes purely from in-memory and
session state; telemetry failures never change it.

# Decision order

Rate limiting runs before session validation. A rate-limited caller is
rejected without a single session-store read, so a flood of bad tokens
cannot turn into a flood of database lookups.
*/
package gateway

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/identity"
	"github.com/tdnguyen/vaultgate/internal/incident"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
	"github.com/tdnguyen/vaultgate/internal/platform/ops"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
	"github.com/tdnguyen/vaultgate/internal/ratelimit"
	"github.com/tdnguyen/vaultgate/internal/session"
)

// IncidentTypeRepeatedAuthFailure names the incident raised when one
// identifier fails authentication past the policy threshold.
const IncidentTypeRepeatedAuthFailure = "repeated_auth_failure"

// escalationReporter attributes automatic incidents to the system itself.
const escalationReporter = "system"

// # Request & Result

// Request is one inbound call the gateway must decide on.
type Request struct {

	// Token is the presented opaque session token, empty when anonymous.
	Token string

	// Endpoint is the logical endpoint name used for quota lookup.
	Endpoint string

	// NetworkOrigin is the caller's network address.
	NetworkOrigin string

	// UserAgent annotates the audit trail.
	UserAgent string

	// Resource is the file the call targets, when any.
	Resource string

	// Action is the audit action the call maps to.
	Action audit.Action

	// RequiredRole, when set, must be met by the principal's role.
	RequiredRole sec.UserRole
}

// Kind classifies the gateway's verdict.
type Kind string

const (
	KindAllowed         Kind = "allowed"
	KindRateLimited     Kind = "rate_limited"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
)

// Result is the gateway's verdict on one request.
type Result struct {

	// Kind is the decision class.
	Kind Kind

	// Principal is the validated caller, set only when Kind is allowed
	// or forbidden.
	Principal *identity.Principal

	// Remaining and ResetAt describe the quota, populated on
	// rate-limited verdicts.
	Remaining int
	ResetAt   time.Time
}

// # Service

/*
Service is the authorization composition root.

Dependencies are the four subsystems plus the identity provider, the
token signer, and the failure counter that feeds escalation. Audit and
incident writes are side effects: their failures go to the ops reporter
and never alter a verdict.
*/
type Service struct {
	sessions   *session.Service
	identities identity.Provider
	tokens     *sec.TokenService
	limiter    *ratelimit.Limiter
	auditor    *audit.Service
	incidents  *incident.Service
	failures   FailureCounter
	reporter   *ops.Reporter
	clk        clock.Clock
	policy     EscalationPolicy
}

// Deps bundles the gateway's collaborators for construction.
type Deps struct {
	Sessions   *session.Service
	Identities identity.Provider
	Tokens     *sec.TokenService
	Limiter    *ratelimit.Limiter
	Auditor    *audit.Service
	Incidents  *incident.Service
	Failures   FailureCounter
	Reporter   *ops.Reporter
	Clock      clock.Clock
}

// NewService constructs the gateway [Service].
func NewService(deps Deps, policy EscalationPolicy) *Service {
	return &Service{
		sessions:   deps.Sessions,
		identities: deps.Identities,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		auditor:    deps.Auditor,
		incidents:  deps.Incidents,
		failures:   deps.Failures,
		reporter:   deps.Reporter,
		clk:        deps.Clock,
		policy:     policy,
	}
}

/*
Authorize decides one request.

Description: Runs the quota check, then session validation, then the
optional role check, auditing every outcome and escalating repeated
authentication failures into a medium incident.

Parameters:
  - ctx: context.Context
  - request: Request (token, endpoint, origin, and the audited action)

Returns:
  - Result: the verdict; never an error, denial is data, not failure
*/
func (service *Service) Authorize(ctx context.Context, request Request) Result {
	identifier := service.identifier(request)

	// 1. Quota first. A denied caller never reaches the session store.
	decision := service.limiter.Check(identifier, request.Endpoint)
	if !decision.Allowed {
		service.audit(ctx, request, "", false, "rate_limited")
		return Result{
			Kind:      KindRateLimited,
			Remaining: decision.Remaining,
			ResetAt:   decision.ResetAt,
		}
	}

	// 2. Session validation. Every failure is audited and counted
	//    toward escalation.
	principal, err := service.sessions.Validate(ctx, request.Token)
	if err != nil {
		service.audit(ctx, request, "", false, "invalid_token")
		service.escalate(ctx, identifier, request)
		return Result{Kind: KindUnauthenticated}
	}

	// 3. Role gate for operator-only endpoints.
	if request.RequiredRole != "" && !principal.Role.AtLeast(request.RequiredRole) {
		service.audit(ctx, request, principal.UserID, false, "forbidden")
		return Result{Kind: KindForbidden, Principal: principal}
	}

	// 4. Allowed.
	service.audit(ctx, request, principal.UserID, true, "")
	return Result{Kind: KindAllowed, Principal: principal}
}

// identifier picks the caller's best-available rate-limit key: the
// session token hash when a well-formed token is presented (stable per
// principal without a store read), otherwise the network origin.
func (service *Service) identifier(request Request) string {
	if tokenWellFormed(request.Token) {
		return "tok:" + sec.HashToken(request.Token)
	}
	return "net:" + request.NetworkOrigin
}

// tokenWellFormed checks the structural shape of an opaque token without
// touching storage.
func tokenWellFormed(token string) bool {
	if len(token) != constants.SessionTokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// audit appends one trail entry for the decision. The userID falls back
// to the network origin when the caller never authenticated.
func (service *Service) audit(ctx context.Context, request Request, userID string, success bool, reason string) {
	if userID == "" {
		userID = request.NetworkOrigin
	}

	action := request.Action
	if action == "" {
		action = audit.ActionView
	}

	service.auditor.Record(ctx, audit.Entry{
		UserID:     userID,
		ResourceID: request.Resource,
		Action:     action,
		Success:    success,
		IPAddress:  request.NetworkOrigin,
		UserAgent:  request.UserAgent,
		Error:      reason,
	})
}

// escalate counts one authentication failure and raises the window's
// single repeated-failure incident once the threshold is crossed.
func (service *Service) escalate(ctx context.Context, identifier string, request Request) {
	count, err := service.failures.Increment(ctx, identifier, service.policy.Window)
	if err != nil {
		service.report("escalation_increment", err)
		return
	}
	if count < int64(service.policy.Threshold) {
		return
	}

	claimed, err := service.failures.Escalate(ctx, identifier, service.policy.Window)
	if err != nil {
		service.report("escalation_claim", err)
		return
	}
	if !claimed {
		return
	}

	_, err = service.incidents.Report(ctx, incident.ReportInput{
		IncidentType: IncidentTypeRepeatedAuthFailure,
		Severity:     incident.SeverityMedium,
		Description:  "Repeated authentication failures from one caller",
		ReportedBy:   escalationReporter,
		IPAddress:    request.NetworkOrigin,
		UserAgent:    request.UserAgent,
	})
	if err != nil {
		service.report("escalation_report", err)
	}
}

// report forwards a telemetry failure to the ops channel.
func (service *Service) report(op string, err error) {
	service.reporter.Report(ops.Event{
		Component: "gateway",
		Op:        op,
		Err:       err,
		At:        service.clk.Now(),
	})
}
