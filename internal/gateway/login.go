// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package gateway

import (
	"context"

	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
	"github.com/tdnguyen/vaultgate/internal/session"
)

// EndpointLogin is the rate-limit endpoint key guarding credential checks.
const EndpointLogin = "auth_login"

// # Login Flow

// LoginInput carries one credential-check attempt.
type LoginInput struct {
	Email         string
	Password      string
	NetworkOrigin string
	UserAgent     string
}

// LoginOutput is a freshly established session plus its access token.
type LoginOutput struct {

	// Session is the created session record.
	Session *session.Session

	// SessionToken is the opaque token the client presents from now on.
	SessionToken string

	// AccessToken is the short-lived signed token for stateless
	// role checks at the edge.
	AccessToken string
}

/*
Login verifies credentials and establishes a session.

Description: Credential checks ride the same quota and escalation
machinery as token validation: the attempt is rate-limited under
[EndpointLogin] before the identity provider is consulted, and failed
attempts count toward the repeated-failure incident.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginOutput: session, opaque token, and access token
  - error: ErrRateLimited, uniform ErrUnauthenticated on bad credentials,
    ErrPrincipalInvalid on an inactive account
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	identifier := "net:" + input.NetworkOrigin

	// 1. Quota on the credential check itself.
	decision := service.limiter.Check(identifier, EndpointLogin)
	if !decision.Allowed {
		service.auditLogin(ctx, input, input.NetworkOrigin, false, "rate_limited")
		return nil, apperr.RateLimited(decision.Remaining, decision.ResetAt, service.clk.Now())
	}

	// 2. Credential verification. Failures stay uniform and feed escalation.
	principal, err := service.identities.Verify(ctx, input.Email, input.Password)
	if err != nil {
		service.auditLogin(ctx, input, input.NetworkOrigin, false, "invalid_credentials")
		service.escalate(ctx, identifier, Request{
			NetworkOrigin: input.NetworkOrigin,
			UserAgent:     input.UserAgent,
		})
		return nil, apperr.Unauthenticated()
	}

	// 3. Session establishment.
	created, err := service.sessions.Create(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := service.tokens.GenerateAccessToken(
		principal.UserID,
		string(principal.Role),
		constants.AccessTokenTTL,
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	service.auditLogin(ctx, input, principal.UserID, true, "")

	return &LoginOutput{
		Session:      &created.Session,
		SessionToken: created.Token,
		AccessToken:  accessToken,
	}, nil
}

/*
Logout revokes the presented session token. Idempotent: an unknown or
already-revoked token is still a success toward the client, but the
trail records the no-op distinctly so real revocations stay
distinguishable from probes against dead tokens.
*/
func (service *Service) Logout(ctx context.Context, token, networkOrigin, userAgent string) error {
	revoked, err := service.sessions.Revoke(ctx, token)
	if err != nil {
		return err
	}

	reason := ""
	if !revoked {
		reason = "unknown_token"
	}
	service.auditor.Record(ctx, audit.Entry{
		UserID:    networkOrigin,
		Action:    audit.ActionView,
		Success:   revoked,
		IPAddress: networkOrigin,
		UserAgent: userAgent,
		Error:     reason,
	})
	return nil
}

/*
LogoutAll revokes every session of the authenticated principal. Used on
password change or account lock.

Description: A failed token validation here rides the same audit and
escalation side effects as [Service.Authorize], so probing tokens
through the logout surface leaves the same trail as probing any guarded
endpoint.
*/
func (service *Service) LogoutAll(ctx context.Context, token, networkOrigin, userAgent string) error {
	principal, err := service.sessions.Validate(ctx, token)
	if err != nil {
		request := Request{
			Token:         token,
			NetworkOrigin: networkOrigin,
			UserAgent:     userAgent,
		}
		service.audit(ctx, request, "", false, "invalid_token")
		service.escalate(ctx, service.identifier(request), request)
		return err
	}
	return service.sessions.RevokeAllForUser(ctx, principal.UserID)
}

// auditLogin appends one trail entry for a credential-check attempt.
func (service *Service) auditLogin(ctx context.Context, input LoginInput, userID string, success bool, reason string) {
	service.auditor.Record(ctx, audit.Entry{
		UserID:    userID,
		Action:    audit.ActionView,
		Success:   success,
		IPAddress: input.NetworkOrigin,
		UserAgent: input.UserAgent,
		Error:     reason,
	})
}
