// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tdnguyen/vaultgate/internal/platform/request"
	"github.com/tdnguyen/vaultgate/internal/platform/respond"
	"github.com/tdnguyen/vaultgate/internal/platform/validate"
)

// # HTTP Handler

// Handler implements the authentication lifecycle endpoints.
type Handler struct {
	gatewayService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{gatewayService: service}
}

// Routes returns a [chi.Router] with the authentication endpoints.
//
// # Endpoints
//   - POST /login      : Verifies credentials and opens a session.
//   - POST /logout     : Revokes the presented session token.
//   - POST /logout-all : Revokes every session of the caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/logout-all", handler.logoutAll)

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials through the gateway so the attempt is
rate-limited and escalation-counted, then returns the opaque session
token alongside a short-lived access token.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: session_token, access_token, expires_at
  - 401: ErrUnauthenticated: bad credentials, uniform
  - 429: ErrRateLimited: too many attempts from this origin
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("email", input.Email)
	validator.Required("password", input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	output, err := handler.gatewayService.Login(request.Context(), LoginInput{
		Email:         input.Email,
		Password:      input.Password,
		NetworkOrigin: requestutil.ClientIP(request),
		UserAgent:     request.UserAgent(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"session_token": output.SessionToken,
		"access_token":  output.AccessToken,
		"expires_at":    output.Session.ExpiresAt,
	})
}

/*
Logout revokes the presented session token.

POST /api/v1/auth/logout

Description: Idempotent; an unknown or already-revoked token still
returns success, so clients can always log out safely.

Response:
  - 204: session revoked (or was never valid)
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.BearerToken(request)

	err := handler.gatewayService.Logout(request.Context(), token, requestutil.ClientIP(request), request.UserAgent())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
LogoutAll revokes every session of the authenticated caller.

POST /api/v1/auth/logout-all

Response:
  - 204: all sessions revoked
  - 401: ErrUnauthenticated: the presented token is not valid
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.BearerToken(request)

	err := handler.gatewayService.LogoutAll(request.Context(), token, requestutil.ClientIP(request), request.UserAgent())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

