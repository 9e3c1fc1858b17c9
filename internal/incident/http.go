// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tdnguyen/vaultgate/internal/platform/request"
	"github.com/tdnguyen/vaultgate/internal/platform/respond"
	"github.com/tdnguyen/vaultgate/internal/platform/validate"
	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

// # HTTP Handler

// Handler exposes incident reporting and the lifecycle API to operators.
type Handler struct {
	incidentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{incidentService: service}
}

// Routes returns a [chi.Router] with the incident endpoints.
// Admin-only routing is enforced by the parent router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.report)
	router.Get("/{id}", handler.get)
	router.Post("/{id}/status", handler.transition)

	return router
}

// # Request Payloads

type reportRequest struct {
	IncidentType   string          `json:"incident_type"`
	Severity       string          `json:"severity"`
	Description    string          `json:"description"`
	AffectedUserID string          `json:"affected_user_id"`
	IPAddress      string          `json:"ip_address"`
	UserAgent      string          `json:"user_agent"`
	AdditionalData json.RawMessage `json:"additional_data"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

/*
Report files a new security incident.

POST /api/v1/incidents

Description: Validates the payload and creates the incident in the open
state, attributed to the authenticated operator.

Request:
  - Body: reportRequest (IncidentType, Severity, Description required)

Response:
  - 201: Incident
  - 400: ErrValidation: missing fields or unknown severity
*/
func (handler *Handler) report(writer http.ResponseWriter, request *http.Request) {
	var input reportRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("incident_type", input.IncidentType).
		Required("severity", input.Severity).
		OneOf("severity", input.Severity, ValidSeverities()...).
		Required("description", input.Description).
		MaxLen("description", input.Description, 4000)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reporterID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.incidentService.Report(request.Context(), ReportInput{
		IncidentType:   input.IncidentType,
		Severity:       Severity(input.Severity),
		Description:    input.Description,
		ReportedBy:     reporterID,
		AffectedUserID: input.AffectedUserID,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
		AdditionalData: input.AdditionalData,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
Get returns one incident by ID.

GET /api/v1/incidents/{id}

Response:
  - 200: Incident
  - 404: ErrNotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.incidentService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
List returns a page of incidents, newest first.

GET /api/v1/incidents

Request:
  - Query: severity?, status?, affected_user_id?, page?, limit?

Response:
  - 200: []Incident with pagination metadata
  - 400: ErrValidation: unknown severity or status value
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := request.URL.Query()

	filter := Filter{
		Severity:       Severity(params.Get("severity")),
		Status:         Status(params.Get("status")),
		AffectedUserID: params.Get("affected_user_id"),
		Pagination:     pagination.FromRequest(request),
	}

	validator := &validate.Validator{}
	if filter.Severity != "" {
		validator.OneOf("severity", string(filter.Severity), ValidSeverities()...)
	}
	if filter.Status != "" {
		validator.OneOf("status", string(filter.Status), ValidStatuses()...)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	incidents, total, err := handler.incidentService.Query(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	meta := pagination.NewMeta(filter.Pagination.Page, filter.Pagination.Limit, total)
	respond.Paginated(writer, incidents, meta)
}

/*
Transition moves an incident to a new lifecycle state.

POST /api/v1/incidents/{id}/status

Request:
  - Body: transitionRequest (Status required, Notes optional)

Response:
  - 200: Incident: the updated record
  - 404: ErrNotFound
  - 409: ErrInvalidTransition or ErrIncidentClosed
*/
func (handler *Handler) transition(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var input transitionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("id", id).
		UUID("id", id).
		Required("status", input.Status).
		OneOf("status", input.Status, ValidStatuses()...)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.incidentService.Transition(request.Context(), TransitionInput{
		ID:      id,
		To:      Status(input.Status),
		ActorID: actorID,
		Notes:   input.Notes,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}
