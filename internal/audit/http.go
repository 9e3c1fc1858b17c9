// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tdnguyen/vaultgate/internal/platform/respond"
	"github.com/tdnguyen/vaultgate/internal/platform/validate"
	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

// # HTTP Handler

// Handler exposes the audit trail to the operator dashboard.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] with the audit query endpoint.
// Admin-only routing is enforced by the parent router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

/*
List returns a page of audit entries.

GET /api/v1/audit

Description: Filters by user, resource, and timestamp range; sorts by
timestamp in either direction.

Request:
  - Query: user_id?, resource_id?, from?, to? (RFC 3339), sort? (asc|desc),
    page?, limit?

Response:
  - 200: []Entry with pagination metadata
  - 400: ErrValidation: malformed timestamp or sort direction
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := request.URL.Query()

	filter := Filter{
		UserID:     params.Get("user_id"),
		ResourceID: params.Get("resource_id"),
		Sort:       SortOrder(params.Get("sort")),
		Pagination: pagination.FromRequest(request),
	}

	validator := &validate.Validator{}
	if filter.Sort != "" {
		validator.OneOf("sort", string(filter.Sort), string(SortAsc), string(SortDesc))
	}

	var parseErr bool
	if raw := params.Get("from"); raw != "" {
		filter.From, parseErr = parseTimestamp(raw)
		validator.Custom("from", parseErr, "must be an RFC 3339 timestamp")
	}
	if raw := params.Get("to"); raw != "" {
		filter.To, parseErr = parseTimestamp(raw)
		validator.Custom("to", parseErr, "must be an RFC 3339 timestamp")
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, total, err := handler.auditService.Query(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	meta := pagination.NewMeta(filter.Pagination.Page, filter.Pagination.Limit, total)
	respond.Paginated(writer, entries, meta)
}

// parseTimestamp parses an RFC 3339 value, reporting failure as a flag.
func parseTimestamp(raw string) (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339, raw)
	return parsed, err != nil
}
