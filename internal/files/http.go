// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package files

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/gateway"
	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	requestutil "github.com/tdnguyen/vaultgate/internal/platform/request"
	"github.com/tdnguyen/vaultgate/internal/platform/respond"
	"github.com/tdnguyen/vaultgate/internal/platform/validate"
	"github.com/tdnguyen/vaultgate/pkg/uuid"
)

// # HTTP Handler

// Handler implements the guarded file endpoints.
type Handler struct {
	gatewayService *gateway.Service
	blobs          BlobStore
	clk            clock.Clock
}

// NewHandler constructs a new [Handler].
func NewHandler(gatewayService *gateway.Service, blobs BlobStore, clk clock.Clock) *Handler {
	return &Handler{
		gatewayService: gatewayService,
		blobs:          blobs,
		clk:            clk,
	}
}

// Routes returns a [chi.Router] with the file endpoints.
//
// # Endpoints
//   - POST   /              : Uploads a new file.
//   - GET    /{id}          : Views file metadata.
//   - GET    /{id}/download : Streams the file content.
//   - PUT    /{id}          : Replaces the file content.
//   - DELETE /{id}          : Removes the file.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.upload)
	router.Get("/{id}", handler.view)
	router.Get("/{id}/download", handler.download)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// authorize runs one file action through the gateway and maps the
// verdict to a transport error when the request may not proceed.
func (handler *Handler) authorize(request *http.Request, endpoint, resource string, action audit.Action) (*gateway.Result, error) {
	result := handler.gatewayService.Authorize(request.Context(), gateway.Request{
		Token:         requestutil.BearerToken(request),
		Endpoint:      endpoint,
		NetworkOrigin: requestutil.ClientIP(request),
		UserAgent:     request.UserAgent(),
		Resource:      resource,
		Action:        action,
	})

	switch result.Kind {
	case gateway.KindAllowed:
		return &result, nil
	case gateway.KindRateLimited:
		return nil, apperr.RateLimited(result.Remaining, result.ResetAt, handler.clk.Now())
	case gateway.KindForbidden:
		return nil, apperr.Forbidden("Insufficient role for this operation")
	default:
		return nil, apperr.Unauthenticated()
	}
}

/*
Upload stores a new file.

POST /api/v1/files

Description: Authorizes the caller, assigns the file identifier, and
streams the request body into the blob store.

Response:
  - 201: id of the stored file
  - 401/429: gateway denial
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	id := uuid.Must()

	result, err := handler.authorize(request, "file_upload", id, audit.ActionUpload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.blobs.Put(request.Context(), id, request.Body); err != nil {
		respond.Error(writer, request, apperr.StoreUnavailable(err))
		return
	}

	respond.Created(writer, map[string]any{
		"id":       id,
		"owner_id": result.Principal.UserID,
	})
}

/*
View returns file metadata.

GET /api/v1/files/{id}

Response:
  - 200: id and size
  - 404: ErrNotFound
*/
func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authorize(request, "file_view", id, audit.ActionView); err != nil {
		respond.Error(writer, request, err)
		return
	}

	size, err := handler.blobs.Stat(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"id": id, "size": size})
}

/*
Download streams the file content.

GET /api/v1/files/{id}/download

Response:
  - 200: raw content
  - 404: ErrNotFound
*/
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authorize(request, "file_download", id, audit.ActionDownload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.blobs.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer content.Close()

	writer.Header().Set("Content-Type", "application/octet-stream")
	writer.WriteHeader(http.StatusOK)
	io.Copy(writer, content)
}

/*
Update replaces the file content.

PUT /api/v1/files/{id}

Response:
  - 200: id
  - 404: ErrNotFound
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authorize(request, "file_update", id, audit.ActionUpdate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Replacing an absent blob must 404, not create.
	if _, err := handler.blobs.Stat(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.blobs.Put(request.Context(), id, request.Body); err != nil {
		respond.Error(writer, request, apperr.StoreUnavailable(err))
		return
	}

	respond.OK(writer, map[string]any{"id": id})
}

/*
Remove deletes the file.

DELETE /api/v1/files/{id}

Response:
  - 204: removed
  - 404: ErrNotFound
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authorize(request, "file_delete", id, audit.ActionDelete); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.blobs.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

