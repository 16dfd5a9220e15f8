// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/renkei/internal/audit"
	requestutil "github.com/taibuivan/renkei/internal/platform/request"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/sec"
	"github.com/taibuivan/renkei/internal/platform/validate"
	"github.com/taibuivan/renkei/pkg/slice"
)

// # Definitions & Constructors

// Handler implements the ACL management HTTP endpoints.
//
// # Scope
//
// Every route here mutates or reveals the authorization surface, so the
// parent router gates the whole subtree to admin and superadmin.
type Handler struct {
	repository   Repository
	auditService *audit.Service
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(repository Repository, auditService *audit.Service) *Handler {
	return &Handler{
		repository:   repository,
		auditService: auditService,
	}
}

// Routes returns a [chi.Router] configured with ACL-specific routes.
//
// # Endpoints
//   - GET    /role/{userID} : Resolves the stored role for one identity.
//   - POST   /set           : Creates or replaces a role assignment.
//   - DELETE /role/{userID} : Removes an assignment (back to guest).
//   - GET    /all           : Lists every stored assignment.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/role/{userID}", handler.getRole)
	router.Post("/set", handler.setRole)
	router.Delete("/role/{userID}", handler.removeRole)
	router.Get("/all", handler.listRoles)

	return router
}

// # Request Payloads

type setRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

/*
GetRole resolves the stored role for one external identity.

GET /api/v1/acl/role/{userID}

Response:
  - 200: Assignment: The stored assignment row
  - 404: NotFound: No assignment exists for this identity
*/
func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	validator := &validate.Validator{}
	validator.Required("user_id", userID).Snowflake("user_id", userID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignment, err := handler.repository.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assignment)
}

/*
SetRole creates or replaces a role assignment.

POST /api/v1/acl/set

Description: Validates the target identity and role, upserts the assignment,
and records a set_role audit event attributed to the acting operator.

Request:
  - Body: setRoleRequest (UserID, Role)

Response:
  - 200: Assignment: The written assignment row
  - 400: ValidationError: Bad identity or unassignable role
*/
func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	var input setRoleRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Guest is not assignable: removing the row is the only way back to guest.
	allowed := slice.Map(sec.AssignableRoles, func(role sec.Role) string {
		return string(role)
	})

	validator := &validate.Validator{}
	validator.Required("user_id", input.UserID).
		Snowflake("user_id", input.UserID).
		Required("role", input.Role).
		OneOf("role", input.Role, allowed...)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	operator, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignment := &Assignment{
		UserID:     input.UserID,
		Role:       input.Role,
		AssignedBy: operator.UserID,
	}

	if err := handler.repository.Set(request.Context(), assignment); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.auditService.Record(request.Context(), &audit.Event{
		Action:   audit.ActionSetRole,
		UserID:   operator.UserID,
		Username: operator.Username,
		Detail:   input.UserID + "→" + input.Role,
	})

	respond.OK(writer, assignment)
}

/*
RemoveRole deletes a role assignment, returning the identity to guest.

DELETE /api/v1/acl/role/{userID}

Response:
  - 204: Assignment removed (idempotent)
  - 400: ValidationError: Bad identity
*/
func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	validator := &validate.Validator{}
	validator.Required("user_id", userID).Snowflake("user_id", userID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	operator, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.repository.Remove(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.auditService.Record(request.Context(), &audit.Event{
		Action:   audit.ActionRemoveRole,
		UserID:   operator.UserID,
		Username: operator.Username,
		Detail:   userID,
	})

	respond.NoContent(writer)
}

/*
ListRoles returns every stored role assignment.

GET /api/v1/acl/all

Response:
  - 200: []Assignment: All rows ordered by most recent write first
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	assignments, err := handler.repository.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assignments)
}
