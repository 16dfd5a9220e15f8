// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/pkg/pagination"
	"github.com/taibuivan/renkei/pkg/query"
)

// Handler implements the audit-trail HTTP endpoints.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] configured with audit-specific routes.
//
// # Endpoints
//   - GET /logs : Lists audit events (newest first).
//
// Role gating (admin, superadmin) is applied by the parent router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/logs", handler.listLogs)

	return router
}

/*
ListLogs returns a paginated slice of the security event trail.

GET /api/v1/audit/logs?page=1&limit=20&actions=login_success,set_role&user_id=123

Description: Supports optional comma-separated action filtering and a single
user-id filter. Results are ordered newest first.

Response:
  - 200: PaginatedEnvelope of []Event
  - 500: StoreUnavailable on storage failure
*/
func (handler *Handler) listLogs(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := ListFilter{
		Actions: query.StringSlice(request.URL.Query().Get("actions")),
		UserID:  request.URL.Query().Get("user_id"),
	}

	events, total, err := handler.auditService.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(params.Page, params.Limit, total))
}
