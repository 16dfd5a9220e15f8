// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package llm

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/renkei/internal/platform/constants"
	requestutil "github.com/taibuivan/renkei/internal/platform/request"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/validate"
)

// maxMessageLength bounds one user message in Unicode characters.
const maxMessageLength = 4000

// Handler implements the completion HTTP endpoints.
type Handler struct {
	askService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{askService: service}
}

// Routes returns a [chi.Router] configured with completion routes.
//
// # Endpoints
//   - POST /ask : One completion round trip.
//
// Role gating (user, admin, superadmin) is applied by the parent router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/ask", handler.ask)

	return router
}

type askRequest struct {
	Message string `json:"message"`
}

/*
Ask produces one assistant reply.

POST /api/v1/ask

Request:
  - Body: askRequest (Message)

Response:
  - 200: {"reply": "..."} — FallbackReply when the provider is down
  - 400: ValidationError: Empty or oversized message
  - 401: NO_CREDENTIAL: Unauthenticated
*/
func (handler *Handler) ask(writer http.ResponseWriter, request *http.Request) {
	var input askRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(constants.FieldMessage, input.Message).
		MaxLen(constants.FieldMessage, input.Message, maxMessageLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply := handler.askService.Ask(request.Context(), claims.UserID, claims.Username, input.Message)

	respond.OK(writer, map[string]string{constants.FieldReply: reply})
}
