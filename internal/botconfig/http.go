// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package botconfig

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/renkei/internal/platform/request"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/sec"
	"github.com/taibuivan/renkei/internal/platform/validate"
)

// maxConfigValueLength bounds one stored configuration value.
const maxConfigValueLength = 8000

// Handler implements the runtime-configuration HTTP endpoints.
type Handler struct {
	configService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{configService: service}
}

// Routes returns a [chi.Router] configured with configuration routes.
//
// # Endpoints
//   - GET    /        : Lists the effective view of every allow-listed key.
//   - GET    /status  : Value-free provenance summary.
//   - GET    /{key}   : Resolves one key.
//   - PUT    /{key}   : Writes a runtime override.
//   - DELETE /{key}   : Removes an override (back to the env fallback).
//
// Role gating (admin, superadmin) is applied by the parent router; masking
// below superadmin happens in the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/status", handler.status)
	router.Get("/{key}", handler.get)
	router.Put("/{key}", handler.set)
	router.Delete("/{key}", handler.unset)

	return router
}

type setConfigRequest struct {
	Value string `json:"value"`
}

/*
List returns the effective view of every allow-listed key.

GET /api/v1/config

Response:
  - 200: []Setting sorted by key
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	settings, err := handler.configService.List(request.Context(), sec.ParseRole(claims.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, settings)
}

/*
Get resolves the effective value for one key.

GET /api/v1/config/{key}

Response:
  - 200: Setting
  - 404: NotFound: Key outside the allow-list
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.configService.Get(request.Context(), key, sec.ParseRole(claims.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setting)
}

/*
Set writes a runtime override for one key.

PUT /api/v1/config/{key}

Request:
  - Body: setConfigRequest (Value)

Response:
  - 200: Setting: The resulting effective view
  - 400: ValidationError: Oversized value
  - 404: NotFound: Key outside the allow-list
*/
func (handler *Handler) set(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")

	var input setConfigRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.MaxLen("value", input.Value, maxConfigValueLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.configService.Set(request.Context(), key, input.Value, claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setting)
}

/*
Unset removes the runtime override for one key.

DELETE /api/v1/config/{key}

Response:
  - 200: Setting: The effective view after removal (env fallback)
  - 404: NotFound: Key outside the allow-list
*/
func (handler *Handler) unset(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.configService.Unset(request.Context(), key, claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setting)
}

/*
Status summarizes the configuration surface without exposing any values.

GET /api/v1/config/status

Response:
  - 200: Status: Effective provider plus per-key provenance
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	status, err := handler.configService.Status(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}
