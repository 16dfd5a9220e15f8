// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/renkei/internal/platform/request"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/validate"
)

// maxKeyLength bounds one context key name.
const maxKeyLength = 128

// Handler implements the context-memory HTTP endpoints.
//
// # Scope
//
// User context is strictly self-scoped: the acting identity from the access
// claims is the only namespace a caller can touch. Bot context is shared and
// therefore admin-gated by the parent router.
type Handler struct {
	memoryService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{memoryService: service}
}

// UserContextRoutes returns the self-scoped user-context routes.
//
// # Endpoints
//   - GET    /{key} : Reads one of the caller's context values.
//   - PUT    /{key} : Writes one of the caller's context values.
//   - DELETE /{key} : Removes one of the caller's context values.
func (handler *Handler) UserContextRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{key}", handler.getUserValue)
	router.Put("/{key}", handler.setUserValue)
	router.Delete("/{key}", handler.deleteUserValue)

	return router
}

// BotContextRoutes returns the shared bot-context routes.
//
// # Endpoints
//   - GET    /{key} : Reads one shared value.
//   - PUT    /{key} : Writes one shared value.
//   - DELETE /{key} : Removes one shared value.
func (handler *Handler) BotContextRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{key}", handler.getBotValue)
	router.Put("/{key}", handler.setBotValue)
	router.Delete("/{key}", handler.deleteBotValue)

	return router
}

// # Payloads

type setValueRequest struct {
	Value string `json:"value"`
}

type valueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// validKey runs the shared key-name rules.
func validKey(key string) error {
	validator := &validate.Validator{}
	validator.Required("key", key).MaxLen("key", key, maxKeyLength)
	return validator.Err()
}

// decodeValue decodes and bounds the value payload.
func decodeValue(request *http.Request) (string, error) {
	var input setValueRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return "", validate.ErrInvalidJSON
	}

	validator := &validate.Validator{}
	validator.Required("value", input.Value).MaxLen("value", input.Value, MaxValueLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	return input.Value, nil
}

// # User Context Handlers

func (handler *Handler) getUserValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	value, err := handler.memoryService.GetUserValue(request.Context(), userID, key)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, valueResponse{Key: key, Value: value})
}

func (handler *Handler) setUserValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	value, err := decodeValue(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memoryService.SetUserValue(request.Context(), userID, key, value); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, valueResponse{Key: key, Value: value})
}

func (handler *Handler) deleteUserValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memoryService.DeleteUserValue(request.Context(), userID, key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Bot Context Handlers

func (handler *Handler) getBotValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	value, err := handler.memoryService.GetBotValue(request.Context(), key)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, valueResponse{Key: key, Value: value})
}

func (handler *Handler) setBotValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	value, err := decodeValue(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memoryService.SetBotValue(request.Context(), key, value); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, valueResponse{Key: key, Value: value})
}

func (handler *Handler) deleteBotValue(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	if err := validKey(key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memoryService.DeleteBotValue(request.Context(), key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
