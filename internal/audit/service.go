// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"

	"github.com/taibuivan/renkei/internal/platform/constants"
	"github.com/taibuivan/renkei/pkg/uuidv7"
)

// Service provides best-effort, time-bounded audit recording.
//
// # Failure Policy
//
// Record detaches from the request's cancellation and bounds the write with
// AuditRecordTimeout. A failed write is logged server-side and otherwise
// swallowed: the audit trail must never turn a successful operation into a
// failed response.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs an audit [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

/*
Record appends one event to the trail, best-effort.

Description: Assigns a time-sortable id, detaches from request cancellation
(the event must survive even if the client disconnects mid-response), and
bounds the write so it can never stall the primary path.

Parameters:
  - ctx: context.Context (values are preserved; cancellation is not)
  - event: *Event
*/
func (service *Service) Record(ctx context.Context, event *Event) {
	if event.ID == "" {
		event.ID = uuidv7.New()
	}

	// Detach from the caller's deadline but keep its values (request id, logger).
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.AuditRecordTimeout)
	defer cancel()

	if err := service.repository.Insert(recordCtx, event); err != nil {
		service.logger.ErrorContext(ctx, "audit_record_failed",
			slog.String("action", event.Action),
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
	}
}

// RoleDenied records an INSUFFICIENT_ROLE rejection from the authorization gate.
//
// It satisfies the middleware's DenialAuditor contract.
func (service *Service) RoleDenied(ctx context.Context, userID, username, path string) {
	service.Record(ctx, &Event{
		Action:   ActionPermissionDenied,
		UserID:   userID,
		Username: username,
		Detail:   path,
	})
}

/*
List returns a page of audit events and the total match count.

Parameters:
  - ctx: context.Context
  - filter: ListFilter
  - limit: int
  - offset: int

Returns:
  - []Event: One page of matching events (newest first)
  - int: Total number of matching events
  - error: Storage failures
*/
func (service *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Event, int, error) {
	return service.repository.List(ctx, filter, limit, offset)
}
