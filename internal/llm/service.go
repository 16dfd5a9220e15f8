// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/platform/constants"
)

// FallbackReply is returned when the upstream provider fails.
//
// The /ask surface never propagates provider errors to the client: a broken
// upstream produces an apologetic reply, not a 5xx.
const FallbackReply = "Sorry, I'm having trouble thinking right now. Please try again in a moment."

// ConversationStore supplies and persists per-user rolling context.
type ConversationStore interface {
	// ConversationContext returns the user's rolling context, empty when none.
	ConversationContext(ctx context.Context, userID string) string

	// RememberExchange appends one question/answer pair to the rolling context.
	RememberExchange(ctx context.Context, userID, question, answer string)
}

// Instrumentation receives provider-call counters.
type Instrumentation interface {
	ProviderRequest(provider, outcome string, elapsed time.Duration)
}

// Service implements the /ask use case.
type Service struct {
	completer       Completer
	conversations   ConversationStore
	auditService    *audit.Service
	instrumentation Instrumentation
	systemPrompt    string
	logger          *slog.Logger
}

// NewService constructs an ask [Service].
func NewService(
	completer Completer,
	conversations ConversationStore,
	auditService *audit.Service,
	instrumentation Instrumentation,
	systemPrompt string,
	logger *slog.Logger,
) *Service {
	return &Service{
		completer:       completer,
		conversations:   conversations,
		auditService:    auditService,
		instrumentation: instrumentation,
		systemPrompt:    systemPrompt,
		logger:          logger,
	}
}

/*
Ask produces one assistant reply for a user message.

Description: Builds the conversation from the system prompt, the user's
rolling context, and the new message; calls the configured provider under
ProviderCompletionTimeout; and records the exchange. Provider failures
degrade to [FallbackReply] instead of erroring.

Parameters:
  - ctx: context.Context
  - userID: string (acting identity)
  - username: string (for the audit trail)
  - message: string (the user's question)

Returns:
  - string: The assistant reply, or [FallbackReply] on provider failure
*/
func (service *Service) Ask(ctx context.Context, userID, username, message string) string {

	// 1. Assemble the conversation
	messages := []Message{{Role: "system", Content: service.systemPrompt}}

	if history := service.conversations.ConversationContext(ctx, userID); history != "" {
		messages = append(messages, Message{
			Role:    "system",
			Content: "Previous conversation context:\n" + history,
		})
	}

	messages = append(messages, Message{Role: "user", Content: message})

	// 2. Call the provider under its own deadline
	completionCtx, cancel := context.WithTimeout(ctx, constants.ProviderCompletionTimeout)
	defer cancel()

	startTime := time.Now()
	reply, err := service.completer.Complete(completionCtx, messages)
	elapsed := time.Since(startTime)

	if err != nil {
		service.instrumentation.ProviderRequest(service.completer.Name(), "error", elapsed)
		service.logger.ErrorContext(ctx, "provider_completion_failed",
			slog.String("provider", service.completer.Name()),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return FallbackReply
	}

	service.instrumentation.ProviderRequest(service.completer.Name(), "success", elapsed)

	// 3. Persist the exchange and leave an audit trace
	service.conversations.RememberExchange(ctx, userID, message, reply)

	service.auditService.Record(ctx, &audit.Event{
		Action:   audit.ActionAsk,
		UserID:   userID,
		Username: username,
		Detail:   service.completer.Name(),
	})

	return reply
}
