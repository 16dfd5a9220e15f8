// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/renkei/internal/platform/constants"
)

const (
	// MaxValueLength bounds one stored context value in bytes.
	MaxValueLength = 4000

	// conversationKey is the reserved per-user key for rolling chat history.
	conversationKey = "conversation"

	// conversationTTL lets stale chat history age out on its own.
	conversationTTL = 24 * time.Hour
)

// Service namespaces the raw [Store] into user and bot context, and provides
// the rolling-conversation plumbing consumed by the ask flow.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a memory [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// userKey namespaces a key under one external identity.
func userKey(userID, key string) string {
	return constants.RedisPrefixUserContext + userID + ":" + key
}

// botKey namespaces a bot-level shared key.
func botKey(key string) string {
	return constants.RedisPrefixBotContext + key
}

// # User Context

// GetUserValue returns one of the user's context values.
func (service *Service) GetUserValue(ctx context.Context, userID, key string) (string, error) {
	return service.store.Get(ctx, userKey(userID, key))
}

// SetUserValue writes one of the user's context values (no expiry).
func (service *Service) SetUserValue(ctx context.Context, userID, key, value string) error {
	return service.store.Set(ctx, userKey(userID, key), value, 0)
}

// DeleteUserValue removes one of the user's context values.
func (service *Service) DeleteUserValue(ctx context.Context, userID, key string) error {
	return service.store.Delete(ctx, userKey(userID, key))
}

// # Bot Context

// GetBotValue returns one bot-level shared value.
func (service *Service) GetBotValue(ctx context.Context, key string) (string, error) {
	return service.store.Get(ctx, botKey(key))
}

// SetBotValue writes one bot-level shared value (no expiry).
func (service *Service) SetBotValue(ctx context.Context, key, value string) error {
	return service.store.Set(ctx, botKey(key), value, 0)
}

// DeleteBotValue removes one bot-level shared value.
func (service *Service) DeleteBotValue(ctx context.Context, key string) error {
	return service.store.Delete(ctx, botKey(key))
}

// # Conversation Plumbing

// ConversationContext returns the user's rolling chat history, empty when
// absent or unreadable. The ask flow must work without history.
func (service *Service) ConversationContext(ctx context.Context, userID string) string {
	history, err := service.store.Get(ctx, userKey(userID, conversationKey))
	if err != nil {
		return ""
	}
	return history
}

// RememberExchange appends one question/answer pair to the rolling history,
// truncating from the front to stay within [MaxValueLength]. Write failures
// are logged and swallowed: losing context must not fail the reply.
func (service *Service) RememberExchange(ctx context.Context, userID, question, answer string) {
	history := service.ConversationContext(ctx, userID)
	history += "Q: " + question + "\nA: " + answer + "\n"

	// Keep the tail: the most recent turns matter most.
	if len(history) > MaxValueLength {
		history = history[len(history)-MaxValueLength:]
	}

	if err := service.store.Set(ctx, userKey(userID, conversationKey), history, conversationTTL); err != nil {
		service.logger.WarnContext(ctx, "conversation_context_write_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}
