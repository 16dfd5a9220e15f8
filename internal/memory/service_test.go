// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/platform/apperr"
)

func TestInMemoryStore_SetGetDelete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Delete(ctx, "k"))

	_, err = store.Get(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

func TestInMemoryStore_LazyExpiry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "shared", "value", 0)
			_, _ = store.Get(ctx, "shared")
			_ = store.Delete(ctx, "other")
		}()
	}
	wg.Wait()
}

func TestService_NamespacesUserAndBotKeys(t *testing.T) {
	store := NewInMemoryStore()
	service := NewService(store, slog.Default())
	ctx := context.Background()

	require.NoError(t, service.SetUserValue(ctx, "100", "tone", "formal"))
	require.NoError(t, service.SetBotValue(ctx, "tone", "casual"))

	userValue, err := service.GetUserValue(ctx, "100", "tone")
	require.NoError(t, err)
	botValue, err := service.GetBotValue(ctx, "tone")
	require.NoError(t, err)

	assert.Equal(t, "formal", userValue)
	assert.Equal(t, "casual", botValue)

	// A different user must not see the first user's value.
	_, err = service.GetUserValue(ctx, "200", "tone")
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

func TestService_ConversationRollsAndTruncates(t *testing.T) {
	store := NewInMemoryStore()
	service := NewService(store, slog.Default())
	ctx := context.Background()

	assert.Empty(t, service.ConversationContext(ctx, "100"))

	service.RememberExchange(ctx, "100", "first?", "one.")
	service.RememberExchange(ctx, "100", "second?", "two.")

	history := service.ConversationContext(ctx, "100")
	assert.Contains(t, history, "Q: first?")
	assert.Contains(t, history, "A: two.")

	// Oversized history keeps the tail.
	service.RememberExchange(ctx, "100", strings.Repeat("x", MaxValueLength), "tail-answer")
	history = service.ConversationContext(ctx, "100")
	assert.LessOrEqual(t, len(history), MaxValueLength)
	assert.Contains(t, history, "tail-answer")
}
