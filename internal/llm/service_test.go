// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/audit"
)

// # Test Doubles

type fakeCompleter struct {
	reply    string
	err      error
	received []Message
}

func (completer *fakeCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	completer.received = messages
	if completer.err != nil {
		return "", completer.err
	}
	return completer.reply, nil
}

func (completer *fakeCompleter) Name() string { return "fake" }

type fakeConversations struct {
	history   string
	exchanges [][2]string
}

func (store *fakeConversations) ConversationContext(context.Context, string) string {
	return store.history
}

func (store *fakeConversations) RememberExchange(_ context.Context, _ string, question, answer string) {
	store.exchanges = append(store.exchanges, [2]string{question, answer})
}

type fakeAuditRepo struct {
	events []audit.Event
}

func (repo *fakeAuditRepo) Insert(_ context.Context, event *audit.Event) error {
	repo.events = append(repo.events, *event)
	return nil
}

func (repo *fakeAuditRepo) List(context.Context, audit.ListFilter, int, int) ([]audit.Event, int, error) {
	return nil, 0, nil
}

type fakeInstrumentation struct {
	outcomes []string
}

func (metrics *fakeInstrumentation) ProviderRequest(_, outcome string, _ time.Duration) {
	metrics.outcomes = append(metrics.outcomes, outcome)
}

func newAskService(completer Completer, conversations ConversationStore) (*Service, *fakeAuditRepo, *fakeInstrumentation) {
	auditRepo := &fakeAuditRepo{}
	instrumentation := &fakeInstrumentation{}
	service := NewService(
		completer,
		conversations,
		audit.NewService(auditRepo, slog.Default()),
		instrumentation,
		"You are Renkei.",
		slog.Default(),
	)
	return service, auditRepo, instrumentation
}

// # Ask Flow

func TestAsk_BuildsConversationAndRecordsExchange(t *testing.T) {
	completer := &fakeCompleter{reply: "42."}
	conversations := &fakeConversations{history: "Q: what?\nA: that."}
	service, auditRepo, instrumentation := newAskService(completer, conversations)

	reply := service.Ask(context.Background(), "100", "operator", "What is the answer?")

	assert.Equal(t, "42.", reply)

	// System prompt, rolling context, then the new message.
	require.Len(t, completer.received, 3)
	assert.Equal(t, "system", completer.received[0].Role)
	assert.Contains(t, completer.received[1].Content, "Q: what?")
	assert.Equal(t, Message{Role: "user", Content: "What is the answer?"}, completer.received[2])

	require.Len(t, conversations.exchanges, 1)
	assert.Equal(t, [2]string{"What is the answer?", "42."}, conversations.exchanges[0])

	assert.Equal(t, []string{"success"}, instrumentation.outcomes)
	require.Len(t, auditRepo.events, 1)
	assert.Equal(t, audit.ActionAsk, auditRepo.events[0].Action)
}

func TestAsk_ProviderFailureDegradesToFallback(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream 500")}
	conversations := &fakeConversations{}
	service, auditRepo, instrumentation := newAskService(completer, conversations)

	reply := service.Ask(context.Background(), "100", "operator", "Hello?")

	assert.Equal(t, FallbackReply, reply)
	assert.Empty(t, conversations.exchanges)
	assert.Empty(t, auditRepo.events)
	assert.Equal(t, []string{"error"}, instrumentation.outcomes)
}

// # Provider Adapters

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer sk-test", request.Header.Get("Authorization"))

		var decoded openAIRequest
		require.NoError(t, json.NewDecoder(request.Body).Decode(&decoded))
		assert.Equal(t, "gpt-4o-mini", decoded.Model)

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hello back"}},
			},
		})
	}))
	t.Cleanup(server.Close)

	provider := NewOpenAIProvider("sk-test", "gpt-4o-mini")
	provider.endpoint = server.URL

	reply, err := provider.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})

	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestAnthropicProvider_SplitsSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "sk-ant", request.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, request.Header.Get("anthropic-version"))

		var decoded anthropicRequest
		require.NoError(t, json.NewDecoder(request.Body).Decode(&decoded))
		assert.Equal(t, "be brief", decoded.System)
		require.Len(t, decoded.Messages, 1)
		assert.Equal(t, "user", decoded.Messages[0].Role)

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	}))
	t.Cleanup(server.Close)

	provider := NewAnthropicProvider("sk-ant", "claude-3-5-haiku-latest")
	provider.endpoint = server.URL

	reply, err := provider.Complete(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestOpenAIProvider_UpstreamErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	provider := NewOpenAIProvider("sk-test", "gpt-4o-mini")
	provider.endpoint = server.URL

	_, err := provider.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})

	assert.Error(t, err)
}

// # Key Masking

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", MaskAPIKey(""))
	assert.Equal(t, "**********", MaskAPIKey("sk-short-1"))
	assert.Equal(t, "sk-p************6789", MaskAPIKey("sk-proj-123456786789"))
}
