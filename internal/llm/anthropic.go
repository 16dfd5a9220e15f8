// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/taibuivan/renkei/internal/platform/constants"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"

	// anthropicVersion is the pinned Messages API revision.
	anthropicVersion = "2023-06-01"

	// anthropicMaxTokens bounds the reply length.
	anthropicMaxTokens = 1024
)

// AnthropicProvider implements [Completer] against the Messages API.
//
// # Wire Differences
//
// Unlike the Chat Completions shape, the Messages API takes the system
// prompt as a top-level field and rejects "system" entries in the messages
// array, so Complete splits the conversation accordingly.
type AnthropicProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicProvider constructs an [AnthropicProvider].
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultAnthropicEndpoint,
		httpClient: &http.Client{
			Timeout: constants.ProviderCompletionTimeout,
		},
	}
}

// Name implements [Completer].
func (provider *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete implements [Completer] over the Messages wire format.
func (provider *AnthropicProvider) Complete(ctx context.Context, messages []Message) (string, error) {

	// Split the system prompt out of the conversation
	systemPrompt := ""
	conversation := make([]Message, 0, len(messages))
	for _, message := range messages {
		if message.Role == "system" {
			systemPrompt = message.Content
			continue
		}
		conversation = append(conversation, message)
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:     provider.model,
		System:    systemPrompt,
		Messages:  conversation,
		MaxTokens: anthropicMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: anthropic request encoding failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: anthropic request build failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-api-key", provider.apiKey)
	request.Header.Set("anthropic-version", anthropicVersion)

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("llm: anthropic request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("llm: anthropic returned %d: %s", response.StatusCode, string(body))
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: anthropic response decoding failed: %w", err)
	}

	for _, block := range decoded.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("llm: anthropic returned no text content")
}
