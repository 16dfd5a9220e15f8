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

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements [Completer] against the Chat Completions API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIProvider constructs an [OpenAIProvider].
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultOpenAIEndpoint,
		httpClient: &http.Client{
			Timeout: constants.ProviderCompletionTimeout,
		},
	}
}

// Name implements [Completer].
func (provider *OpenAIProvider) Name() string { return "openai" }

type openAIRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete implements [Completer] over the Chat Completions wire format.
func (provider *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:    provider.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("llm: openai request encoding failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: openai request build failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+provider.apiKey)

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("llm: openai request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("llm: openai returned %d: %s", response.StatusCode, string(body))
	}

	var decoded openAIResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: openai response decoding failed: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: openai returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
