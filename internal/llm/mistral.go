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

const defaultMistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// MistralProvider implements [Completer] against Mistral's chat API, which
// shares the Chat Completions wire shape.
type MistralProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewMistralProvider constructs a [MistralProvider].
func NewMistralProvider(apiKey, model string) *MistralProvider {
	return &MistralProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultMistralEndpoint,
		httpClient: &http.Client{
			Timeout: constants.ProviderCompletionTimeout,
		},
	}
}

// Name implements [Completer].
func (provider *MistralProvider) Name() string { return "mistral" }

// Complete implements [Completer] over the Chat Completions wire format.
func (provider *MistralProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:    provider.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("llm: mistral request encoding failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: mistral request build failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+provider.apiKey)

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("llm: mistral request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("llm: mistral returned %d: %s", response.StatusCode, string(body))
	}

	var decoded openAIResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: mistral response decoding failed: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: mistral returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
