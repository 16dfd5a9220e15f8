// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package llm

import (
	"fmt"

	"github.com/taibuivan/renkei/internal/platform/config"
)

// NewCompleter selects and constructs the configured provider adapter.
//
// # Errors
//
// An unknown provider name or a missing API key fails fast at startup; a
// gateway that cannot complete is misconfigured, not degraded.
func NewCompleter(cfg *config.Config) (Completer, error) {
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("llm: OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil

	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY is required when AI_PROVIDER=anthropic")
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil

	case "mistral":
		if cfg.MistralAPIKey == "" {
			return nil, fmt.Errorf("llm: MISTRAL_API_KEY is required when AI_PROVIDER=mistral")
		}
		return NewMistralProvider(cfg.MistralAPIKey, cfg.MistralModel), nil

	default:
		return nil, fmt.Errorf("llm: unknown AI_PROVIDER %q (expected openai, anthropic, or mistral)", cfg.AIProvider)
	}
}
