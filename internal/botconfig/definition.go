// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package botconfig implements operator-editable runtime configuration.

A fixed allow-list of keys can be overridden at runtime through the /config
endpoints; anything not on the list stays environment-only. Stored overrides
win over environment values, and sensitive values are masked for everyone
below superadmin.

Architecture:

  - Definition: The allow-list entry (env fallback, sensitivity).
  - Repository: Abstracted PostgreSQL storage for overrides.
  - Service: Precedence (store → env), masking, and audit wiring.
  - Handler: Admin-gated HTTP surface (/config).
*/
package botconfig

import "github.com/taibuivan/renkei/internal/platform/config"

// Definition describes one allow-listed runtime key.
type Definition struct {
	// Key is the public configuration key name.
	Key string

	// EnvValue is the environment-derived fallback at process start.
	EnvValue string

	// Sensitive marks values that must be masked below superadmin.
	Sensitive bool
}

// Definitions builds the allow-list from the loaded environment.
//
// The list is the complete mutable surface: a key absent here cannot be
// read or written through the /config API at all.
func Definitions(cfg *config.Config) map[string]Definition {
	defs := []Definition{
		{Key: "ai_provider", EnvValue: cfg.AIProvider},
		{Key: "system_prompt", EnvValue: cfg.SystemPrompt},
		{Key: "openai_model", EnvValue: cfg.OpenAIModel},
		{Key: "anthropic_model", EnvValue: cfg.AnthropicModel},
		{Key: "mistral_model", EnvValue: cfg.MistralModel},
		{Key: "openai_api_key", EnvValue: cfg.OpenAIAPIKey, Sensitive: true},
		{Key: "anthropic_api_key", EnvValue: cfg.AnthropicAPIKey, Sensitive: true},
		{Key: "mistral_api_key", EnvValue: cfg.MistralAPIKey, Sensitive: true},
	}

	byKey := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byKey[def.Key] = def
	}
	return byKey
}

// Apply folds stored overrides into the loaded environment configuration.
//
// # Usage
//
// Called once at startup, before the model provider is constructed, so an
// operator's stored provider selection survives restarts. Override writes
// made while the process is running take effect on the next restart.
func Apply(cfg *config.Config, overrides map[string]string) {
	for key, value := range overrides {
		switch key {
		case "ai_provider":
			cfg.AIProvider = value
		case "system_prompt":
			cfg.SystemPrompt = value
		case "openai_model":
			cfg.OpenAIModel = value
		case "anthropic_model":
			cfg.AnthropicModel = value
		case "mistral_model":
			cfg.MistralModel = value
		case "openai_api_key":
			cfg.OpenAIAPIKey = value
		case "anthropic_api_key":
			cfg.AnthropicAPIKey = value
		case "mistral_api_key":
			cfg.MistralAPIKey = value
		}
	}
}
