// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package llm implements the model-provider adapters and the /ask use case.

One [Completer] interface fronts three wire-incompatible provider APIs
(OpenAI, Anthropic, Mistral); configuration selects exactly one at startup.

Architecture:

  - Completer: Single-method completion contract over []Message.
  - Providers: Thin HTTP adapters, one file per upstream API shape.
  - Service: Conversation-context plumbing, metrics, and the apologetic
    fallback reply when the upstream is down.

Provider API keys never leave this package unmasked; MaskAPIKey is the only
sanctioned way to surface one in logs or configuration views.
*/
package llm

import (
	"context"
	"strings"
)

// # Conversation Types

// Message is one turn of a conversation in provider-neutral form.
type Message struct {
	// Role is "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the turn's text.
	Content string `json:"content"`
}

// Completer produces one assistant reply for a conversation.
type Completer interface {
	// Complete returns the assistant's reply text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Name identifies the provider for metrics and logging.
	Name() string
}

// # Key Masking

// MaskAPIKey hides all but the first and last four characters of a key.
//
// Short keys are fully masked: revealing eight characters of a ten-character
// secret is not masking.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
