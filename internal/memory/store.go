// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package memory implements the context-memory store of the gateway.

It keeps two namespaces of short free-text values: per-user context (notes
the bot should remember about one person) and bot-level shared context
(facts every conversation can draw on). The same store also carries each
user's rolling conversation history for the /ask flow.

Architecture:

  - Store: Minimal expiring KV contract.
  - RedisStore: Production implementation over go-redis.
  - InMemoryStore: Mutex-guarded map for development and tests.
  - Service: Namespacing, conversation plumbing, and value bounds.

Redis is optional at deployment time; when REDIS_URL is unset the gateway
falls back to the in-process store and loses context on restart.
*/
package memory

import (
	"context"
	"time"
)

// Store is the minimal expiring key-value contract.
type Store interface {
	// Get returns the value for key, or apperr.NotFound when absent/expired.
	Get(ctx context.Context, key string) (string, error)

	// Set writes the value. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
