// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/renkei/internal/platform/apperr"
)

// InMemoryStore implements [Store] with a mutex-guarded map.
//
// # Scope
//
// Development fallback only: contents are lost on restart and never shared
// between instances. Expiry is enforced lazily on read.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewInMemoryStore creates an empty in-process [Store].
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: map[string]inMemoryEntry{}}
}

// Get implements [Store].
func (store *InMemoryStore) Get(_ context.Context, key string) (string, error) {
	store.mu.RLock()
	entry, found := store.entries[key]
	store.mu.RUnlock()

	if !found {
		return "", apperr.NotFound("Context entry")
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		store.mu.Lock()
		delete(store.entries, key)
		store.mu.Unlock()
		return "", apperr.NotFound("Context entry")
	}

	return entry.value, nil
}

// Set implements [Store].
func (store *InMemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := inMemoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	store.mu.Lock()
	store.entries[key] = entry
	store.mu.Unlock()

	return nil
}

// Delete implements [Store].
func (store *InMemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	delete(store.entries, key)
	store.mu.Unlock()

	return nil
}
