// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/renkei/internal/platform/ctxkey"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// AuthResult captures the outcome of credential verification for one request.
//
// Exactly one of Claims or Denial is meaningful: a request either carries a
// verified identity, or a typed reason why it does not. Anonymous requests
// (no credential at all) have neither set.
type AuthResult struct {
	// Claims is the verified identity, nil when unauthenticated.
	Claims *sec.AuthClaims

	// Denial is the rejection code for a presented-but-unusable credential
	// ("EXPIRED_CREDENTIAL", "MALFORMED_CREDENTIAL"). Empty when no credential
	// was presented or verification succeeded.
	Denial string
}

// WithAuth returns a new context with the authentication outcome attached.
func WithAuth(ctx context.Context, result *AuthResult) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuth, result)
}

// GetAuth retrieves the [*AuthResult] from the context, or nil for requests
// that never passed through the authentication middleware.
func GetAuth(ctx context.Context) *AuthResult {
	result, ok := ctx.Value(ctxkey.KeyAuth).(*AuthResult)
	if !ok {
		return nil
	}
	return result
}

// GetAuthUser retrieves the verified [*sec.AuthClaims] from the context.
// Returns nil for anonymous or denied requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	result := GetAuth(ctx)
	if result == nil {
		return nil
	}
	return result.Claims
}
