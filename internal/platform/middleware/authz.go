// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the Renkei gateway.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/constants"
	"github.com/taibuivan/renkei/internal/platform/ctxutil"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access credentials.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// DenialAuditor records insufficient-role rejections.
//
// Only INSUFFICIENT_ROLE is a genuine permission violation worth a distinct
// audit event; the other rejection reasons merely indicate absence of a login.
type DenialAuditor interface {
	RoleDenied(ctx context.Context, userID, username, path string)
}

// Authenticate extracts and verifies the access credential from the request.
//
// # Flow
//  1. Look for the access-token cookie, then 'Authorization: Bearer <token>'.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, verify the JWT via [TokenVerifier].
//  4. Inject an [*ctxutil.AuthResult] into the context for downstream use.
//
// A presented-but-unusable credential does NOT abort the request here: the
// typed denial reason travels in the context so that role-gated endpoints can
// reject with the precise code while open endpoints (e.g. /auth/me) can
// degrade to an anonymous response.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr := extractCredential(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if tokenStr == "" {
				ctx := ctxutil.WithAuth(request.Context(), &ctxutil.AuthResult{})
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 2. Credential Verification ────────────────────────────────────
			result := &ctxutil.AuthResult{}
			claims, err := verifier.VerifyToken(tokenStr)
			switch {
			case err == nil:
				result.Claims = claims
			case errors.Is(err, sec.ErrTokenExpired):
				result.Denial = "EXPIRED_CREDENTIAL"
			default:
				result.Denial = "MALFORMED_CREDENTIAL"
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuth(request.Context(), result)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, denialError(ctxutil.GetAuth(request.Context())))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAnyRole blocks requests whose verified role is outside the allowed set.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check the authentication outcome (implies AuthN, with precise reason).
//  2. Check set-membership of the user's role against the allowed roles.
//  3. If outside the set, abort with HTTP 403 and record the audit event.
func RequireAnyRole(auditor DenialAuditor, allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, denialError(ctxutil.GetAuth(request.Context())))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.ParseRole(claims.Role).In(allowed...) {
				if auditor != nil {
					auditor.RoleDenied(request.Context(), claims.UserID, claims.Username, request.URL.Path)
				}
				respond.Error(writer, request, apperr.InsufficientRole())
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the verified [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous or presented an unusable credential.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}

// extractCredential pulls the raw JWT from the cookie or bearer header.
func extractCredential(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// denialError maps an authentication outcome onto the precise AppError.
func denialError(result *ctxutil.AuthResult) *apperr.AppError {
	if result == nil {
		return apperr.NoCredential()
	}
	switch result.Denial {
	case "EXPIRED_CREDENTIAL":
		return apperr.ExpiredCredential()
	case "MALFORMED_CREDENTIAL":
		return apperr.MalformedCredential()
	default:
		return apperr.NoCredential()
	}
}
