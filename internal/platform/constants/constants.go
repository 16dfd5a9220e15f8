// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire gateway.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and cookie configuration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "renkei-gateway"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Generous because LLM completions can take tens of seconds.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 45 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Outbound Timing

const (
	// IdentityExchangeTimeout bounds each leg of the OAuth code exchange.
	IdentityExchangeTimeout = 10 * time.Second

	// ProviderCompletionTimeout bounds a single LLM completion call.
	ProviderCompletionTimeout = 30 * time.Second

	// AuditRecordTimeout bounds the best-effort audit write so it can never
	// stall the primary response path.
	AuditRecordTimeout = 2 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "renkei-gateway"

	// AccessTokenCookieName is the HTTP-only cookie carrying the access credential.
	AccessTokenCookieName = "rk_dash_token"

	// RefreshTokenCookieName is the HTTP-only cookie carrying the refresh secret.
	RefreshTokenCookieName = "rk_dash_refresh"

	// CsrfCookieName is the script-readable cookie carrying the CSRF token.
	// The client must echo its value back via CsrfHeaderName or form field.
	CsrfCookieName = "rk_dash_csrf"

	// CsrfHeaderName is the header the client uses to echo the CSRF token.
	CsrfHeaderName = "X-CSRF-Token"

	// CsrfFormField is the form field alternative to CsrfHeaderName.
	CsrfFormField = "csrf_token"

	// PostLoginCookieName holds the post-login redirect target during the
	// OAuth round trip.
	PostLoginCookieName = "rk_dash_postlogin"

	// PostLoginCookieTTL keeps the redirect cookie short-lived.
	PostLoginCookieTTL = 10 * time.Minute

	// AuthCookiePath scopes all session cookies to the whole dashboard.
	AuthCookiePath = "/"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldReply   = "reply"
	FieldRole    = "role"
	FieldLogs    = "logs"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixUserContext = "memory:user:"
	RedisPrefixBotContext  = "memory:bot:"
)
