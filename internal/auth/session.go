// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the session and credential lifecycle of the gateway.

It orchestrates the full journey from OAuth2 callback to revoked session:
identity exchange, role resolution, credential issuance, refresh rotation,
and logout.

Architecture:

  - Service: Orchestrates business logic (Login, Refresh, Logout).
  - Repository: Abstracted PostgreSQL storage for refresh sessions.
  - Security: HS256 access credentials plus hashed opaque refresh secrets.

A refresh secret is stored only as its SHA-256 digest; the clear value exists
exactly once, in the Set-Cookie header of the response that minted it.
*/
package auth

import "time"

// # Token Sizing

const (
	// RefreshTokenLength is the entropy (bytes) of an opaque refresh secret.
	RefreshTokenLength = 32

	// CsrfTokenLength is the entropy (bytes) of the CSRF pair value.
	CsrfTokenLength = 32
)

// # Entities

// Session is one tracked refresh credential.
//
// The clear refresh secret never appears here; TokenHash is its SHA-256
// digest and is the only lookup key.
type Session struct {
	// ID is a time-sortable UUIDv7 primary key.
	ID string `json:"id"`

	// Subject is the external identity id this session belongs to.
	Subject string `json:"subject"`

	// Username is the identity's handle at issuance time.
	Username string `json:"username"`

	// Avatar is the identity's avatar hash at issuance time.
	Avatar string `json:"avatar"`

	// TokenHash is the hex SHA-256 digest of the refresh secret.
	TokenHash string `json:"-"`

	// UserAgent captures the issuing client for optional binding checks.
	UserAgent string `json:"user_agent"`

	// IPAddress captures the issuing address for optional binding checks.
	IPAddress string `json:"ip_address"`

	// ExpiresAt is the hard lifetime bound; no rotation can extend it past
	// its own window.
	ExpiresAt time.Time `json:"expires_at"`

	// IsRevoked marks a consumed or invalidated session.
	IsRevoked bool `json:"is_revoked"`

	// CreatedAt is the issuance time.
	CreatedAt time.Time `json:"created_at"`
}
