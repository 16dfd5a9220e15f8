// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity implements the external OAuth2 identity exchange.

It converts a short-lived authorization code (delivered via the login
callback) into a verified external identity by talking to the provider's
token and userinfo endpoints.

Architecture:

  - Exchanger: Orchestrates the two-leg code exchange over plain HTTP.
  - Identity: The minimal provider-agnostic identity projection.
  - Errors: Every upstream failure collapses to UPSTREAM_AUTH_ERROR so the
    client never learns provider internals.

The package holds NO session state; it is a pure outbound adapter consumed
by the auth service during login.
*/
package identity

import "context"

// Identity is the provider-agnostic projection of an external account.
type Identity struct {
	// ID is the provider's stable numeric account identifier (snowflake).
	ID string `json:"id"`

	// Username is the provider-side display handle at exchange time.
	Username string `json:"username"`

	// Avatar is the provider's avatar hash, empty when unset.
	Avatar string `json:"avatar"`
}

// Exchanger converts an authorization code into a verified [Identity].
type Exchanger interface {
	// Exchange performs the full code→token→userinfo round trip.
	//
	// # Returns
	//   - *Identity: Verified external identity.
	//   - error: apperr.UpstreamAuth for any provider-side failure.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
