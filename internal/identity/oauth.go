// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/constants"
)

// OAuthConfig carries the provider endpoints and client credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	UserInfoURL  string
}

// OAuthExchanger implements [Exchanger] against a Discord-shaped OAuth2 provider.
//
// # Failure Policy
//
// No retries: the authorization code is single-use, so a retried exchange
// would fail anyway. Each leg is bounded by IdentityExchangeTimeout.
type OAuthExchanger struct {
	config     OAuthConfig
	httpClient *http.Client
}

// NewOAuthExchanger constructs an [OAuthExchanger] with a bounded HTTP client.
func NewOAuthExchanger(config OAuthConfig) *OAuthExchanger {
	return &OAuthExchanger{
		config: config,
		httpClient: &http.Client{
			Timeout: constants.IdentityExchangeTimeout,
		},
	}
}

// tokenResponse is the provider's token-endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

/*
Exchange performs the two-leg OAuth2 code exchange.

Description: Trades the authorization code for a provider access token, then
uses that token to fetch the account's identity projection.

Parameters:
  - ctx: context.Context
  - code: string (single-use authorization code)

Returns:
  - *Identity: Verified external identity
  - error: apperr.UpstreamAuth on any provider-side failure
*/
func (exchanger *OAuthExchanger) Exchange(ctx context.Context, code string) (*Identity, error) {

	// Leg 1: Exchange the code for a provider access token
	providerToken, err := exchanger.exchangeCode(ctx, code)
	if err != nil {
		return nil, apperr.UpstreamAuth(err)
	}

	// Leg 2: Resolve the token into the account's identity
	externalIdentity, err := exchanger.fetchIdentity(ctx, providerToken)
	if err != nil {
		return nil, apperr.UpstreamAuth(err)
	}

	return externalIdentity, nil
}

// exchangeCode posts the authorization code to the token endpoint.
func (exchanger *OAuthExchanger) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", exchanger.config.ClientID)
	form.Set("client_secret", exchanger.config.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", exchanger.config.RedirectURI)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, exchanger.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("identity: failed to build token request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := exchanger.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("identity: token request failed: %w", err)
	}
	defer response.Body.Close()

	// Provider errors carry diagnostic bodies; keep them server-side only.
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("identity: token endpoint returned %d: %s", response.StatusCode, string(body))
	}

	var payload tokenResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("identity: failed to decode token response: %w", err)
	}

	if payload.AccessToken == "" {
		return "", fmt.Errorf("identity: token endpoint returned an empty access token")
	}

	return payload.AccessToken, nil
}

// fetchIdentity resolves the provider token into the account projection.
func (exchanger *OAuthExchanger) fetchIdentity(ctx context.Context, providerToken string) (*Identity, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, exchanger.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to build userinfo request: %w", err)
	}
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+providerToken)

	response, err := exchanger.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("identity: userinfo request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("identity: userinfo endpoint returned %d: %s", response.StatusCode, string(body))
	}

	externalIdentity := &Identity{}
	if err := json.NewDecoder(response.Body).Decode(externalIdentity); err != nil {
		return nil, fmt.Errorf("identity: failed to decode userinfo response: %w", err)
	}

	// An identity without both an id and a display name is unusable for
	// session issuance and role resolution.
	if externalIdentity.ID == "" {
		return nil, fmt.Errorf("identity: userinfo response is missing the account id")
	}
	if externalIdentity.Username == "" {
		return nil, fmt.Errorf("identity: userinfo response is missing the username")
	}

	return externalIdentity, nil
}
