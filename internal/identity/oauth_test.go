// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/platform/apperr"
)

// newProvider spins up a fake OAuth provider with both endpoint legs.
func newProvider(t *testing.T, tokenStatus int, userInfoStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/token", func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		assert.Equal(t, "authorization_code", request.PostForm.Get("grant_type"))
		assert.Equal(t, "client-123", request.PostForm.Get("client_id"))

		writer.WriteHeader(tokenStatus)
		if tokenStatus == http.StatusOK {
			_ = json.NewEncoder(writer).Encode(map[string]string{
				"access_token": "provider-access-token",
				"token_type":   "Bearer",
			})
		}
	})

	mux.HandleFunc("/users/@me", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer provider-access-token", request.Header.Get("Authorization"))

		writer.WriteHeader(userInfoStatus)
		if userInfoStatus == http.StatusOK {
			_ = json.NewEncoder(writer).Encode(map[string]string{
				"id":       "111222333444555666",
				"username": "renkei_user",
				"avatar":   "a1b2c3",
			})
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newExchanger(server *httptest.Server) *OAuthExchanger {
	return NewOAuthExchanger(OAuthConfig{
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		RedirectURI:  "http://localhost:3000/auth/callback",
		TokenURL:     server.URL + "/oauth2/token",
		UserInfoURL:  server.URL + "/users/@me",
	})
}

func TestExchange_Success(t *testing.T) {
	server := newProvider(t, http.StatusOK, http.StatusOK)
	exchanger := newExchanger(server)

	externalIdentity, err := exchanger.Exchange(context.Background(), "auth-code")

	require.NoError(t, err)
	assert.Equal(t, "111222333444555666", externalIdentity.ID)
	assert.Equal(t, "renkei_user", externalIdentity.Username)
	assert.Equal(t, "a1b2c3", externalIdentity.Avatar)
}

func TestExchange_TokenEndpointRejects(t *testing.T) {
	server := newProvider(t, http.StatusBadRequest, http.StatusOK)
	exchanger := newExchanger(server)

	externalIdentity, err := exchanger.Exchange(context.Background(), "used-code")

	require.Error(t, err)
	assert.Nil(t, externalIdentity)
	assert.Equal(t, "UPSTREAM_AUTH_ERROR", apperr.CodeOf(err))
}

func TestExchange_UserInfoEndpointFails(t *testing.T) {
	server := newProvider(t, http.StatusOK, http.StatusInternalServerError)
	exchanger := newExchanger(server)

	externalIdentity, err := exchanger.Exchange(context.Background(), "auth-code")

	require.Error(t, err)
	assert.Nil(t, externalIdentity)
	assert.Equal(t, "UPSTREAM_AUTH_ERROR", apperr.CodeOf(err))
}

func TestExchange_IncompleteIdentityRejected(t *testing.T) {
	tests := []struct {
		name     string
		userInfo map[string]string
	}{
		{"missing_id", map[string]string{"username": "renkei_user"}},
		{"missing_username", map[string]string{"id": "111222333444555666"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/oauth2/token", func(writer http.ResponseWriter, request *http.Request) {
				_ = json.NewEncoder(writer).Encode(map[string]string{"access_token": "provider-access-token"})
			})
			mux.HandleFunc("/users/@me", func(writer http.ResponseWriter, request *http.Request) {
				_ = json.NewEncoder(writer).Encode(tt.userInfo)
			})
			server := httptest.NewServer(mux)
			t.Cleanup(server.Close)

			exchanger := NewOAuthExchanger(OAuthConfig{
				TokenURL:    server.URL + "/oauth2/token",
				UserInfoURL: server.URL + "/users/@me",
			})

			externalIdentity, err := exchanger.Exchange(context.Background(), "auth-code")

			require.Error(t, err)
			assert.Nil(t, externalIdentity)
			assert.Equal(t, "UPSTREAM_AUTH_ERROR", apperr.CodeOf(err))
		})
	}
}

func TestExchange_EmptyAccessToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]string{"access_token": ""})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	exchanger := NewOAuthExchanger(OAuthConfig{
		TokenURL:    server.URL + "/oauth2/token",
		UserInfoURL: server.URL + "/users/@me",
	})

	_, err := exchanger.Exchange(context.Background(), "auth-code")

	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_AUTH_ERROR", apperr.CodeOf(err))
}
