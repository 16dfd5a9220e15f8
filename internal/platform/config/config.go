// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, OAuth) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Renkei gateway.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Optional: when empty, the context-memory store
	// falls back to a mutex-guarded in-process map (development only).
	RedisURL string `env:"REDIS_URL"`

	// Session signing and lifetimes
	JWTSecret          string `env:"JWT_SECRET,required"`
	AccessTokenMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`
	RefreshTokenDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS"   envDefault:"14"`

	// BindRefreshToClient enforces IP/User-Agent matching on refresh lookups.
	BindRefreshToClient bool `env:"BIND_REFRESH_TO_CLIENT" envDefault:"false"`

	// External OAuth2 identity provider (Discord-shaped)
	OAuthClientID     string `env:"OAUTH_CLIENT_ID,required"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET,required"`
	OAuthRedirectURI  string `env:"OAUTH_REDIRECT_URI" envDefault:"http://localhost:3000/auth/callback"`
	OAuthAuthorizeURL string `env:"OAUTH_AUTHORIZE_URL" envDefault:"https://discord.com/api/oauth2/authorize"`
	OAuthTokenURL     string `env:"OAUTH_TOKEN_URL"     envDefault:"https://discord.com/api/oauth2/token"`
	OAuthUserInfoURL  string `env:"OAUTH_USERINFO_URL"  envDefault:"https://discord.com/api/users/@me"`

	// DashboardRoles are the roles admitted through the login callback.
	// A resolved role outside this set is rejected with NO_ROLE_ASSIGNED /
	// INSUFFICIENT_ROLE before any credential is issued.
	DashboardRoles []string `env:"DASHBOARD_ROLES" envSeparator:"," envDefault:"admin,superadmin"`

	// PostLoginURL is the default redirect target after a successful callback.
	PostLoginURL string `env:"POST_LOGIN_URL" envDefault:"/dashboard"`

	// FallbackRoles is the static identity→role override table consulted only
	// when the roles store is unreachable. Format: "id=role,id=role".
	FallbackRoles map[string]string `env:"FALLBACK_ROLES" envSeparator:"," envKeyValSeparator:"="`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Model provider selection ("openai", "anthropic", "mistral")
	AIProvider string `env:"AI_PROVIDER" envDefault:"openai"`

	// System prompt prepended to every completion request.
	SystemPrompt string `env:"SYSTEM_PROMPT" envDefault:"You are Renkei, a concise and helpful assistant."`

	// Per-provider credentials and model names. Only the selected provider's
	// key is required; validation happens at wiring time.
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	MistralAPIKey   string `env:"MISTRAL_API_KEY"`
	MistralModel    string `env:"MISTRAL_MODEL"   envDefault:"mistral-small-latest"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AccessTokenTTL returns the configured access-credential lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh-credential lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

// AuthorizeURL assembles the provider redirect URL for the login endpoint.
func (c *Config) AuthorizeURL() string {
	var b strings.Builder
	b.WriteString(c.OAuthAuthorizeURL)
	b.WriteString("?client_id=")
	b.WriteString(c.OAuthClientID)
	b.WriteString("&redirect_uri=")
	b.WriteString(c.OAuthRedirectURI)
	b.WriteString("&response_type=code&scope=identify")
	return b.String()
}
