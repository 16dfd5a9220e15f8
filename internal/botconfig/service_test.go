// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package botconfig

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/config"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

type fakeRepository struct {
	overrides map[string]string
}

func (repo *fakeRepository) Get(_ context.Context, key string) (string, error) {
	if value, found := repo.overrides[key]; found {
		return value, nil
	}
	return "", apperr.NotFound("Configuration override")
}

func (repo *fakeRepository) Set(_ context.Context, key, value, _ string) error {
	repo.overrides[key] = value
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, key string) error {
	delete(repo.overrides, key)
	return nil
}

func (repo *fakeRepository) All(context.Context) (map[string]string, error) {
	return repo.overrides, nil
}

type fakeAuditRepo struct {
	events []audit.Event
}

func (repo *fakeAuditRepo) Insert(_ context.Context, event *audit.Event) error {
	repo.events = append(repo.events, *event)
	return nil
}

func (repo *fakeAuditRepo) List(context.Context, audit.ListFilter, int, int) ([]audit.Event, int, error) {
	return nil, 0, nil
}

func newTestService() (*Service, *fakeRepository, *fakeAuditRepo) {
	cfg := &config.Config{
		AIProvider:   "openai",
		SystemPrompt: "You are Renkei.",
		OpenAIModel:  "gpt-4o-mini",
		OpenAIAPIKey: "sk-proj-123456786789",
	}
	repo := &fakeRepository{overrides: map[string]string{}}
	auditRepo := &fakeAuditRepo{}
	service := NewService(repo, Definitions(cfg), audit.NewService(auditRepo, slog.Default()))
	return service, repo, auditRepo
}

var admin = &sec.AuthClaims{UserID: "100", Username: "operator", Role: "admin"}

func TestGet_EnvFallbackAndStorePrecedence(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	setting, err := service.Get(ctx, "ai_provider", sec.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "openai", setting.Value)
	assert.Equal(t, "env", setting.Source)

	repo.overrides["ai_provider"] = "mistral"

	setting, err = service.Get(ctx, "ai_provider", sec.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "mistral", setting.Value)
	assert.Equal(t, "store", setting.Source)
}

func TestGet_UnknownKeyIsRejected(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Get(context.Background(), "database_url", sec.RoleSuperadmin)

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

func TestGet_SensitiveValuesMaskedBelowSuperadmin(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	masked, err := service.Get(ctx, "openai_api_key", sec.RoleAdmin)
	require.NoError(t, err)
	assert.NotContains(t, masked.Value, "12345678")
	assert.True(t, masked.Sensitive)

	unmasked, err := service.Get(ctx, "openai_api_key", sec.RoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, "sk-proj-123456786789", unmasked.Value)
}

func TestSet_WritesOverrideAndAuditsKeyOnly(t *testing.T) {
	service, repo, auditRepo := newTestService()

	setting, err := service.Set(context.Background(), "system_prompt", "Be terse.", admin)

	require.NoError(t, err)
	assert.Equal(t, "Be terse.", setting.Value)
	assert.Equal(t, "store", setting.Source)
	assert.Equal(t, "Be terse.", repo.overrides["system_prompt"])

	require.Len(t, auditRepo.events, 1)
	assert.Equal(t, audit.ActionConfigUpdate, auditRepo.events[0].Action)
	assert.Equal(t, "system_prompt", auditRepo.events[0].Detail)
}

func TestSet_UnknownKeyIsRejected(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Set(context.Background(), "jwt_secret", "evil", admin)

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

func TestUnset_RestoresEnvFallback(t *testing.T) {
	service, repo, auditRepo := newTestService()
	ctx := context.Background()

	repo.overrides["ai_provider"] = "anthropic"

	setting, err := service.Unset(ctx, "ai_provider", admin)

	require.NoError(t, err)
	assert.Equal(t, "openai", setting.Value)
	assert.Equal(t, "env", setting.Source)
	assert.NotContains(t, repo.overrides, "ai_provider")

	require.Len(t, auditRepo.events, 1)
	assert.Equal(t, "ai_provider", auditRepo.events[0].Detail)

	// Idempotent: unsetting an override-free key succeeds.
	_, err = service.Unset(ctx, "ai_provider", admin)
	assert.NoError(t, err)
}

func TestStatus_NeverExposesValues(t *testing.T) {
	service, repo, _ := newTestService()
	repo.overrides["ai_provider"] = "mistral"

	status, err := service.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "mistral", status.Provider)
	assert.Len(t, status.Keys, 8)

	for _, entry := range status.Keys {
		switch entry.Key {
		case "ai_provider":
			assert.Equal(t, "store", entry.Source)
			assert.True(t, entry.Configured)
		case "anthropic_api_key":
			assert.Equal(t, "env", entry.Source)
			assert.False(t, entry.Configured)
		case "openai_api_key":
			assert.Equal(t, "env", entry.Source)
			assert.True(t, entry.Configured)
			assert.True(t, entry.Sensitive)
		}
	}
}

func TestApply_FoldsOverridesIntoConfig(t *testing.T) {
	cfg := &config.Config{AIProvider: "openai", SystemPrompt: "default"}

	Apply(cfg, map[string]string{
		"ai_provider":     "anthropic",
		"system_prompt":   "custom",
		"not_on_the_list": "ignored",
	})

	assert.Equal(t, "anthropic", cfg.AIProvider)
	assert.Equal(t, "custom", cfg.SystemPrompt)
}

func TestList_CoversEveryAllowListedKey(t *testing.T) {
	service, _, _ := newTestService()

	settings, err := service.List(context.Background(), sec.RoleAdmin)

	require.NoError(t, err)
	assert.Len(t, settings, 8)

	// Sorted by key.
	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Key, settings[i].Key)
	}
}
