// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package botconfig

import (
	"context"
	"sort"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/llm"
	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// Setting is the client-facing view of one configuration key.
type Setting struct {
	// Key is the allow-listed key name.
	Key string `json:"key"`

	// Value is the effective value, masked when sensitive and the caller
	// is below superadmin.
	Value string `json:"value"`

	// Source reports where the effective value came from: "store" or "env".
	Source string `json:"source"`

	// Sensitive marks keys whose values are masked below superadmin.
	Sensitive bool `json:"sensitive"`
}

// Service resolves effective configuration and writes overrides.
type Service struct {
	repository   Repository
	definitions  map[string]Definition
	auditService *audit.Service
}

// NewService constructs a botconfig [Service].
func NewService(repository Repository, definitions map[string]Definition, auditService *audit.Service) *Service {
	return &Service{
		repository:   repository,
		definitions:  definitions,
		auditService: auditService,
	}
}

/*
Get resolves the effective value for one allow-listed key.

Description: Stored overrides win over environment fallbacks. Sensitive
values are masked unless the caller is superadmin.

Parameters:
  - ctx: context.Context
  - key: string
  - callerRole: sec.Role (controls masking)

Returns:
  - *Setting: The effective view
  - error: NotFound for keys outside the allow-list, or storage failures
*/
func (service *Service) Get(ctx context.Context, key string, callerRole sec.Role) (*Setting, error) {
	definition, allowed := service.definitions[key]
	if !allowed {
		return nil, apperr.NotFound("Configuration key")
	}

	setting := &Setting{
		Key:       key,
		Value:     definition.EnvValue,
		Source:    "env",
		Sensitive: definition.Sensitive,
	}

	override, err := service.repository.Get(ctx, key)
	switch {
	case err == nil:
		setting.Value = override
		setting.Source = "store"
	case apperr.CodeOf(err) != "NOT_FOUND":
		return nil, err
	}

	service.mask(setting, callerRole)
	return setting, nil
}

/*
List resolves the effective view of every allow-listed key.

Parameters:
  - ctx: context.Context
  - callerRole: sec.Role (controls masking)

Returns:
  - []Setting: All keys sorted by name
  - error: Storage failures
*/
func (service *Service) List(ctx context.Context, callerRole sec.Role) ([]Setting, error) {
	overrides, err := service.repository.All(ctx)
	if err != nil {
		return nil, err
	}

	settings := make([]Setting, 0, len(service.definitions))
	for key, definition := range service.definitions {
		setting := Setting{
			Key:       key,
			Value:     definition.EnvValue,
			Source:    "env",
			Sensitive: definition.Sensitive,
		}
		if override, found := overrides[key]; found {
			setting.Value = override
			setting.Source = "store"
		}
		service.mask(&setting, callerRole)
		settings = append(settings, setting)
	}

	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

/*
Set writes a runtime override for one allow-listed key.

Description: Records a config_update audit event naming the key only — the
value may be a secret and never enters the audit trail.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string
  - operator: *sec.AuthClaims

Returns:
  - *Setting: The resulting effective view (masked per the operator's role)
  - error: NotFound for keys outside the allow-list, or storage failures
*/
func (service *Service) Set(ctx context.Context, key, value string, operator *sec.AuthClaims) (*Setting, error) {
	definition, allowed := service.definitions[key]
	if !allowed {
		return nil, apperr.NotFound("Configuration key")
	}

	if err := service.repository.Set(ctx, key, value, operator.UserID); err != nil {
		return nil, err
	}

	service.auditService.Record(ctx, &audit.Event{
		Action:   audit.ActionConfigUpdate,
		UserID:   operator.UserID,
		Username: operator.Username,
		Detail:   key,
	})

	setting := &Setting{
		Key:       key,
		Value:     value,
		Source:    "store",
		Sensitive: definition.Sensitive,
	}
	service.mask(setting, sec.ParseRole(operator.Role))
	return setting, nil
}

/*
Unset removes the runtime override for one allow-listed key, returning the
key to its environment fallback.

Description: Idempotent. Records a config_update audit event naming the key
only, same as [Service.Set].

Parameters:
  - ctx: context.Context
  - key: string
  - operator: *sec.AuthClaims

Returns:
  - *Setting: The effective view after removal (masked per the operator's role)
  - error: NotFound for keys outside the allow-list, or storage failures
*/
func (service *Service) Unset(ctx context.Context, key string, operator *sec.AuthClaims) (*Setting, error) {
	definition, allowed := service.definitions[key]
	if !allowed {
		return nil, apperr.NotFound("Configuration key")
	}

	if err := service.repository.Delete(ctx, key); err != nil {
		return nil, err
	}

	service.auditService.Record(ctx, &audit.Event{
		Action:   audit.ActionConfigUpdate,
		UserID:   operator.UserID,
		Username: operator.Username,
		Detail:   key,
	})

	setting := &Setting{
		Key:       key,
		Value:     definition.EnvValue,
		Source:    "env",
		Sensitive: definition.Sensitive,
	}
	service.mask(setting, sec.ParseRole(operator.Role))
	return setting, nil
}

// KeyStatus reports where one key's effective value comes from, without
// revealing the value itself.
type KeyStatus struct {
	Key        string `json:"key"`
	Source     string `json:"source"`
	Configured bool   `json:"configured"`
	Sensitive  bool   `json:"sensitive"`
}

// Status is the value-free summary of the runtime configuration surface.
type Status struct {
	// Provider is the effective ai_provider selection.
	Provider string `json:"provider"`

	// Keys reports per-key provenance, sorted by key.
	Keys []KeyStatus `json:"keys"`
}

/*
Status summarizes the configuration surface without exposing any values.

Description: Reports, for every allow-listed key, whether a non-empty
effective value exists and where it comes from. Safe to show any operator
because no value — masked or otherwise — appears in the output.

Returns:
  - *Status: Provenance summary
  - error: Storage failures
*/
func (service *Service) Status(ctx context.Context) (*Status, error) {
	overrides, err := service.repository.All(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{Keys: make([]KeyStatus, 0, len(service.definitions))}
	for key, definition := range service.definitions {
		entry := KeyStatus{
			Key:        key,
			Source:     "env",
			Configured: definition.EnvValue != "",
			Sensitive:  definition.Sensitive,
		}
		if override, found := overrides[key]; found {
			entry.Source = "store"
			entry.Configured = override != ""
		}
		status.Keys = append(status.Keys, entry)
	}

	sort.Slice(status.Keys, func(i, j int) bool { return status.Keys[i].Key < status.Keys[j].Key })

	if provider, found := overrides["ai_provider"]; found {
		status.Provider = provider
	} else if definition, ok := service.definitions["ai_provider"]; ok {
		status.Provider = definition.EnvValue
	}

	return status, nil
}

// mask hides sensitive values from everyone below superadmin.
func (service *Service) mask(setting *Setting, callerRole sec.Role) {
	if setting.Sensitive && callerRole != sec.RoleSuperadmin {
		setting.Value = llm.MaskAPIKey(setting.Value)
	}
}
