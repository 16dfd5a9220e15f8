// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roles

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// fakeRepository returns canned answers for resolver tests.
type fakeRepository struct {
	assignments map[string]*Assignment
	failing     bool
}

func (repo *fakeRepository) Get(_ context.Context, userID string) (*Assignment, error) {
	if repo.failing {
		return nil, errors.New("connection refused")
	}
	if assignment, found := repo.assignments[userID]; found {
		return assignment, nil
	}
	return nil, apperr.NotFound("Role assignment")
}

func (repo *fakeRepository) Set(context.Context, *Assignment) error { return nil }
func (repo *fakeRepository) List(context.Context) ([]Assignment, error) {
	return nil, nil
}
func (repo *fakeRepository) Remove(context.Context, string) error { return nil }

func newTestResolver(repo Repository, fallback map[string]string) *Resolver {
	return NewResolver(repo, fallback, slog.Default())
}

func TestResolve_StoredAssignmentWins(t *testing.T) {
	repo := &fakeRepository{assignments: map[string]*Assignment{
		"100": {UserID: "100", Role: "admin"},
	}}
	resolver := newTestResolver(repo, map[string]string{"100": "user"})

	role := resolver.Resolve(context.Background(), "100")

	assert.Equal(t, sec.RoleAdmin, role)
}

func TestResolve_MissingRowFallsBackToStaticTable(t *testing.T) {
	repo := &fakeRepository{assignments: map[string]*Assignment{}}
	resolver := newTestResolver(repo, map[string]string{"200": "superadmin"})

	role := resolver.Resolve(context.Background(), "200")

	assert.Equal(t, sec.RoleSuperadmin, role)
}

func TestResolve_UnknownIdentityIsGuest(t *testing.T) {
	repo := &fakeRepository{assignments: map[string]*Assignment{}}
	resolver := newTestResolver(repo, nil)

	role := resolver.Resolve(context.Background(), "999")

	assert.Equal(t, sec.RoleGuest, role)
	assert.True(t, role.IsGuest())
}

func TestResolve_StoreFailureDegradesInsteadOfErroring(t *testing.T) {
	repo := &fakeRepository{failing: true}
	resolver := newTestResolver(repo, map[string]string{"300": "admin"})

	assert.Equal(t, sec.RoleAdmin, resolver.Resolve(context.Background(), "300"))
	assert.Equal(t, sec.RoleGuest, resolver.Resolve(context.Background(), "301"))
}

func TestResolve_CorruptedRowCollapsesToGuest(t *testing.T) {
	repo := &fakeRepository{assignments: map[string]*Assignment{
		"400": {UserID: "400", Role: "root"},
	}}
	resolver := newTestResolver(repo, nil)

	assert.Equal(t, sec.RoleGuest, resolver.Resolve(context.Background(), "400"))
}
