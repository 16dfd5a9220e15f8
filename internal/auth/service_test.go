// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/identity"
	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// # Test Doubles

type fakeExchanger struct {
	identity *identity.Identity
	err      error
}

func (exchanger *fakeExchanger) Exchange(context.Context, string) (*identity.Identity, error) {
	if exchanger.err != nil {
		return nil, exchanger.err
	}
	return exchanger.identity, nil
}

type fakeResolver struct {
	roles map[string]sec.Role
}

func (resolver *fakeResolver) Resolve(_ context.Context, userID string) sec.Role {
	if role, found := resolver.roles[userID]; found {
		return role
	}
	return sec.RoleGuest
}

// fakeSessionRepo is a mutex-guarded in-memory [SessionRepository].
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*Session{}}
}

func (repo *fakeSessionRepo) Create(_ context.Context, session *Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored := *session
	repo.sessions[session.ID] = &stored
	return nil
}

func (repo *fakeSessionRepo) FindValidByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			found := *session
			return &found, nil
		}
	}
	return nil, apperr.InvalidRefresh()
}

func (repo *fakeSessionRepo) Claim(_ context.Context, sessionID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	session, found := repo.sessions[sessionID]
	if !found || session.IsRevoked {
		return false, nil
	}
	session.IsRevoked = true
	return true, nil
}

func (repo *fakeSessionRepo) RevokeAll(_ context.Context, subject string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.Subject == subject {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepo) activeCount(subject string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, session := range repo.sessions {
		if session.Subject == subject && !session.IsRevoked {
			count++
		}
	}
	return count
}

// fakeAuditRepo captures recorded events for assertions.
type fakeAuditRepo struct {
	mu     sync.Mutex
	events []audit.Event
}

func (repo *fakeAuditRepo) Insert(_ context.Context, event *audit.Event) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.events = append(repo.events, *event)
	return nil
}

func (repo *fakeAuditRepo) List(context.Context, audit.ListFilter, int, int) ([]audit.Event, int, error) {
	return nil, 0, nil
}

func (repo *fakeAuditRepo) actions() []string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	actions := make([]string, 0, len(repo.events))
	for _, event := range repo.events {
		actions = append(actions, event.Action)
	}
	return actions
}

type fakeInstrumentation struct {
	mu        sync.Mutex
	issued    int
	rotations map[string]int
	rejected  map[string]int
}

func newFakeInstrumentation() *fakeInstrumentation {
	return &fakeInstrumentation{rotations: map[string]int{}, rejected: map[string]int{}}
}

func (metrics *fakeInstrumentation) SessionIssued() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.issued++
}

func (metrics *fakeInstrumentation) SessionRotated(outcome string) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.rotations[outcome]++
}

func (metrics *fakeInstrumentation) LoginRejected(reason string) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.rejected[reason]++
}

// # Fixture

type fixture struct {
	service   *Service
	repo      *fakeSessionRepo
	auditRepo *fakeAuditRepo
	metrics   *fakeInstrumentation
	tokens    *sec.TokenService
}

func newFixture(t *testing.T, exchanger identity.Exchanger, roles map[string]sec.Role) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService("0123456789abcdef0123456789abcdef", "renkei-gateway")
	require.NoError(t, err)

	repo := newFakeSessionRepo()
	auditRepo := &fakeAuditRepo{}
	metrics := newFakeInstrumentation()

	service := NewService(
		exchanger,
		&fakeResolver{roles: roles},
		repo,
		tokens,
		audit.NewService(auditRepo, slog.Default()),
		metrics,
		ServiceConfig{
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 14 * 24 * time.Hour,
			AdmittedRoles:   []sec.Role{sec.RoleAdmin, sec.RoleSuperadmin},
		},
	)

	return &fixture{service: service, repo: repo, auditRepo: auditRepo, metrics: metrics, tokens: tokens}
}

var testClient = ClientInfo{UserAgent: "test-agent", IPAddress: "203.0.113.7"}

func adminExchanger() *fakeExchanger {
	return &fakeExchanger{identity: &identity.Identity{
		ID:       "111222333",
		Username: "operator",
		Avatar:   "a1b2",
	}}
}

// # Login

func TestLogin_IssuesCredentialsAndOneSession(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	credentials, err := fx.service.Login(context.Background(), "auth-code", testClient)

	require.NoError(t, err)
	assert.NotEmpty(t, credentials.AccessToken)
	assert.NotEmpty(t, credentials.RefreshToken)
	assert.NotEmpty(t, credentials.CsrfToken)
	assert.NotEqual(t, credentials.RefreshToken, credentials.CsrfToken)
	assert.Equal(t, 1, fx.repo.activeCount("111222333"))

	// The minted credential must verify and carry the resolved role.
	claims, err := fx.tokens.VerifyToken(credentials.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "111222333", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	assert.Equal(t, 1, fx.metrics.issued)
	assert.Contains(t, fx.auditRepo.actions(), audit.ActionLoginSuccess)
}

func TestLogin_SupersedesPreviousSessions(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	first, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)
	second, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	// Exactly one live record per subject, and only the newest secret rotates.
	assert.Equal(t, 1, fx.repo.activeCount("111222333"))

	_, err = fx.service.Refresh(
		context.Background(), first.RefreshToken, first.CsrfToken, first.CsrfToken, testClient,
	)
	assert.Equal(t, "INVALID_REFRESH", apperr.CodeOf(err))

	_, err = fx.service.Refresh(
		context.Background(), second.RefreshToken, second.CsrfToken, second.CsrfToken, testClient,
	)
	assert.NoError(t, err)
}

func TestLogin_GuestIsRejectedBeforeIssuance(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{})

	credentials, err := fx.service.Login(context.Background(), "auth-code", testClient)

	require.Error(t, err)
	assert.Nil(t, credentials)
	assert.Equal(t, "NO_ROLE_ASSIGNED", apperr.CodeOf(err))
	assert.Equal(t, 0, fx.repo.activeCount("111222333"))
	assert.Contains(t, fx.auditRepo.actions(), audit.ActionLoginDeniedRole)
}

func TestLogin_UnadmittedRoleIsRejected(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleUser})

	_, err := fx.service.Login(context.Background(), "auth-code", testClient)

	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_ROLE", apperr.CodeOf(err))
	assert.Equal(t, 1, fx.metrics.rejected["INSUFFICIENT_ROLE"])
}

func TestLogin_UpstreamFailurePropagates(t *testing.T) {
	fx := newFixture(t, &fakeExchanger{err: apperr.UpstreamAuth(assert.AnError)}, nil)

	_, err := fx.service.Login(context.Background(), "auth-code", testClient)

	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_AUTH_ERROR", apperr.CodeOf(err))
	assert.Contains(t, fx.auditRepo.actions(), audit.ActionLoginFailedUpstream)
}

// # Rotation

func TestRefresh_RotatesAndRevokesOldSecret(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	original, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	rotated, err := fx.service.Refresh(
		context.Background(), original.RefreshToken, original.CsrfToken, original.CsrfToken, testClient,
	)

	require.NoError(t, err)
	assert.NotEqual(t, original.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, fx.repo.activeCount("111222333"))
	assert.Equal(t, 1, fx.metrics.rotations["success"])

	// Replaying the consumed secret must fail.
	_, err = fx.service.Refresh(
		context.Background(), original.RefreshToken, rotated.CsrfToken, rotated.CsrfToken, testClient,
	)
	require.Error(t, err)
	assert.Equal(t, "INVALID_REFRESH", apperr.CodeOf(err))
}

func TestRefresh_CsrfMismatchLeavesSessionUsable(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	original, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	_, err = fx.service.Refresh(
		context.Background(), original.RefreshToken, original.CsrfToken, "forged-value", testClient,
	)
	require.Error(t, err)
	assert.Equal(t, "CSRF_MISMATCH", apperr.CodeOf(err))

	// The rejection must not have consumed the session.
	assert.Equal(t, 1, fx.repo.activeCount("111222333"))

	_, err = fx.service.Refresh(
		context.Background(), original.RefreshToken, original.CsrfToken, original.CsrfToken, testClient,
	)
	assert.NoError(t, err)
}

func TestRefresh_MissingSecretIsNoCredential(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	_, err := fx.service.Refresh(context.Background(), "", "csrf", "csrf", testClient)

	require.Error(t, err)
	assert.Equal(t, "NO_CREDENTIAL", apperr.CodeOf(err))
}

func TestRefresh_ConcurrentRotationHasExactlyOneWinner(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	original, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.Refresh(
				context.Background(), original.RefreshToken, original.CsrfToken, original.CsrfToken, testClient,
			)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.Equal(t, "INVALID_REFRESH", apperr.CodeOf(err))
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, fx.repo.activeCount("111222333"))
}

func TestRefresh_NeverExtendsTheOriginalWindow(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	// Seed a session whose remaining window is much shorter than the TTL.
	hardStop := time.Now().Add(30 * time.Minute)
	seeded := &Session{
		ID:        "seeded-session",
		Subject:   "111222333",
		Username:  "operator",
		TokenHash: sec.HashToken("seeded-secret"),
		ExpiresAt: hardStop,
	}
	require.NoError(t, fx.repo.Create(context.Background(), seeded))

	rotated, err := fx.service.Refresh(
		context.Background(), "seeded-secret", "csrf-pair", "csrf-pair", testClient,
	)

	require.NoError(t, err)
	assert.WithinDuration(t, hardStop, rotated.RefreshExpiresAt, time.Second)
}

func TestRefresh_RoleRevocationPropagatesAtRotation(t *testing.T) {
	roles := map[string]sec.Role{"111222333": sec.RoleAdmin}
	fx := newFixture(t, adminExchanger(), roles)

	original, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	// Operator loses the role between login and refresh.
	delete(roles, "111222333")

	_, err = fx.service.Refresh(
		context.Background(), original.RefreshToken, original.CsrfToken, original.CsrfToken, testClient,
	)

	require.Error(t, err)
	assert.Equal(t, "NO_ROLE_ASSIGNED", apperr.CodeOf(err))
}

// # Client Binding

func TestRefresh_BindingRejectsForeignClient(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})
	fx.service.config.BindRefreshToClient = true

	original, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	foreign := ClientInfo{UserAgent: "other-agent", IPAddress: "198.51.100.9"}
	_, err = fx.service.Refresh(
		context.Background(), original.RefreshToken, original.CsrfToken, original.CsrfToken, foreign,
	)

	require.Error(t, err)
	assert.Equal(t, "INVALID_REFRESH", apperr.CodeOf(err))
}

// # Logout

func TestLogout_RevokesEverySession(t *testing.T) {
	fx := newFixture(t, adminExchanger(), map[string]sec.Role{"111222333": sec.RoleAdmin})

	credentials, err := fx.service.Login(context.Background(), "auth-code", testClient)
	require.NoError(t, err)

	// A second live record for the same subject is seeded directly, since a
	// fresh login supersedes any existing sessions.
	require.NoError(t, fx.repo.Create(context.Background(), &Session{
		ID:        "seeded-session",
		Subject:   "111222333",
		Username:  "operator",
		TokenHash: sec.HashToken("seeded-secret"),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.Equal(t, 2, fx.repo.activeCount("111222333"))

	require.NoError(t, fx.service.Logout(context.Background(), credentials.RefreshToken, nil))

	assert.Equal(t, 0, fx.repo.activeCount("111222333"))
	assert.Contains(t, fx.auditRepo.actions(), audit.ActionLogout)
}

func TestLogout_UnknownSecretIsIdempotent(t *testing.T) {
	fx := newFixture(t, adminExchanger(), nil)

	assert.NoError(t, fx.service.Logout(context.Background(), "never-issued", nil))
	assert.NoError(t, fx.service.Logout(context.Background(), "", nil))
}
