// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/identity"
	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/sec"
	"github.com/taibuivan/renkei/pkg/uuidv7"
)

// # Contracts & Types

// RoleResolver maps an external identity onto an authorization role.
// It never fails; outages degrade to guest inside the implementation.
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) sec.Role
}

// TokenProvider defines the contract for generating access credentials.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	//
	// # Parameters
	//   - userID: The external identity id.
	//   - username: The identity's handle.
	//   - role: The resolved role embedded in the credential.
	//   - avatar: The identity's avatar hash.
	//   - timeToLive: The duration before the credential expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role, avatar string, timeToLive time.Duration) (string, error)
}

// Instrumentation receives session-lifecycle counters.
type Instrumentation interface {
	SessionIssued()
	SessionRotated(outcome string)
	LoginRejected(reason string)
}

// ClientInfo captures the requesting client for session tracking and
// optional refresh binding.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Profile is the client-facing projection of the session's identity.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// Credentials represents a freshly established session.
//
// RefreshToken and CsrfToken exist in clear form only inside this struct on
// its way into Set-Cookie headers; storage keeps only the refresh digest.
type Credentials struct {
	AccessToken      string
	RefreshToken     string
	CsrfToken        string
	RefreshExpiresAt time.Time
	Profile          Profile
}

// ServiceConfig carries the tunables for the session [Service].
type ServiceConfig struct {
	// AccessTokenTTL is the lifetime of issued access credentials.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of issued refresh sessions.
	RefreshTokenTTL time.Duration

	// AdmittedRoles are the roles allowed through the login callback.
	AdmittedRoles []sec.Role

	// BindRefreshToClient enforces user-agent/IP matching on refresh.
	BindRefreshToClient bool
}

// Service implements the session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to issuance, rotation,
// or revocation logic must be reviewed by the security team.
type Service struct {
	exchanger         identity.Exchanger
	roleResolver      RoleResolver
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	auditService      *audit.Service
	instrumentation   Instrumentation
	config            ServiceConfig
}

// NewService constructs a new session [Service] with necessary dependencies.
func NewService(
	exchanger identity.Exchanger,
	roleResolver RoleResolver,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	auditService *audit.Service,
	instrumentation Instrumentation,
	config ServiceConfig,
) *Service {
	return &Service{
		exchanger:         exchanger,
		roleResolver:      roleResolver,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		auditService:      auditService,
		instrumentation:   instrumentation,
		config:            config,
	}
}

// # Login Flow

/*
Login converts an OAuth2 authorization code into a full credential set.

Description: Performs the identity exchange, resolves and gates the role,
then mints the access credential, refresh secret, and CSRF pair.

Parameters:
  - ctx: context.Context
  - code: string (single-use authorization code)
  - client: ClientInfo

Returns:
  - *Credentials: Transport-ready session credentials
  - err: UpstreamAuth, NoRoleAssigned, InsufficientRole, or storage failures
*/
func (service *Service) Login(ctx context.Context, code string, client ClientInfo) (*Credentials, error) {

	// Resolve the code into a verified external identity
	externalIdentity, err := service.exchanger.Exchange(ctx, code)
	if err != nil {
		service.instrumentation.LoginRejected(apperr.CodeOf(err))
		service.auditService.Record(ctx, &audit.Event{
			Action:    audit.ActionLoginFailedUpstream,
			IPAddress: client.IPAddress,
			Detail:    apperr.CodeOf(err),
		})
		return nil, err
	}

	// Resolve the authorization role. This never errors; outages degrade to guest.
	role := service.roleResolver.Resolve(ctx, externalIdentity.ID)

	// Guests hold no role record at all: reject before any credential exists.
	if role.IsGuest() {
		return nil, service.rejectLogin(ctx, externalIdentity, client, apperr.NoRoleAssigned())
	}

	// Set-membership gate: only the admitted roles may establish a session.
	if !role.In(service.config.AdmittedRoles...) {
		return nil, service.rejectLogin(ctx, externalIdentity, client, apperr.InsufficientRole())
	}

	// A fresh login supersedes any lingering sessions for this subject,
	// keeping exactly one live refresh record per identity.
	if err := service.sessionRepository.RevokeAll(ctx, externalIdentity.ID); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	// Mint the credential set and persist the tracking session
	credentials, err := service.issue(ctx, Profile{
		ID:       externalIdentity.ID,
		Username: externalIdentity.Username,
		Avatar:   externalIdentity.Avatar,
		Role:     string(role),
	}, client, time.Now().Add(service.config.RefreshTokenTTL))
	if err != nil {
		return nil, err
	}

	service.instrumentation.SessionIssued()
	service.auditService.Record(ctx, &audit.Event{
		Action:    audit.ActionLoginSuccess,
		UserID:    externalIdentity.ID,
		Username:  externalIdentity.Username,
		IPAddress: client.IPAddress,
		Detail:    string(role),
	})

	return credentials, nil
}

// rejectLogin records the audit and metric trail for a role-denied login.
func (service *Service) rejectLogin(ctx context.Context, externalIdentity *identity.Identity, client ClientInfo, cause *apperr.AppError) error {
	service.instrumentation.LoginRejected(cause.Code)
	service.auditService.Record(ctx, &audit.Event{
		Action:    audit.ActionLoginDeniedRole,
		UserID:    externalIdentity.ID,
		Username:  externalIdentity.Username,
		IPAddress: client.IPAddress,
		Detail:    cause.Code,
	})
	return cause
}

// # Rotation Flow

/*
Refresh implements the refresh-rotation mechanism.

Description: Validates the CSRF pair, resolves the presented secret into its
live session, atomically claims (revokes) it, and mints a replacement
credential set. The CSRF check runs BEFORE any store mutation, so a mismatch
leaves the session untouched and still usable.

Parameters:
  - ctx: context.Context
  - refreshSecret: string (clear value from the refresh cookie)
  - csrfCookie: string (value of the CSRF cookie)
  - csrfPresented: string (value echoed via header or form field)
  - client: ClientInfo

Returns:
  - *Credentials: Rotated session credentials
  - err: NoCredential, CsrfMismatch, InvalidRefresh, or storage failures
*/
func (service *Service) Refresh(ctx context.Context, refreshSecret, csrfCookie, csrfPresented string, client ClientInfo) (*Credentials, error) {

	// 1. A request without a refresh cookie presented nothing to rotate
	if refreshSecret == "" {
		return nil, apperr.NoCredential()
	}

	// 2. CSRF double-submit check, constant-time. Must precede the store
	//    lookup so a forged cross-site request cannot consume the session.
	if csrfCookie == "" || csrfPresented == "" || !sec.ConstantTimeEquals(csrfCookie, csrfPresented) {
		return nil, service.rejectRefresh(ctx, "", client, apperr.CsrfMismatch())
	}

	// 3. Resolve the secret's digest into its live session
	tokenHash := sec.HashToken(refreshSecret)
	session, err := service.sessionRepository.FindValidByTokenHash(ctx, tokenHash)
	if err != nil {
		if appError := apperr.As(err); appError != nil {
			return nil, service.rejectRefresh(ctx, "", client, appError)
		}
		return nil, apperr.StoreUnavailable(err)
	}

	// 4. Optional client binding: a secret presented from a different
	//    browser/address is treated exactly like an unknown one.
	if service.config.BindRefreshToClient {
		if session.UserAgent != client.UserAgent || session.IPAddress != client.IPAddress {
			return nil, service.rejectRefresh(ctx, session.Subject, client, apperr.InvalidRefresh())
		}
	}

	// 5. Atomic claim: exactly one concurrent caller wins the rotation
	won, err := service.sessionRepository.Claim(ctx, session.ID)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	if !won {
		return nil, service.rejectRefresh(ctx, session.Subject, client, apperr.InvalidRefresh())
	}

	// 6. Re-resolve the role so revocations propagate at rotation boundaries
	role := service.roleResolver.Resolve(ctx, session.Subject)
	if role.IsGuest() {
		return nil, service.rejectRefresh(ctx, session.Subject, client, apperr.NoRoleAssigned())
	}
	if !role.In(service.config.AdmittedRoles...) {
		return nil, service.rejectRefresh(ctx, session.Subject, client, apperr.InsufficientRole())
	}

	// 7. Mint the replacement pair. Rotation never extends the session past
	//    the window the original login established.
	expiresAt := time.Now().Add(service.config.RefreshTokenTTL)
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}

	credentials, err := service.issue(ctx, Profile{
		ID:       session.Subject,
		Username: session.Username,
		Avatar:   session.Avatar,
		Role:     string(role),
	}, client, expiresAt)
	if err != nil {
		return nil, err
	}

	service.instrumentation.SessionRotated("success")
	service.auditService.Record(ctx, &audit.Event{
		Action:    audit.ActionRefreshSuccess,
		UserID:    session.Subject,
		Username:  session.Username,
		IPAddress: client.IPAddress,
	})

	return credentials, nil
}

// rejectRefresh records the audit and metric trail for a denied rotation.
func (service *Service) rejectRefresh(ctx context.Context, subject string, client ClientInfo, cause *apperr.AppError) error {
	service.instrumentation.SessionRotated("denied")
	service.auditService.Record(ctx, &audit.Event{
		Action:    audit.ActionRefreshDenied,
		UserID:    subject,
		IPAddress: client.IPAddress,
		Detail:    cause.Code,
	})
	return cause
}

// # Revocation Flow

/*
Logout revokes every live session for the calling identity.

Description: The subject is resolved from the presented refresh secret when
available, falling back to the verified access claims. An unknown secret
with no claims is treated as an already-complete logout (idempotent).

Parameters:
  - ctx: context.Context
  - refreshSecret: string (may be empty)
  - claims: *sec.AuthClaims (may be nil)

Returns:
  - err: Revocation failures only
*/
func (service *Service) Logout(ctx context.Context, refreshSecret string, claims *sec.AuthClaims) error {
	subject := ""

	if refreshSecret != "" {
		session, err := service.sessionRepository.FindValidByTokenHash(ctx, sec.HashToken(refreshSecret))
		if err == nil {
			subject = session.Subject
		}
	}

	if subject == "" && claims != nil {
		subject = claims.UserID
	}

	// Nothing to revoke: logout is idempotent by design of the flow.
	if subject == "" {
		return nil
	}

	if err := service.sessionRepository.RevokeAll(ctx, subject); err != nil {
		return apperr.StoreUnavailable(err)
	}

	service.auditService.Record(ctx, &audit.Event{
		Action: audit.ActionLogout,
		UserID: subject,
	})

	return nil
}

// # Issuance

// issue mints the access credential, refresh secret, and CSRF pair, and
// persists the tracking session.
func (service *Service) issue(ctx context.Context, profile Profile, client ClientInfo, expiresAt time.Time) (*Credentials, error) {

	// Short-lived signed access credential
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		profile.ID, profile.Username, profile.Role, profile.Avatar, service.config.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Long-lived opaque refresh secret
	refreshSecret, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// CSRF pair value shared between the readable cookie and the echo check
	csrfToken, err := sec.GenerateSecureToken(CsrfTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_csrf_token_failed: %w", err)
	}

	// Persist the tracking session. Only the digest of the secret is stored.
	session := &Session{
		ID:        uuidv7.New(),
		Subject:   profile.ID,
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		TokenHash: sec.HashToken(refreshSecret),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	return &Credentials{
		AccessToken:      accessToken,
		RefreshToken:     refreshSecret,
		CsrfToken:        csrfToken,
		RefreshExpiresAt: expiresAt,
		Profile:          profile,
	}, nil
}
