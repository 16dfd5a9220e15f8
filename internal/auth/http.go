// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/renkei/internal/platform/config"
	"github.com/taibuivan/renkei/internal/platform/constants"
	"github.com/taibuivan/renkei/internal/platform/ctxutil"
	"github.com/taibuivan/renkei/internal/platform/middleware"
	"github.com/taibuivan/renkei/internal/platform/respond"
	"github.com/taibuivan/renkei/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the session-lifecycle HTTP endpoints.
//
// # Scope
//
// This handler owns every Set-Cookie decision in the gateway. Services below
// it never see cookies; they work with clear token values only.
type Handler struct {
	authService *Service
	appConfig   *config.Config
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, appConfig *config.Config) *Handler {
	return &Handler{
		authService: service,
		appConfig:   appConfig,
	}
}

// Routes returns a [chi.Router] configured with session-lifecycle routes.
//
// # Endpoints
//   - GET  /login    : Redirects the browser to the identity provider.
//   - GET  /callback : Completes the OAuth2 exchange and sets cookies.
//   - POST /refresh  : Rotates the refresh session (CSRF-protected).
//   - POST /logout   : Revokes all sessions and clears cookies.
//   - GET  /me       : Returns the verified identity, or nulls.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/login", handler.login)
	router.Get("/callback", handler.callback)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Get("/me", handler.me)

	return router
}

/*
Login starts the OAuth2 round trip.

GET /api/v1/auth/login?redirect=/dashboard/settings

Description: Remembers the optional post-login target in a short-lived cookie
and redirects the browser to the provider's authorize endpoint.

Response:
  - 302: Redirect to the identity provider
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {

	// Remember where to land after the callback, if the target is safe
	if target := request.URL.Query().Get("redirect"); isSafeRedirect(target) {
		http.SetCookie(writer, &http.Cookie{
			Name:     constants.PostLoginCookieName,
			Value:    target,
			Path:     constants.AuthCookiePath,
			MaxAge:   int(constants.PostLoginCookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   handler.appConfig.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(writer, request, handler.appConfig.AuthorizeURL(), http.StatusFound)
}

/*
Callback completes the OAuth2 exchange and establishes the session.

GET /api/v1/auth/callback?code=...

Description: Trades the authorization code for a credential set, installs the
cookie trio (access, refresh, CSRF), and redirects to the post-login target.

Response:
  - 302: Redirect to the post-login target with cookies set
  - 400: ValidationError: Missing authorization code
  - 403: NO_ROLE_ASSIGNED / INSUFFICIENT_ROLE: Identity not admitted
  - 502: UPSTREAM_AUTH_ERROR: Provider-side failure
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	code := request.URL.Query().Get("code")
	if code == "" {
		respond.Error(writer, request, validate.RequiredError("code", "Missing authorization code"))
		return
	}

	credentials, err := handler.authService.Login(request.Context(), code, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, credentials)

	// Resolve the post-login target and burn the cookie that carried it
	target := handler.appConfig.PostLoginURL
	if cookie, err := request.Cookie(constants.PostLoginCookieName); err == nil && isSafeRedirect(cookie.Value) {
		target = cookie.Value
	}
	handler.expireCookie(writer, constants.PostLoginCookieName, true)

	http.Redirect(writer, request, target, http.StatusFound)
}

/*
Refresh rotates the session's refresh credential.

POST /api/v1/auth/refresh

Description: Reads the refresh and CSRF cookies, requires the CSRF value to
be echoed via the X-CSRF-Token header or csrf_token form field, and replaces
the full cookie trio on success.

Response:
  - 200: Profile and new expiry
  - 401: NO_CREDENTIAL / INVALID_REFRESH
  - 403: CSRF_MISMATCH
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshSecret := cookieValue(request, constants.RefreshTokenCookieName)
	csrfCookie := cookieValue(request, constants.CsrfCookieName)

	// Header takes precedence; the form field exists for non-JS clients.
	csrfPresented := request.Header.Get(constants.CsrfHeaderName)
	if csrfPresented == "" {
		csrfPresented = request.PostFormValue(constants.CsrfFormField)
	}

	credentials, err := handler.authService.Refresh(
		request.Context(), refreshSecret, csrfCookie, csrfPresented, clientInfo(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, credentials)

	respond.OK(writer, map[string]interface{}{
		"profile":    credentials.Profile,
		"expires_at": credentials.RefreshExpiresAt,
	})
}

/*
Logout revokes all sessions for the calling identity and clears cookies.

POST /api/v1/auth/logout

Description: Idempotent. Cookies are cleared even when nothing was revoked,
so a stale browser always converges to the logged-out state.

Response:
  - 204: Logged out
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	refreshSecret := cookieValue(request, constants.RefreshTokenCookieName)
	claims := ctxutil.GetAuthUser(request.Context())

	err := handler.authService.Logout(request.Context(), refreshSecret, claims)

	handler.clearSessionCookies(writer)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Me returns the verified identity of the caller.

GET /api/v1/auth/me

Description: Never rejects. Anonymous callers and callers with unusable
credentials receive an all-null identity so dashboards can render the
logged-out state without special error handling.

Response:
  - 200: Profile, or {"id": null, ...} when unauthenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims := middleware.GetUser(request.Context())
	if claims == nil {
		respond.OK(writer, map[string]interface{}{
			"id":       nil,
			"username": nil,
			"avatar":   nil,
			"role":     nil,
		})
		return
	}

	respond.OK(writer, Profile{
		ID:       claims.UserID,
		Username: claims.Username,
		Avatar:   claims.Avatar,
		Role:     claims.Role,
	})
}

// # Cookie Plumbing

// setSessionCookies installs the cookie trio for a fresh credential set.
//
// The access cookie deliberately outlives the JWT inside it: a browser that
// presents an expired credential gets the EXPIRED_CREDENTIAL rejection and
// knows to refresh, instead of appearing anonymous.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, credentials *Credentials) {
	secure := handler.appConfig.IsProduction()

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    credentials.AccessToken,
		Path:     constants.AuthCookiePath,
		Expires:  credentials.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    credentials.RefreshToken,
		Path:     constants.AuthCookiePath,
		Expires:  credentials.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	// Script-readable on purpose: the dashboard reads this value to echo it
	// back in the X-CSRF-Token header.
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.CsrfCookieName,
		Value:    credentials.CsrfToken,
		Path:     constants.AuthCookiePath,
		Expires:  credentials.RefreshExpiresAt,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires the full cookie trio.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	handler.expireCookie(writer, constants.AccessTokenCookieName, true)
	handler.expireCookie(writer, constants.RefreshTokenCookieName, true)
	handler.expireCookie(writer, constants.CsrfCookieName, false)
}

// expireCookie overwrites one cookie with an immediately expiring value.
func (handler *Handler) expireCookie(writer http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     constants.AuthCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   handler.appConfig.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// # Request Helpers

// cookieValue returns the named cookie's value, or empty.
func cookieValue(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clientInfo captures the requesting client for session tracking.
func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	}
}

// isSafeRedirect accepts only same-site relative paths.
func isSafeRedirect(target string) bool {
	return target != "" &&
		strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.Contains(target, "\\")
}
