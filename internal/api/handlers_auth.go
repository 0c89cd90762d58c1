// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/authz"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/validation"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,vcode"`
}

// LoginResponse is returned by the first login step.
type LoginResponse struct {
	Session         auth.Snapshot `json:"session"`
	DeliveryWarning string        `json:"delivery_warning,omitempty"`
}

// VerifyResponse is returned once the code is accepted.
type VerifyResponse struct {
	Session   auth.Snapshot `json:"session"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// GuardResponse answers "may this session see view".
type GuardResponse struct {
	View     string          `json:"view"`
	Class    authz.ViewClass `json:"class"`
	Status   auth.Status     `json:"status"`
	Allowed  bool            `json:"allowed"`
	Redirect string          `json:"redirect,omitempty"`
}

// decodeValid decodes and validates a small JSON body. It writes the error
// response itself and reports whether the handler may continue.
func decodeValid(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, maxBodyBytes, v); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}

// Register creates a password account. It does not start a session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.passwords == nil {
		rw.NotFound("Password registration is not available")
		return
	}
	var req registerRequest
	if !decodeValid(rw, w, r, &req) {
		return
	}

	err := h.passwords.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	var verr *validation.RequestValidationError
	switch {
	case err == nil:
		rw.Created(map[string]string{"email": auth.NormalizeEmail(req.Email)})
	case errors.As(err, &verr):
		rw.ValidationError(verr)
	case errors.Is(err, auth.ErrRegistrationClosed):
		rw.Forbidden(err.Error())
	case errors.Is(err, auth.ErrUserExists):
		rw.Conflict("An account with this email already exists")
	case errors.Is(err, auth.ErrWeakPassword):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, err.Error(),
			map[string]string{"field": "password"})
	default:
		rw.InternalError("Registration failed", err)
	}
}

// Login runs the password step and sends the verification code.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req loginRequest
	if !decodeValid(rw, w, r, &req) {
		return
	}

	m := h.ensureSession(w, r)
	res, err := m.LoginWithPassword(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		resp := LoginResponse{Session: m.Status()}
		if res.DeliveryWarning != nil {
			resp.DeliveryWarning = res.DeliveryWarning.Error()
		}
		rw.Success(resp)
	case errors.Is(err, auth.ErrInvalidCredentials):
		rw.Unauthorized(err.Error())
	case errors.Is(err, auth.ErrInvalidTransition):
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	default:
		rw.InternalError("Login failed", err)
	}
}

// Federated sends the browser to the identity provider.
func (h *Handler) Federated(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	m := h.ensureSession(w, r)
	target, err := m.BeginFederated()
	switch {
	case err == nil:
		http.Redirect(w, r, target, http.StatusFound)
	case errors.Is(err, auth.ErrFederatedDisabled):
		rw.NotFound(err.Error())
	case errors.Is(err, auth.ErrInvalidTransition):
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	default:
		rw.InternalError("Failed to start federated login", err)
	}
}

// loginErrorRedirect sends the browser back to the login view with reason.
func loginErrorRedirect(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, authz.LoginPath+"?"+url.Values{"error": {reason}}.Encode(), http.StatusFound)
}

// Callback completes a federated login. The browser always ends up on a
// view: the verification view on success, login with ?error otherwise.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		logging.Ctx(r.Context()).Info().Str("error", reason).Str("description", q.Get("error_description")).
			Msg("Identity provider returned an error")
		loginErrorRedirect(w, r, "provider_error")
		return
	}

	m, ok := h.machineFor(r)
	if !ok {
		loginErrorRedirect(w, r, "session_expired")
		return
	}

	_, err := m.LoginWithFederatedProvider(r.Context(), auth.FederatedCallback{
		Code:  q.Get("code"),
		State: q.Get("state"),
	})
	switch {
	case err == nil:
		http.Redirect(w, r, h.cfg.OIDC.SuccessRedirect, http.StatusFound)
	case errors.Is(err, auth.ErrFederatedState):
		loginErrorRedirect(w, r, "state_mismatch")
	case errors.Is(err, auth.ErrNoEmailClaim):
		loginErrorRedirect(w, r, "no_email")
	case errors.Is(err, auth.ErrInvalidTransition):
		http.Redirect(w, r, authz.HomeFor(m.State().Status()), http.StatusFound)
	default:
		loginErrorRedirect(w, r, "federated_failed")
	}
}

// Verify submits the emailed code. On success a session token is issued
// as a cookie and in the body.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	m, ok := h.machineFor(r)
	if !ok {
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, auth.ErrInvalidTransition.Error())
		return
	}
	var req verifyRequest
	if !decodeValid(rw, w, r, &req) {
		return
	}

	err := m.SubmitCode(r.Context(), req.Code)
	switch {
	case errors.Is(err, auth.ErrInvalidCode):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidCode, err.Error())
		return
	case errors.Is(err, auth.ErrInvalidTransition):
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, err.Error())
		return
	case err != nil:
		rw.InternalError("Verification failed", err)
		return
	}

	snap := m.Status()
	resp := VerifyResponse{Session: snap}
	if h.tokens != nil && snap.Identity != nil {
		tok, err := h.tokens.Issue(*snap.Identity)
		if err != nil {
			rw.InternalError("Failed to issue session token", err)
			return
		}
		exp := time.Now().Add(h.tokens.TTL()).UTC()
		resp.Token, resp.ExpiresAt = tok, &exp
		h.setTokenCookie(w, tok)
	}
	rw.Success(resp)
}

// Resend replaces the outstanding code. A delivery failure is a 502; the
// cooldown still restarts.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	m, ok := h.machineFor(r)
	if !ok {
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, auth.ErrInvalidTransition.Error())
		return
	}

	err := m.ResendCode(r.Context())
	switch {
	case err == nil:
		rw.Success(m.Status())
	case errors.Is(err, auth.ErrInvalidTransition):
		rw.Error(http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, auth.ErrResendCooldown):
		rw.ErrorWithDetails(http.StatusTooManyRequests, ErrCodeTooManyRequests, err.Error(),
			map[string]any{"resend_available_at": m.Status().ResendAvailableAt})
	default:
		rw.ExternalServiceError("verification", err)
	}
}

// Logout ends the session from any state and drops the token cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.machineFor(r); ok {
		m.Logout(r.Context())
	}
	if h.tokens != nil {
		if tok := h.tokenFrom(r); tok != "" {
			h.tokens.Revoke(tok)
		}
	}
	h.clearTokenCookie(w)
	NewResponseWriter(w, r).Success(auth.Snapshot{Status: auth.StatusAnonymous})
}

// Session reports the caller's session. A token without a live session
// counts as authenticated.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if m, ok := h.machineFor(r); ok {
		if snap := m.Status(); snap.Status != auth.StatusAnonymous {
			rw.Success(snap)
			return
		}
	}
	if h.tokens != nil {
		if tok := h.tokenFrom(r); tok != "" {
			if claims, err := h.tokens.Validate(tok); err == nil {
				id := claims.Identity()
				rw.Success(auth.Snapshot{Status: auth.StatusAuthenticated, Email: id.Email, Identity: &id})
				return
			}
		}
	}
	rw.Success(auth.Snapshot{Status: auth.StatusAnonymous})
}

// Guard tells the frontend whether the caller may see ?view, and where to
// go instead.
func (h *Handler) Guard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	view := r.URL.Query().Get("view")
	if view == "" {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, "view is required",
			map[string]string{"field": "view"})
		return
	}
	status := h.StatusFor(r)
	class := authz.ClassifyPath(view)
	d, err := h.guard.Decide(status, class)
	if err != nil {
		rw.InternalError("Authorization error", err)
		return
	}
	rw.Success(GuardResponse{View: view, Class: class, Status: status, Allowed: d.Allowed, Redirect: d.Redirect})
}
