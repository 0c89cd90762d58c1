// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

// DefaultResendCooldown is the wait between code resends.
const DefaultResendCooldown = 60 * time.Second

var (
	// ErrInvalidCode is shown verbatim to the user.
	ErrInvalidCode = errors.New("Invalid Code") //nolint:staticcheck // user-facing message

	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("operation not allowed in current session state")

	// ErrResendCooldown is returned when a resend is requested too soon.
	ErrResendCooldown = errors.New("please wait before requesting another code")

	// ErrFederatedState is returned when the callback state does not match the login attempt.
	ErrFederatedState = errors.New("federated login state mismatch")
)

// Deps wires a Machine to its collaborators.
type Deps struct {
	Passwords IdentityProvider
	Federated FederatedProvider // nil disables federated login
	Codes     CodeSender

	ResendCooldown time.Duration
	Now            func() time.Time
}

// LoginResult reports a successful first step. DeliveryWarning is set when
// the code could not be sent; the session is still pending.
type LoginResult struct {
	Email           string
	DeliveryWarning error
}

// FederatedCallback carries the parameters of the provider redirect.
type FederatedCallback struct {
	Code  string
	State string
}

// Snapshot is a read-only view of a machine for handlers.
type Snapshot struct {
	Status            Status     `json:"status"`
	Email             string     `json:"email,omitempty"`
	Identity          *Identity  `json:"identity,omitempty"`
	ResendAvailableAt *time.Time `json:"resend_available_at,omitempty"`
}

// Machine is the per-session authentication state machine.
//
// Operations are serialized by opMu so a slow provider call cannot
// interleave with another transition; State and Status only take stateMu
// and never block on network I/O.
type Machine struct {
	deps Deps

	opMu sync.Mutex

	stateMu      sync.RWMutex
	state        State
	oauthState   string
	pkceVerifier string
}

// NewMachine returns a machine in the Anonymous state.
func NewMachine(deps Deps) *Machine {
	if deps.ResendCooldown <= 0 {
		deps.ResendCooldown = DefaultResendCooldown
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Machine{deps: deps, state: Anonymous{}}
}

// State returns the current state.
func (m *Machine) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// Status returns a snapshot of the current state. The code is never exposed.
func (m *Machine) Status() Snapshot {
	st := m.State()
	snap := Snapshot{Status: st.Status()}
	switch s := st.(type) {
	case PendingVerification:
		snap.Email = s.Email
		at := s.SentAt.Add(m.deps.ResendCooldown)
		snap.ResendAvailableAt = &at
	case Authenticated:
		id := s.Identity
		snap.Email = id.Email
		snap.Identity = &id
	}
	return snap
}

// LoginWithPassword runs the first step with email and password.
func (m *Machine) LoginWithPassword(ctx context.Context, email, password string) (LoginResult, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, ok := m.State().(Anonymous); !ok {
		return LoginResult{}, ErrInvalidTransition
	}
	if m.deps.Passwords == nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	id, err := m.deps.Passwords.Authenticate(ctx, strings.TrimSpace(email), password)
	if err != nil {
		logging.Ctx(ctx).Info().Str("provider", m.deps.Passwords.Name()).Err(err).Msg("Password login rejected")
		return LoginResult{}, err
	}
	return m.beginVerification(ctx, id), nil
}

// BeginFederated starts a federated login and returns the provider URL the
// browser must be sent to. Only one federated attempt is tracked at a time.
func (m *Machine) BeginFederated() (string, error) {
	if m.deps.Federated == nil {
		return "", ErrFederatedDisabled
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, ok := m.State().(Anonymous); !ok {
		return "", ErrInvalidTransition
	}

	state, err := randomToken(24)
	if err != nil {
		return "", err
	}
	verifier, err := randomToken(32)
	if err != nil {
		return "", err
	}

	m.stateMu.Lock()
	m.oauthState = state
	m.pkceVerifier = verifier
	m.stateMu.Unlock()

	return m.deps.Federated.AuthURL(state, verifier), nil
}

// LoginWithFederatedProvider completes a federated login from the callback.
func (m *Machine) LoginWithFederatedProvider(ctx context.Context, cb FederatedCallback) (LoginResult, error) {
	if m.deps.Federated == nil {
		return LoginResult{}, ErrFederatedDisabled
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, ok := m.State().(Anonymous); !ok {
		return LoginResult{}, ErrInvalidTransition
	}

	m.stateMu.Lock()
	expected, verifier := m.oauthState, m.pkceVerifier
	m.oauthState, m.pkceVerifier = "", ""
	m.stateMu.Unlock()

	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(cb.State)) != 1 {
		return LoginResult{}, ErrFederatedState
	}

	id, err := m.deps.Federated.Exchange(ctx, cb.Code, verifier)
	if err != nil {
		logging.Ctx(ctx).Warn().Str("provider", m.deps.Federated.Name()).Err(err).Msg("Federated login failed")
		return LoginResult{}, err
	}
	if id.Email == "" {
		return LoginResult{}, ErrNoEmailClaim
	}
	return m.beginVerification(ctx, id), nil
}

// beginVerification moves to PendingVerification and sends the first code.
// Caller holds opMu.
func (m *Machine) beginVerification(ctx context.Context, id Identity) LoginResult {
	code := m.deps.Codes.GenerateCode()
	now := m.deps.Now()

	m.transition(ctx, PendingVerification{Email: id.Email, Code: code, Identity: id, SentAt: now})

	res := LoginResult{Email: id.Email}
	if err := m.deps.Codes.Send(ctx, id.Email, code); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("email", id.Email).Msg("Verification code delivery failed; session remains pending")
		res.DeliveryWarning = err
	}
	return res
}

// SubmitCode promotes a pending session when candidate matches the code.
func (m *Machine) SubmitCode(ctx context.Context, candidate string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	pending, ok := m.State().(PendingVerification)
	if !ok {
		return ErrInvalidTransition
	}
	candidate = strings.TrimSpace(candidate)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(pending.Code)) != 1 {
		return ErrInvalidCode
	}

	m.transition(ctx, Authenticated{Identity: pending.Identity, Since: m.deps.Now()})
	return nil
}

// ResendCode replaces the outstanding code with a fresh one and sends it.
// The cooldown restarts whether or not delivery succeeds; the delivery
// error is returned to the caller.
func (m *Machine) ResendCode(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	pending, ok := m.State().(PendingVerification)
	if !ok {
		return ErrInvalidTransition
	}
	now := m.deps.Now()
	if now.Before(pending.SentAt.Add(m.deps.ResendCooldown)) {
		return ErrResendCooldown
	}

	pending.Code = m.deps.Codes.GenerateCode()
	pending.SentAt = now
	m.stateMu.Lock()
	m.state = pending
	m.stateMu.Unlock()

	if err := m.deps.Codes.Send(ctx, pending.Email, pending.Code); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("email", pending.Email).Msg("Verification code resend failed")
		return err
	}
	logging.Ctx(ctx).Info().Str("email", pending.Email).Msg("Verification code resent")
	return nil
}

// Logout returns to Anonymous from any state. Provider revocation errors
// are logged and otherwise ignored.
func (m *Machine) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	var id Identity
	switch s := m.State().(type) {
	case PendingVerification:
		id = s.Identity
	case Authenticated:
		id = s.Identity
	}

	m.stateMu.Lock()
	m.oauthState, m.pkceVerifier = "", ""
	m.stateMu.Unlock()
	m.transition(ctx, Anonymous{})

	if rv := m.revokerFor(id.Provider); rv != nil {
		if err := rv.Revoke(ctx, id); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("provider", id.Provider).Msg("Provider session revocation failed")
		}
	}
}

func (m *Machine) revokerFor(provider string) Revoker {
	if provider == "" {
		return nil
	}
	if m.deps.Federated != nil && m.deps.Federated.Name() == provider {
		if rv, ok := m.deps.Federated.(Revoker); ok {
			return rv
		}
	}
	if m.deps.Passwords != nil && m.deps.Passwords.Name() == provider {
		if rv, ok := m.deps.Passwords.(Revoker); ok {
			return rv
		}
	}
	return nil
}

// transition swaps the state and records it. Caller holds opMu.
func (m *Machine) transition(ctx context.Context, next State) {
	m.stateMu.Lock()
	prev := m.state
	m.state = next
	m.stateMu.Unlock()

	if prev.Status() == next.Status() {
		return
	}
	metrics.RecordAuthTransition(string(prev.Status()), string(next.Status()))
	logging.Ctx(ctx).Debug().
		Str("from", string(prev.Status())).
		Str("to", string(next.Status())).
		Msg("Auth state transition")
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
