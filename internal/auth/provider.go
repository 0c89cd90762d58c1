// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials hides whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrFederatedDisabled is returned when no federated provider is configured.
	ErrFederatedDisabled = errors.New("federated login is not configured")
	// ErrNoEmailClaim is returned when the federated identity lacks an email.
	ErrNoEmailClaim = errors.New("identity provider did not return an email address")
)

// IdentityProvider checks a password login.
type IdentityProvider interface {
	Name() string
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// Revoker is implemented by providers that can end their own session.
type Revoker interface {
	Revoke(ctx context.Context, id Identity) error
}

// FederatedProvider runs an authorization code flow. state and verifier
// are generated per attempt by the Machine.
type FederatedProvider interface {
	Name() string
	AuthURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (Identity, error)
}

// CodeSender generates and delivers verification codes.
type CodeSender interface {
	GenerateCode() string
	Send(ctx context.Context, address, code string) error
}
