// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/validation"
)

// PasswordProviderName is the Identity.Provider of password logins.
const PasswordProviderName = "password"

// DefaultMinPasswordLength applies when PasswordOptions leaves it zero.
const DefaultMinPasswordLength = 8

var (
	// ErrWeakPassword is returned by Register for short passwords.
	ErrWeakPassword = errors.New("password is too short")
	// ErrRegistrationClosed is returned by Register when sign-up is disabled.
	ErrRegistrationClosed = errors.New("registration is disabled")
)

// PasswordOptions configures a PasswordProvider.
type PasswordOptions struct {
	BcryptCost        int
	MinPasswordLength int
	AllowRegistration bool
}

// PasswordProvider authenticates email and password against bcrypt hashes.
type PasswordProvider struct {
	users UserStore
	opts  PasswordOptions

	// dummyHash is compared when the user does not exist so both paths
	// take a bcrypt comparison.
	dummyHash []byte
}

// NewPasswordProvider creates a provider over users.
func NewPasswordProvider(users UserStore, opts PasswordOptions) (*PasswordProvider, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("foottraffic-dummy-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init password provider: %w", err)
	}
	return &PasswordProvider{users: users, opts: opts, dummyHash: dummy}, nil
}

func (p *PasswordProvider) Name() string { return PasswordProviderName }

// Authenticate returns ErrInvalidCredentials for both unknown users and
// wrong passwords.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	u, err := p.users.Get(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(password))
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{
		Subject:     u.Email,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Provider:    PasswordProviderName,
	}, nil
}

// Register creates an account. It does not log the user in.
func (p *PasswordProvider) Register(ctx context.Context, email, password, displayName string) error {
	if !p.opts.AllowRegistration {
		return ErrRegistrationClosed
	}
	email = NormalizeEmail(email)
	if err := validation.ValidateVar("email", email, "required,email"); err != nil {
		return err
	}
	if len(password) < p.opts.MinPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, p.opts.MinPasswordLength)
	}
	// bcrypt rejects inputs over 72 bytes.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.users.Create(ctx, &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("email", email).Msg("User registered")
	return nil
}
