// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/authz"
	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/verification"
)

// identityComponents is everything the two-step login needs.
type identityComponents struct {
	users     auth.UserStore
	passwords *auth.PasswordProvider
	sessions  *auth.Registry
	tokens    *auth.TokenManager
	guard     *authz.Guard
}

func openUserStore(cfg config.IdentityConfig) (auth.UserStore, error) {
	switch cfg.Store {
	case "memory":
		logging.Warn().Msg("Identity store is in memory; registered users are lost on restart")
		return auth.NewMemoryUserStore(), nil
	case "", "badger":
		return auth.OpenBadgerUserStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown identity store %q", cfg.Store)
	}
}

func initIdentity(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*identityComponents, error) {
	codes, err := verification.NewFromConfig(cfg.Verification, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create verification service: %w", err)
	}
	logging.Info().Str("provider", codes.Provider()).Msg("Verification code delivery configured")

	users, err := openUserStore(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	id := &identityComponents{users: users}

	id.passwords, err = auth.NewPasswordProvider(users, auth.PasswordOptions{
		BcryptCost:        cfg.Identity.BcryptCost,
		MinPasswordLength: cfg.Identity.MinPasswordLength,
		AllowRegistration: cfg.Identity.AllowRegistration,
	})
	if err != nil {
		id.close()
		return nil, fmt.Errorf("create password provider: %w", err)
	}

	// Kept as the interface type so a disabled provider is an untyped nil.
	var federated auth.FederatedProvider
	if cfg.OIDC.Enabled {
		p, err := auth.NewOIDCProvider(ctx, auth.OIDCOptions{
			IssuerURL:    cfg.OIDC.IssuerURL,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scopes:       cfg.OIDC.Scopes,
			PKCE:         cfg.OIDC.PKCEEnabled,
			HTTPClient:   httpClient,
		})
		if err != nil {
			id.close()
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		federated = p
		logging.Info().Str("issuer", cfg.OIDC.IssuerURL).Bool("pkce", cfg.OIDC.PKCEEnabled).
			Msg("Federated login enabled")
	}

	passwords := id.passwords
	cooldown := cfg.Verification.ResendCooldown
	id.sessions = auth.NewRegistry(func() *auth.Machine {
		return auth.NewMachine(auth.Deps{
			Passwords:      passwords,
			Federated:      federated,
			Codes:          codes,
			ResendCooldown: cooldown,
		})
	}, auth.RegistryOptions{
		IdleTimeout: cfg.Session.IdleTimeout,
		MaxSessions: cfg.Session.MaxSessions,
	})

	id.tokens, err = auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TokenTTL)
	if err != nil {
		id.close()
		return nil, fmt.Errorf("create token manager: %w", err)
	}

	id.guard, err = authz.NewGuard()
	if err != nil {
		id.close()
		return nil, fmt.Errorf("create route guard: %w", err)
	}
	return id, nil
}

func (id *identityComponents) close() {
	if id.users == nil {
		return
	}
	if err := id.users.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing identity store")
	}
}
