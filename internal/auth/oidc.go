// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// OIDCProviderName is the Identity.Provider of federated logins.
const OIDCProviderName = "oidc"

// OIDCOptions configures an OIDCProvider.
type OIDCOptions struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	PKCE         bool
	HTTPClient   *http.Client
}

// OIDCProvider is a FederatedProvider backed by a zitadel relying party.
type OIDCProvider struct {
	rp   rp.RelyingParty
	pkce bool
}

// NewOIDCProvider runs discovery against the issuer and returns a provider.
func NewOIDCProvider(ctx context.Context, opts OIDCOptions) (*OIDCProvider, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{oidc.ScopeOpenID, oidc.ScopeEmail, oidc.ScopeProfile}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		opts.IssuerURL,
		opts.ClientID,
		opts.ClientSecret,
		opts.RedirectURL,
		opts.Scopes,
		rp.WithHTTPClient(opts.HTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create OIDC relying party: %w", err)
	}
	return &OIDCProvider{rp: relyingParty, pkce: opts.PKCE}, nil
}

func (p *OIDCProvider) Name() string { return OIDCProviderName }

// AuthURL builds the authorization request. The verifier is only used when
// PKCE is enabled.
func (p *OIDCProvider) AuthURL(state, verifier string) string {
	var opts []rp.AuthURLOpt
	if p.pkce {
		opts = append(opts,
			rp.WithCodeChallenge(oidc.NewSHACodeChallenge(verifier)),
		)
	}
	return rp.AuthURL(state, p.rp, opts...)
}

// Exchange redeems the authorization code and maps the ID token claims.
func (p *OIDCProvider) Exchange(ctx context.Context, code, verifier string) (Identity, error) {
	var opts []rp.CodeExchangeOpt
	if p.pkce {
		opts = append(opts, rp.WithCodeVerifier(verifier))
	}
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, p.rp, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("code exchange: %w", err)
	}
	claims := tokens.IDTokenClaims
	if claims == nil {
		return Identity{}, fmt.Errorf("code exchange: no ID token in response")
	}
	if claims.Email == "" {
		return Identity{}, ErrNoEmailClaim
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	id := Identity{
		Subject:     claims.Subject,
		Email:       NormalizeEmail(claims.Email),
		DisplayName: name,
		Provider:    OIDCProviderName,
	}
	if tokens.Token != nil {
		id.token = tokens.AccessToken
	}
	return id, nil
}

// Revoke revokes the access token obtained at login.
func (p *OIDCProvider) Revoke(ctx context.Context, id Identity) error {
	if id.token == "" {
		return nil
	}
	if err := rp.RevokeToken(ctx, p.rp, id.token, "access_token"); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
