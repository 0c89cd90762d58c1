// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testClientID     = "foottraffic"
	testClientSecret = "shh"
	testRedirect     = "http://localhost:5000/api/auth/callback"
)

type mockCode struct {
	challenge string
	email     string
}

// mockIdP is a minimal OpenID provider: discovery, JWKS, token and revocation.
type mockIdP struct {
	srv *httptest.Server
	key *rsa.PrivateKey
	kid string

	mu      sync.Mutex
	codes   map[string]mockCode
	revoked []string
}

func newMockIdP(t *testing.T) *mockIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	m := &mockIdP{key: key, kid: "test-key", codes: make(map[string]mockCode)}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", m.discovery)
	mux.HandleFunc("/jwks", m.jwks)
	mux.HandleFunc("/token", m.token)
	mux.HandleFunc("/revoke", m.revoke)
	m.srv = httptest.NewServer(mux)
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockIdP) issuer() string { return m.srv.URL }

func (m *mockIdP) addCode(code, challenge, email string) {
	m.mu.Lock()
	m.codes[code] = mockCode{challenge: challenge, email: email}
	m.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (m *mockIdP) discovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                m.issuer(),
		"authorization_endpoint":                m.issuer() + "/authorize",
		"token_endpoint":                        m.issuer() + "/token",
		"jwks_uri":                              m.issuer() + "/jwks",
		"revocation_endpoint":                   m.issuer() + "/revoke",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

func (m *mockIdP) jwks(w http.ResponseWriter, _ *http.Request) {
	pub := m.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": m.kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func clientFrom(r *http.Request) (string, string) {
	if id, secret, ok := r.BasicAuth(); ok {
		id, _ = url.QueryUnescape(id)
		secret, _ = url.QueryUnescape(secret)
		return id, secret
	}
	return r.FormValue("client_id"), r.FormValue("client_secret")
}

func (m *mockIdP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if id, secret := clientFrom(r); id != testClientID || secret != testClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	m.mu.Lock()
	c, ok := m.codes[r.FormValue("code")]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	if c.challenge != "" {
		sum := sha256.Sum256([]byte(r.FormValue("code_verifier")))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != c.challenge {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "PKCE verification failed"})
			return
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.issuer(),
		"sub": "user-42",
		"aud": testClientID,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}
	claims["name"] = "Bo Santos"
	if c.email != "" {
		claims["email"] = c.email
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = m.kid
	idToken, err := tok.SignedString(m.key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": "access-" + r.FormValue("code"),
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (m *mockIdP) revoke(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	m.mu.Lock()
	m.revoked = append(m.revoked, r.FormValue("token"))
	m.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func newTestOIDCProvider(t *testing.T, idp *mockIdP, pkce bool) *OIDCProvider {
	t.Helper()
	p, err := NewOIDCProvider(context.Background(), OIDCOptions{
		IssuerURL:    idp.issuer(),
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  testRedirect,
		PKCE:         pkce,
		HTTPClient:   idp.srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewOIDCProvider() error = %v", err)
	}
	return p
}

func TestOIDCProviderAuthURL(t *testing.T) {
	t.Parallel()
	idp := newMockIdP(t)
	p := newTestOIDCProvider(t, idp, true)

	u, err := url.Parse(p.AuthURL("state-1", "verifier-1"))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if u.Path != "/authorize" || q.Get("state") != "state-1" || q.Get("client_id") != testClientID {
		t.Errorf("AuthURL = %s", u)
	}
	sum := sha256.Sum256([]byte("verifier-1"))
	if q.Get("code_challenge") != base64.RawURLEncoding.EncodeToString(sum[:]) || q.Get("code_challenge_method") != "S256" {
		t.Errorf("PKCE params = %q / %q", q.Get("code_challenge"), q.Get("code_challenge_method"))
	}

	plain := newTestOIDCProvider(t, idp, false)
	if pu, _ := url.Parse(plain.AuthURL("s", "v")); pu.Query().Get("code_challenge") != "" {
		t.Error("code_challenge sent with PKCE disabled")
	}
}

func TestOIDCProviderExchange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idp := newMockIdP(t)
	p := newTestOIDCProvider(t, idp, true)

	challengeFor := func(verifier string) string {
		u, _ := url.Parse(p.AuthURL("s", verifier))
		return u.Query().Get("code_challenge")
	}

	idp.addCode("code-ok", challengeFor("v-ok"), "Bo@Example.com")
	id, err := p.Exchange(ctx, "code-ok", "v-ok")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if id.Email != "bo@example.com" || id.Subject != "user-42" || id.DisplayName != "Bo Santos" || id.Provider != OIDCProviderName {
		t.Errorf("identity = %+v", id)
	}

	if err := p.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	idp.mu.Lock()
	revoked := append([]string(nil), idp.revoked...)
	idp.mu.Unlock()
	if len(revoked) != 1 || revoked[0] != "access-code-ok" {
		t.Errorf("revoked = %v", revoked)
	}

	idp.addCode("code-pkce", challengeFor("v-right"), "bo@example.com")
	if _, err := p.Exchange(ctx, "code-pkce", "v-wrong"); err == nil {
		t.Error("Exchange() accepted a wrong verifier")
	}

	idp.addCode("code-noemail", "", "")
	plain := newTestOIDCProvider(t, idp, false)
	if _, err := plain.Exchange(ctx, "code-noemail", ""); err == nil {
		t.Error("Exchange() accepted an identity without email")
	}

	if _, err := plain.Exchange(ctx, "unknown", ""); err == nil {
		t.Error("Exchange() accepted an unknown code")
	}
}

func TestOIDCProviderDiscoveryFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewOIDCProvider(context.Background(), OIDCOptions{
		IssuerURL:   srv.URL,
		ClientID:    testClientID,
		RedirectURL: testRedirect,
		HTTPClient:  srv.Client(),
	})
	if err == nil {
		t.Fatal("NewOIDCProvider() succeeded without discovery")
	}
}
