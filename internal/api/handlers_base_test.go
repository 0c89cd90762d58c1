// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/authz"
	"github.com/tomtom215/foottraffic/internal/backup"
	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/mapview"
	"github.com/tomtom215/foottraffic/internal/store"
	ws "github.com/tomtom215/foottraffic/internal/websocket"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

const (
	testEmail    = "ana@example.com"
	testPassword = "correct horse battery"
)

type fakeCodes struct {
	mu      sync.Mutex
	n       int
	sent    []string
	failing bool
}

func (f *fakeCodes) GenerateCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("%06d", 200000+f.n)
}

func (f *fakeCodes) Send(_ context.Context, _, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("failed to send verification code: provider down")
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeCodes) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeCodes) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	store     *store.Store
	projector *mapview.Projector
	archive   *backup.Manager
	tokens    *auth.TokenManager
	codes     *fakeCodes
}

type envOption func(*config.Config, *Deps)

func withoutArchive() envOption {
	return func(_ *config.Config, d *Deps) { d.Archive = nil }
}

func withRegistrationClosed() envOption {
	return func(c *config.Config, _ *Deps) { c.Identity.AllowRegistration = false }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimitDisabled = true

	guard, err := authz.NewGuard()
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	archive, err := backup.NewManager(backup.Config{DataDir: t.TempDir(), MaxBackups: 10})
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		store:     store.New(store.Options{}),
		projector: mapview.NewProjector(func() float64 { return 0.5 }),
		archive:   archive,
		tokens:    tokens,
		codes:     &fakeCodes{},
	}
	deps := Deps{
		Config:    cfg,
		Store:     env.store,
		Projector: env.projector,
		Archive:   archive,
		Tokens:    tokens,
		Guard:     guard,
		Hub:       ws.NewHub(),
		Version:   "test",
	}
	for _, o := range opts {
		o(cfg, &deps)
	}

	passwords, err := auth.NewPasswordProvider(auth.NewMemoryUserStore(), auth.PasswordOptions{
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: cfg.Identity.MinPasswordLength,
		AllowRegistration: cfg.Identity.AllowRegistration,
	})
	if err != nil {
		t.Fatal(err)
	}
	deps.Passwords = passwords
	deps.Sessions = auth.NewRegistry(func() *auth.Machine {
		return auth.NewMachine(auth.Deps{Passwords: passwords, Codes: env.codes})
	}, auth.RegistryOptions{})

	h, err := NewHandler(deps)
	if err != nil {
		t.Fatal(err)
	}
	env.srv = httptest.NewServer(NewRouter(h).SetupChi())
	t.Cleanup(env.srv.Close)
	env.client = env.newClient(t)
	return env
}

// newClient is a browser: it keeps cookies and does not follow redirects.
func (e *testEnv) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any, header http.Header) *http.Response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return e.do(t, e.client, http.MethodGet, path, nil, nil)
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return e.do(t, e.client, http.MethodPost, path, body, nil)
}

// bearer returns a header carrying a valid session token.
func (e *testEnv) bearer(t *testing.T) http.Header {
	t.Helper()
	tok, err := e.tokens.Issue(auth.Identity{Subject: testEmail, Email: testEmail, Provider: auth.PasswordProviderName})
	if err != nil {
		t.Fatal(err)
	}
	return http.Header{"Authorization": {"Bearer " + tok}}
}

// authedGet performs a GET with a bearer token.
func (e *testEnv) authedGet(t *testing.T, path string) *http.Response {
	t.Helper()
	return e.do(t, e.client, http.MethodGet, path, nil, e.bearer(t))
}

// envelope is APIResponse with Data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s status = %d, want %d; body: %s",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func decodeEnvelope(t *testing.T, resp *http.Response, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func decodeRaw(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	env := decodeEnvelope(t, resp, nil)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %+v", env)
	}
	return env.Error.Code
}
