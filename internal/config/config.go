// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package config loads FootTraffic configuration.
//
// Sources are layered with koanf, lowest precedence first:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/foottraffic/config.yaml)
//  3. Environment variables listed in envMappings
//
// Durations accept Go syntax ("5s", "1m30s"). Slice fields accept
// comma-separated strings when set from the environment.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Stats        StatsConfig        `koanf:"stats"`
	Backup       BackupConfig       `koanf:"backup"`
	Archive      ArchiveConfig      `koanf:"archive"`
	Cache        CacheConfig        `koanf:"cache"`
	Verification VerificationConfig `koanf:"verification"`
	Identity     IdentityConfig     `koanf:"identity"`
	OIDC         OIDCConfig         `koanf:"oidc"`
	Session      SessionConfig      `koanf:"session"`
	Events       EventsConfig       `koanf:"events"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production". Production enables the
	// stricter checks in Validate.
	Environment string `koanf:"environment"`
}

// IsProduction reports whether production checks apply.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// StatsConfig configures the upstream video-analysis stats feed and the poller.
type StatsConfig struct {
	// URL is the analysis backend base URL; /api/stats is appended.
	URL          string        `koanf:"url"`
	PollInterval time.Duration `koanf:"poll_interval"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// Retention bounds each location's history window.
	Retention time.Duration `koanf:"retention"`

	// FallbackEnabled synthesizes a sample when the very first poll fails.
	FallbackEnabled bool `koanf:"fallback_enabled"`

	// MapEnabled derives a map snapshot from every accepted sample.
	MapEnabled bool `koanf:"map_enabled"`
}

// BackupConfig configures replication to, and recovery from, the remote
// historical backup endpoint.
type BackupConfig struct {
	// URL is the backup service base URL. Empty disables replication and
	// remote recovery.
	URL          string        `koanf:"url"`
	Timeout      time.Duration `koanf:"timeout"`
	LoadAttempts int           `koanf:"load_attempts"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	Multiplier   float64       `koanf:"multiplier"`
}

// ArchiveConfig configures the built-in historical archive that serves
// /api/save-historical and /api/load-historical.
type ArchiveConfig struct {
	Enabled    bool   `koanf:"enabled"`
	DataDir    string `koanf:"data_dir"`
	MaxBackups int    `koanf:"max_backups"`
}

// CacheConfig configures the local durable snapshot cache.
type CacheConfig struct {
	// Backend is "badger" or "memory".
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// VerificationConfig configures email-code delivery.
type VerificationConfig struct {
	// Provider is "emailjs", "smtp" or "log".
	Provider       string        `koanf:"provider"`
	ResendCooldown time.Duration `koanf:"resend_cooldown"`
	SendTimeout    time.Duration `koanf:"send_timeout"`
	FromName       string        `koanf:"from_name"`

	EmailJS EmailJSConfig `koanf:"emailjs"`
	SMTP    SMTPConfig    `koanf:"smtp"`
}

// EmailJSConfig holds transactional-template provider credentials.
type EmailJSConfig struct {
	BaseURL    string  `koanf:"base_url"`
	ServiceID  string  `koanf:"service_id"`
	TemplateID string  `koanf:"template_id"`
	PublicKey  string  `koanf:"public_key"`
	PrivateKey string  `koanf:"private_key"`
	RatePerSec float64 `koanf:"rate_per_sec"`
	Burst      int     `koanf:"burst"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	UseTLS   bool   `koanf:"use_tls"`
	StartTLS bool   `koanf:"start_tls"`
}

// IdentityConfig configures the password identity provider.
type IdentityConfig struct {
	// Store is "badger" or "memory".
	Store             string `koanf:"store"`
	Path              string `koanf:"path"`
	BcryptCost        int    `koanf:"bcrypt_cost"`
	AllowRegistration bool   `koanf:"allow_registration"`
	MinPasswordLength int    `koanf:"min_password_length"`
}

// OIDCConfig configures the federated identity provider.
type OIDCConfig struct {
	Enabled      bool     `koanf:"enabled"`
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
	PKCEEnabled  bool     `koanf:"pkce_enabled"`

	// SuccessRedirect is where the browser lands after the callback; the
	// session is in PendingVerification at that point.
	SuccessRedirect string `koanf:"success_redirect"`
}

// SessionConfig configures browser sessions and issued tokens.
type SessionConfig struct {
	CookieName   string        `koanf:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	MaxSessions  int           `koanf:"max_sessions"`

	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	TokenCookieName string        `koanf:"token_cookie_name"`
}

// EventsConfig configures the sample event bus.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Transport is "gochannel" or "nats".
	Transport string `koanf:"transport"`
	NATSURL   string `koanf:"nats_url"`

	// Embedded starts an in-process NATS server and ignores NATSURL.
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins         []string      `koanf:"cors_origins"`
	RateLimitReqs       int           `koanf:"rate_limit_reqs"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	AuthRateLimitReqs   int           `koanf:"auth_rate_limit_reqs"`
	AuthRateLimitWindow time.Duration `koanf:"auth_rate_limit_window"`
	RateLimitDisabled   bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all layers and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
