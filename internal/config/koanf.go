// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/foottraffic/config.yaml",
	"/etc/foottraffic/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns the built-in defaults without reading any layer.
func Default() *Config { return defaultConfig() }

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Stats: StatsConfig{
			URL:             "http://localhost:5001",
			PollInterval:    5 * time.Second,
			FetchTimeout:    3 * time.Second,
			Retention:       24 * time.Hour,
			FallbackEnabled: true,
			MapEnabled:      true,
		},
		Backup: BackupConfig{
			URL:          "",
			Timeout:      10 * time.Second,
			LoadAttempts: 3,
			InitialDelay: time.Second,
			Multiplier:   1.5,
		},
		Archive: ArchiveConfig{
			Enabled:    true,
			DataDir:    "./data",
			MaxBackups: 50,
		},
		Cache: CacheConfig{
			Backend: "badger",
			Path:    "./data/cache",
		},
		Verification: VerificationConfig{
			Provider:       "log",
			ResendCooldown: 60 * time.Second,
			SendTimeout:    10 * time.Second,
			FromName:       "FootTraffic",
			EmailJS: EmailJSConfig{
				BaseURL:    "https://api.emailjs.com",
				RatePerSec: 1,
				Burst:      2,
			},
			SMTP: SMTPConfig{
				Port:     587,
				StartTLS: true,
			},
		},
		Identity: IdentityConfig{
			Store:             "badger",
			Path:              "./data/users",
			BcryptCost:        12,
			AllowRegistration: true,
			MinPasswordLength: 8,
		},
		OIDC: OIDCConfig{
			Enabled:         false,
			Scopes:          []string{"openid", "profile", "email"},
			PKCEEnabled:     true,
			SuccessRedirect: "/verify",
		},
		Session: SessionConfig{
			CookieName:      "ft_session",
			CookieSecure:    false,
			IdleTimeout:     24 * time.Hour,
			MaxSessions:     10000,
			TokenTTL:        24 * time.Hour,
			TokenCookieName: "ft_token",
		},
		Events: EventsConfig{
			Enabled:      true,
			Transport:    "gochannel",
			NATSURL:      "nats://127.0.0.1:4222",
			Embedded:     false,
			EmbeddedHost: "127.0.0.1",
			EmbeddedPort: 4222,
		},
		Security: SecurityConfig{
			CORSOrigins:         []string{"*"},
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			AuthRateLimitReqs:   5,
			AuthRateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file and the environment,
// then validates the result. Precedence: env > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
	"oidc.scopes",
}

// processSliceFields splits comma-separated env values for slice fields.
// Values that came from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			continue
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"stats_url":              "stats.url",
	"flask_server_url":       "stats.url",
	"stats_poll_interval":    "stats.poll_interval",
	"stats_fetch_timeout":    "stats.fetch_timeout",
	"history_retention":      "stats.retention",
	"stats_fallback_enabled": "stats.fallback_enabled",
	"stats_map_enabled":      "stats.map_enabled",

	"backup_url":           "backup.url",
	"backup_timeout":       "backup.timeout",
	"backup_load_attempts": "backup.load_attempts",
	"backup_initial_delay": "backup.initial_delay",
	"backup_multiplier":    "backup.multiplier",

	"archive_enabled":     "archive.enabled",
	"archive_data_dir":    "archive.data_dir",
	"archive_max_backups": "archive.max_backups",

	"cache_backend": "cache.backend",
	"cache_path":    "cache.path",

	"verification_provider":        "verification.provider",
	"verification_resend_cooldown": "verification.resend_cooldown",
	"verification_send_timeout":    "verification.send_timeout",
	"verification_from_name":       "verification.from_name",
	"emailjs_base_url":             "verification.emailjs.base_url",
	"emailjs_service_id":           "verification.emailjs.service_id",
	"emailjs_template_id":          "verification.emailjs.template_id",
	"emailjs_public_key":           "verification.emailjs.public_key",
	"emailjs_private_key":          "verification.emailjs.private_key",
	"emailjs_rate_per_sec":         "verification.emailjs.rate_per_sec",
	"emailjs_burst":                "verification.emailjs.burst",
	"smtp_host":                    "verification.smtp.host",
	"smtp_port":                    "verification.smtp.port",
	"smtp_username":                "verification.smtp.username",
	"smtp_password":                "verification.smtp.password",
	"smtp_from":                    "verification.smtp.from",
	"smtp_use_tls":                 "verification.smtp.use_tls",
	"smtp_start_tls":               "verification.smtp.start_tls",

	"identity_store":               "identity.store",
	"identity_path":                "identity.path",
	"identity_bcrypt_cost":         "identity.bcrypt_cost",
	"identity_allow_registration":  "identity.allow_registration",
	"identity_min_password_length": "identity.min_password_length",

	"oidc_enabled":          "oidc.enabled",
	"oidc_issuer_url":       "oidc.issuer_url",
	"oidc_client_id":        "oidc.client_id",
	"oidc_client_secret":    "oidc.client_secret",
	"oidc_redirect_url":     "oidc.redirect_url",
	"oidc_scopes":           "oidc.scopes",
	"oidc_pkce_enabled":     "oidc.pkce_enabled",
	"oidc_success_redirect": "oidc.success_redirect",

	"session_cookie_name":       "session.cookie_name",
	"session_cookie_secure":     "session.cookie_secure",
	"session_idle_timeout":      "session.idle_timeout",
	"session_max":               "session.max_sessions",
	"jwt_secret":                "session.jwt_secret",
	"session_token_ttl":         "session.token_ttl",
	"session_token_cookie_name": "session.token_cookie_name",

	"events_enabled":     "events.enabled",
	"events_transport":   "events.transport",
	"nats_url":           "events.nats_url",
	"nats_embedded":      "events.embedded",
	"nats_embedded_host": "events.embedded_host",
	"nats_embedded_port": "events.embedded_port",

	"cors_origins":           "security.cors_origins",
	"rate_limit_requests":    "security.rate_limit_reqs",
	"rate_limit_window":      "security.rate_limit_window",
	"auth_rate_limit_reqs":   "security.auth_rate_limit_reqs",
	"auth_rate_limit_window": "security.auth_rate_limit_window",
	"disable_rate_limit":     "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
