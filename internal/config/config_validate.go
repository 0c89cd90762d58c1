// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is enforced only in production.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateStats,
		c.validateBackup,
		c.validateCache,
		c.validateVerification,
		c.validateIdentity,
		c.validateOIDC,
		c.validateSession,
		c.validateEvents,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateStats() error {
	if c.Stats.URL == "" {
		return fmt.Errorf("STATS_URL is required")
	}
	if err := validateHTTPURL(c.Stats.URL, "STATS_URL"); err != nil {
		return err
	}
	if c.Stats.PollInterval <= 0 {
		return fmt.Errorf("STATS_POLL_INTERVAL must be positive")
	}
	if c.Stats.FetchTimeout <= 0 {
		return fmt.Errorf("STATS_FETCH_TIMEOUT must be positive")
	}
	if c.Stats.FetchTimeout > c.Stats.PollInterval {
		return fmt.Errorf("STATS_FETCH_TIMEOUT (%v) must not exceed STATS_POLL_INTERVAL (%v)",
			c.Stats.FetchTimeout, c.Stats.PollInterval)
	}
	if c.Stats.Retention <= 0 {
		return fmt.Errorf("HISTORY_RETENTION must be positive")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.URL != "" {
		if err := validateHTTPURL(c.Backup.URL, "BACKUP_URL"); err != nil {
			return err
		}
	}
	if c.Backup.LoadAttempts < 1 {
		return fmt.Errorf("BACKUP_LOAD_ATTEMPTS must be at least 1")
	}
	if c.Backup.Multiplier < 1 {
		return fmt.Errorf("BACKUP_MULTIPLIER must be >= 1, got %v", c.Backup.Multiplier)
	}
	if c.Archive.Enabled && c.Archive.DataDir == "" {
		return fmt.Errorf("ARCHIVE_DATA_DIR is required when ARCHIVE_ENABLED=true")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
		return nil
	case "badger":
		if c.Cache.Path == "" {
			return fmt.Errorf("CACHE_PATH is required when CACHE_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("CACHE_BACKEND must be badger or memory, got %q", c.Cache.Backend)
	}
}

func (c *Config) validateVerification() error {
	v := c.Verification
	if v.ResendCooldown < 0 {
		return fmt.Errorf("VERIFICATION_RESEND_COOLDOWN must not be negative")
	}

	switch v.Provider {
	case "log":
		if c.Server.IsProduction() {
			return fmt.Errorf("VERIFICATION_PROVIDER=log is not allowed in production")
		}
	case "emailjs":
		if v.EmailJS.ServiceID == "" || v.EmailJS.TemplateID == "" || v.EmailJS.PublicKey == "" {
			return fmt.Errorf("EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_PUBLIC_KEY are required when VERIFICATION_PROVIDER=emailjs")
		}
		if err := validateHTTPURL(v.EmailJS.BaseURL, "EMAILJS_BASE_URL"); err != nil {
			return err
		}
		if v.EmailJS.RatePerSec <= 0 {
			return fmt.Errorf("EMAILJS_RATE_PER_SEC must be positive")
		}
	case "smtp":
		if v.SMTP.Host == "" || v.SMTP.From == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when VERIFICATION_PROVIDER=smtp")
		}
		if v.SMTP.UseTLS && v.SMTP.StartTLS {
			return fmt.Errorf("SMTP_USE_TLS and SMTP_START_TLS are mutually exclusive")
		}
	default:
		return fmt.Errorf("VERIFICATION_PROVIDER must be emailjs, smtp or log, got %q", v.Provider)
	}
	return nil
}

func (c *Config) validateIdentity() error {
	switch c.Identity.Store {
	case "memory":
	case "badger":
		if c.Identity.Path == "" {
			return fmt.Errorf("IDENTITY_PATH is required when IDENTITY_STORE=badger")
		}
	default:
		return fmt.Errorf("IDENTITY_STORE must be badger or memory, got %q", c.Identity.Store)
	}
	if c.Identity.BcryptCost < 4 || c.Identity.BcryptCost > 31 {
		return fmt.Errorf("IDENTITY_BCRYPT_COST must be between 4 and 31, got %d", c.Identity.BcryptCost)
	}
	return nil
}

func (c *Config) validateOIDC() error {
	if !c.OIDC.Enabled {
		return nil
	}
	if c.OIDC.IssuerURL == "" || c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "" {
		return fmt.Errorf("OIDC_ISSUER_URL, OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required when OIDC_ENABLED=true")
	}
	if err := validateIssuerURL(c.OIDC.IssuerURL); err != nil {
		return fmt.Errorf("OIDC_ISSUER_URL is invalid: %w", err)
	}
	hasOpenID := false
	for _, s := range c.OIDC.Scopes {
		if s == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("OIDC_SCOPES must include openid")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.CookieName == "" || c.Session.TokenCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME and SESSION_TOKEN_COOKIE_NAME are required")
	}
	if c.Session.IdleTimeout <= 0 || c.Session.TokenTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT and SESSION_TOKEN_TTL must be positive")
	}
	if c.Server.IsProduction() {
		if len(c.Session.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
		}
		if !c.Session.CookieSecure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be true in production")
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Transport {
	case "gochannel":
	case "nats":
		if !c.Events.Embedded {
			if err := validateNATSURL(c.Events.NATSURL); err != nil {
				return fmt.Errorf("NATS_URL is invalid: %w", err)
			}
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be gochannel or nats, got %q", c.Events.Transport)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
