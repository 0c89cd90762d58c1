// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package verification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/foottraffic/internal/breaker"
	"github.com/tomtom215/foottraffic/internal/config"
)

const emailJSSendPath = "/api/v1.0/email/send"

// maxProviderBody caps how much of an error response is kept.
const maxProviderBody = 512

// TemplateSender posts to an EmailJS-compatible template send API.
type TemplateSender struct {
	cfg     config.EmailJSConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *breaker.Breaker[struct{}]
}

type templateRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewTemplateSender builds a sender. A nil client uses a 10s-timeout client.
func NewTemplateSender(cfg config.EmailJSConfig, client *http.Client) *TemplateSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &TemplateSender{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		cb:      breaker.New[struct{}]("emailjs", breaker.Settings{Timeout: time.Minute}),
	}
}

// Name implements Sender.
func (s *TemplateSender) Name() string { return "emailjs" }

// Deliver implements Sender.
func (s *TemplateSender) Deliver(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.post(ctx, msg)
	})
	return err
}

func (s *TemplateSender) post(ctx context.Context, msg Message) error {
	body, err := json.Marshal(templateRequest{
		ServiceID:      s.cfg.ServiceID,
		TemplateID:     s.cfg.TemplateID,
		UserID:         s.cfg.PublicKey,
		AccessToken:    s.cfg.PrivateKey,
		TemplateParams: templateParams(msg),
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + emailJSSendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody)) //nolint:errcheck // best effort detail
		detail := strings.TrimSpace(string(text))
		if detail == "" {
			detail = "No details available"
		}
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, detail)
	}
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive
	return nil
}

// templateParams fills every recipient field name common templates use.
func templateParams(msg Message) map[string]string {
	return map[string]string{
		"to":                msg.To,
		"recipient":         msg.To,
		"email":             msg.To,
		"to_name":           msg.ToName,
		"from_name":         msg.FromName,
		"verification_code": msg.Code,
		"message":           msg.Body,
		"content":           msg.Body,
	}
}
