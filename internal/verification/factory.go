// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package verification

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/foottraffic/internal/config"
)

// NewFromConfig builds the configured Service.
func NewFromConfig(cfg config.VerificationConfig, client *http.Client) (*Service, error) {
	var sender Sender
	switch cfg.Provider {
	case "emailjs":
		sender = NewTemplateSender(cfg.EmailJS, client)
	case "smtp":
		sender = NewSMTPSender(cfg.SMTP)
	case "log", "":
		sender = LogSender{}
	default:
		return nil, fmt.Errorf("unknown verification provider %q", cfg.Provider)
	}
	return NewService(sender, cfg.SendTimeout, cfg.FromName), nil
}
