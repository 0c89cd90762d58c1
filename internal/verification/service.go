// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/validation"
)

// DefaultFromName signs outgoing messages.
const DefaultFromName = "FootTraffic"

// Message is one verification email.
type Message struct {
	To       string
	ToName   string
	FromName string
	Code     string
	Subject  string
	Body     string
}

// Sender delivers a built message. Implementations must honor ctx.
type Sender interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Service validates and delivers verification codes.
type Service struct {
	sender   Sender
	timeout  time.Duration
	fromName string
}

// NewService wraps sender. A zero timeout leaves deadlines to the caller.
func NewService(sender Sender, timeout time.Duration, fromName string) *Service {
	if fromName == "" {
		fromName = DefaultFromName
	}
	return &Service{sender: sender, timeout: timeout, fromName: fromName}
}

// Provider names the underlying sender.
func (s *Service) Provider() string { return s.sender.Name() }

// GenerateCode returns a fresh six-digit code.
func (s *Service) GenerateCode() string { return GenerateCode() }

// Send delivers code to address. Every failure is wrapped as
// "failed to send verification code: <cause>".
func (s *Service) Send(ctx context.Context, address, code string) error {
	address = strings.TrimSpace(address)
	switch {
	case address == "":
		return sendErr(ErrEmptyAddress)
	case code == "":
		return sendErr(ErrEmptyCode)
	}
	if verr := validation.ValidateVar("email", address, "email"); verr != nil {
		return sendErr(fmt.Errorf("%w: %s", ErrInvalidAddress, address))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.sender.Deliver(ctx, BuildMessage(address, code, s.fromName))
	metrics.RecordCodeSend(s.sender.Name(), err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("provider", s.sender.Name()).Msg("verification code delivery failed")
		return sendErr(err)
	}
	logging.Ctx(ctx).Debug().Str("provider", s.sender.Name()).Msg("verification code delivered")
	return nil
}

func sendErr(cause error) error {
	return fmt.Errorf("failed to send verification code: %w", cause)
}

// BuildMessage renders the verification email.
func BuildMessage(address, code, fromName string) Message {
	return Message{
		To:       address,
		ToName:   localPart(address),
		FromName: fromName,
		Code:     code,
		Subject:  "Your " + fromName + " verification code",
		Body:     "Your verification code is: " + code,
	}
}

func localPart(address string) string {
	if i := strings.IndexByte(address, '@'); i >= 0 {
		return address[:i]
	}
	return address
}
