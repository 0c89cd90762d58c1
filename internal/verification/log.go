// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package verification

import (
	"context"

	"github.com/tomtom215/foottraffic/internal/logging"
)

// LogSender writes codes to the log instead of mailing them. Config
// validation rejects it in production.
type LogSender struct{}

// Name implements Sender.
func (LogSender) Name() string { return "log" }

// Deliver implements Sender.
func (LogSender) Deliver(ctx context.Context, msg Message) error {
	logging.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("verification_code", msg.Code).
		Msg("verification code (log provider, not delivered)")
	return ctx.Err()
}
