// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package verification generates six-digit login codes and delivers them by
// email. A Service validates its inputs, bounds each delivery with a timeout
// and hands the message to a Sender:
//
//   - TemplateSender: EmailJS-style REST template send
//   - SMTPSender: direct SMTP submission
//   - LogSender: writes the code to the log (development only)
//
// The service is stateless and never retries; the auth package decides what
// a failed delivery means.
package verification

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Code bounds.
const (
	codeMin = 100000
	codeMax = 999999
)

var (
	// ErrEmptyAddress is returned for a blank recipient.
	ErrEmptyAddress = errors.New("email address is required")
	// ErrEmptyCode is returned for a blank code.
	ErrEmptyCode = errors.New("verification code is required")
	// ErrInvalidAddress is returned when the recipient is not an email address.
	ErrInvalidAddress = errors.New("email address is invalid")
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// GenerateCode returns a uniformly distributed code in [100000, 999999].
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("verification: reading random source: %v", err))
	}
	return fmt.Sprintf("%d", codeMin+n.Int64())
}
