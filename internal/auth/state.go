// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import "time"

// Status names a state for logs, metrics and the guard.
type Status string

// Session statuses.
const (
	StatusAnonymous           Status = "anonymous"
	StatusPendingVerification Status = "pending_verification"
	StatusAuthenticated       Status = "authenticated"
)

// Identity is what a provider vouches for.
type Identity struct {
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Provider    string `json:"provider"`

	// token is the provider credential used for revocation, if any.
	token string
}

// State is the sealed set of session states.
type State interface {
	Status() Status
	sealed()
}

// Anonymous is the initial and post-logout state.
type Anonymous struct{}

// PendingVerification waits for the emailed code.
type PendingVerification struct {
	Email    string
	Code     string
	Identity Identity
	SentAt   time.Time
}

// Authenticated is a verified session.
type Authenticated struct {
	Identity Identity
	Since    time.Time
}

func (Anonymous) Status() Status           { return StatusAnonymous }
func (PendingVerification) Status() Status { return StatusPendingVerification }
func (Authenticated) Status() Status       { return StatusAuthenticated }

func (Anonymous) sealed()           {}
func (PendingVerification) sealed() {}
func (Authenticated) sealed()       {}
